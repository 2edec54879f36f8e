package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jcastellanos/puntoventa-api/internal/application/dto"
)

// Restocker registra entradas de stock; lo implementa inventory.RestockUseCase.
type Restocker interface {
	Restock(ctx context.Context, companyID, userID string, in dto.StockEntryRequest) (*dto.StockEntryResponse, error)
}

// StockHandler maneja las entradas de inventario (protegido).
type StockHandler struct {
	restocker Restocker
}

// NewStockHandler construye el handler.
func NewStockHandler(restocker Restocker) *StockHandler {
	return &StockHandler{restocker: restocker}
}

// CreateEntry registra una reposición de stock.
// POST /stock/entries
func (h *StockHandler) CreateEntry(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "token inválido"})
	}
	var in dto.StockEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "cuerpo inválido"})
	}
	resp, err := h.restocker.Restock(c.Context(), companyID, userID, in)
	if err != nil {
		return saleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}
