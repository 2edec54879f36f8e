package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jcastellanos/puntoventa-api/internal/application/dto"
	"github.com/jcastellanos/puntoventa-api/internal/domain"
	domsales "github.com/jcastellanos/puntoventa-api/internal/domain/sales"
)

// Puertos que consume el handler; los implementan los casos de uso de
// application/sales.
type (
	SaleCreator interface {
		CreateSale(ctx context.Context, companyID, userID string, in dto.CreateSaleRequest) (*dto.SaleResponse, bool, error)
	}
	SaleCanceller interface {
		Cancel(ctx context.Context, companyID, userID, saleID, reason string) error
	}
	SaleReader interface {
		List(ctx context.Context, companyID string, page dto.PageRequest, startDate, endDate string) (*dto.SaleListResponse, error)
		GetByID(ctx context.Context, companyID, id string) (*dto.SaleResponse, error)
		Stats(ctx context.Context, companyID string) (*dto.SalesStatsResponse, error)
		Today(ctx context.Context, companyID string) (*dto.TodaySummaryResponse, error)
	}
	ReceiptRenderer interface {
		Generate(ctx context.Context, companyID, saleID string) ([]byte, error)
	}
)

// SaleHandler maneja las peticiones HTTP del pipeline de ventas (protegido).
type SaleHandler struct {
	creator   SaleCreator
	canceller SaleCanceller
	reader    SaleReader
	receipts  ReceiptRenderer
}

// NewSaleHandler construye el handler.
func NewSaleHandler(creator SaleCreator, canceller SaleCanceller, reader SaleReader, receipts ReceiptRenderer) *SaleHandler {
	return &SaleHandler{creator: creator, canceller: canceller, reader: reader, receipts: receipts}
}

// Create registra una venta.
// POST /sales
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "token inválido"})
	}
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "cuerpo inválido"})
	}
	// El header tiene prioridad sobre el campo del cuerpo.
	if key := c.Get("Idempotency-Key"); key != "" {
		in.IdempotencyKey = key
	}

	resp, replayed, err := h.creator.CreateSale(c.Context(), companyID, userID, in)
	if err != nil {
		return saleError(c, err)
	}
	if replayed {
		// Venta ya registrada por una petición anterior con la misma clave.
		return c.Status(fiber.StatusOK).JSON(resp)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetByID devuelve la venta con sus líneas.
// GET /sales/:id
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "token inválido"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "formato de id inválido"})
	}
	resp, err := h.reader.GetByID(c.Context(), companyID, id)
	if err != nil {
		return saleError(c, err)
	}
	return c.JSON(resp)
}

// List devuelve ventas paginadas, opcionalmente filtradas por fecha.
// GET /sales?page=&limit=&startDate=&endDate=
func (h *SaleHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "parámetros inválidos"})
	}
	resp, err := h.reader.List(c.Context(), companyID, page, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		return saleError(c, err)
	}
	return c.JSON(resp)
}

// Cancel revierte una venta confirmada.
// POST /sales/:id/cancel
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "token inválido"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "formato de id inválido"})
	}
	var in dto.CancelSaleRequest
	// El cuerpo es opcional; sin motivo la cancelación sigue siendo válida.
	_ = c.BodyParser(&in)

	if err := h.canceller.Cancel(c.Context(), companyID, userID, id, in.Reason); err != nil {
		return saleError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "venta cancelada"})
}

// Stats devuelve los agregados globales de ventas.
// GET /sales/stats/summary
func (h *SaleHandler) Stats(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "token inválido"})
	}
	resp, err := h.reader.Stats(c.Context(), companyID)
	if err != nil {
		return saleError(c, err)
	}
	return c.JSON(resp)
}

// Today devuelve las ventas del día con conteo y total.
// GET /sales/today/summary
func (h *SaleHandler) Today(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "token inválido"})
	}
	resp, err := h.reader.Today(c.Context(), companyID)
	if err != nil {
		return saleError(c, err)
	}
	return c.JSON(resp)
}

// Receipt devuelve el PDF del recibo.
// GET /sales/:id/receipt.pdf
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "token inválido"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "formato de id inválido"})
	}
	pdfBytes, err := h.receipts.Generate(c.Context(), companyID, id)
	if err != nil {
		return saleError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdfBytes)
}

// pathID valida que el parámetro :id sea un UUID antes de tocar la base; un
// id malformado es un 400 del contrato, no un error interno del codec.
func pathID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// saleError traduce errores de dominio al contrato HTTP.
func saleError(c *fiber.Ctx, err error) error {
	var ve *domsales.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Datos de venta inválidos", Details: ve.Reason})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Stock insuficiente"})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSeriesNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "recurso no encontrado"})
	case errors.Is(err, domain.ErrReplayInProgress):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: "operación en curso con la misma clave de idempotencia"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "acceso denegado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "error interno"})
	}
}
