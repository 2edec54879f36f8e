// Package inventory contiene los casos de uso de reposición de stock.
package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jcastellanos/puntoventa-api/internal/application/dto"
	appsales "github.com/jcastellanos/puntoventa-api/internal/application/sales"
	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
	domsales "github.com/jcastellanos/puntoventa-api/internal/domain/sales"
	"github.com/jcastellanos/puntoventa-api/internal/domain/repository"
)

// RestockUseCase registra entradas de stock (reposición) de forma
// transaccional: incremento atómico + fila de movimiento.
type RestockUseCase struct {
	txRunner    appsales.TxRunner
	productRepo repository.ProductRepository
}

// NewRestockUseCase construye el caso de uso.
func NewRestockUseCase(txRunner appsales.TxRunner, productRepo repository.ProductRepository) *RestockUseCase {
	return &RestockUseCase{txRunner: txRunner, productRepo: productRepo}
}

// Restock suma cantidad al producto y deja el movimiento en el rastro.
func (uc *RestockUseCase) Restock(ctx context.Context, companyID, userID string, in dto.StockEntryRequest) (*dto.StockEntryResponse, error) {
	if in.ProductID == "" || !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, &domsales.ValidationError{Reason: "producto y cantidad > 0 son obligatorios"}
	}
	reason := in.Reason
	if reason == "" {
		reason = entity.MovementReasonRestock
	}

	product, err := uc.productRepo.GetByID(ctx, companyID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &domsales.ValidationError{Reason: "producto desconocido: " + in.ProductID}
	}

	var change *repository.StockChange
	err = uc.txRunner.Run(ctx, func(r appsales.TxRepos) error {
		var err error
		change, err = r.Stock.Increment(ctx, companyID, in.ProductID, in.Quantity)
		if err != nil {
			return err
		}
		mov := &entity.StockMovement{
			ID:        uuid.New().String(),
			CompanyID: companyID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Reason:    reason,
			CreatedAt: time.Now(),
			CreatedBy: userID,
		}
		return r.Movements.Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}

	status := entity.ProductInStock
	if change.After.LessThanOrEqual(change.MinStock) {
		status = entity.ProductLowStock
	}
	return &dto.StockEntryResponse{ProductID: in.ProductID, Stock: change.After, Status: status}, nil
}
