package repository

import (
	"context"

	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
)

// StockMovementRepository define el puerto del rastro de movimientos (append-only).
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	ListByProduct(ctx context.Context, companyID, productID string, limit int) ([]*entity.StockMovement, error)
}
