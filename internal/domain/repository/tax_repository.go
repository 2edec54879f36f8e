package repository

import (
	"context"

	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
)

// TaxRepository define el puerto de configuración fiscal y retenciones.
type TaxRepository interface {
	ActiveConfigs(ctx context.Context, companyID string) ([]*entity.TaxConfig, error)
	CreateRetention(ctx context.Context, ret *entity.TaxRetention) error
	// DeleteByEntity elimina las retenciones ligadas a una venta (compensación).
	DeleteByEntity(ctx context.Context, entityID string) error
}
