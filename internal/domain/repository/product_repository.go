package repository

import (
	"context"

	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
)

// ProductRepository define el puerto de lectura del catálogo que necesita el
// pipeline de ventas (validación de productos y vista de stock).
type ProductRepository interface {
	// GetByID devuelve nil, nil si el producto no existe.
	GetByID(ctx context.Context, companyID, id string) (*entity.Product, error)
}
