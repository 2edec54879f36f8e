package repository

import (
	"context"
	"time"

	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
)

// SaleFilter filtros del listado de ventas.
type SaleFilter struct {
	Page      int
	Limit     int
	StartDate *time.Time
	EndDate   *time.Time
}

// SaleRepository define el puerto de persistencia para Sale y sus líneas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	// GetByID devuelve nil, ErrNotFound si no existe o es de otra empresa.
	GetByID(ctx context.Context, companyID, id string) (*entity.Sale, error)
	// GetByIdempotencyKey devuelve la venta creada con esa clave, o nil, nil si
	// ninguna la usó. Es la consulta durable de replays: no depende del TTL del
	// almacén de idempotencia.
	GetByIdempotencyKey(ctx context.Context, companyID, key string) (*entity.Sale, error)
	// GetForUpdate bloquea la fila de la venta (SELECT FOR UPDATE) para que la
	// cancelación y otras mutaciones sobre la misma venta se serialicen.
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Sale, error)
	GetItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error)
	DeleteItems(ctx context.Context, saleID string) error
	Delete(ctx context.Context, companyID, id string) error
	// List devuelve la página solicitada y el total de filas que cumplen el filtro.
	List(ctx context.Context, companyID string, f SaleFilter) ([]*entity.Sale, int, error)
}
