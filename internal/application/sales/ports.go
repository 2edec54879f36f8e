package sales

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
	"github.com/jcastellanos/puntoventa-api/internal/domain/repository"
)

// TxRepos agrupa los repositorios atados a una misma transacción.
type TxRepos struct {
	Sales     repository.SaleRepository
	Series    repository.SeriesRepository
	Stock     repository.StockRepository
	Movements repository.StockMovementRepository
	Tax       repository.TaxRepository
	Audit     repository.AuditRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn retorna nil,
// Rollback en caso contrario. Es la unidad atómica del coordinador y del
// compensador.
type TxRunner interface {
	Run(ctx context.Context, fn func(r TxRepos) error) error
}

// IdempotencyStore registra claves de idempotencia de replays offline para que
// un reintento tras una respuesta perdida devuelva la venta original en lugar
// de duplicarla. Reserve es first-writer-wins (SetNX); Complete fija el sale
// id; Release libera la clave si la transacción abortó.
type IdempotencyStore interface {
	Reserve(ctx context.Context, companyID, key string) (bool, error)
	// Lookup devuelve el sale id asociado. found=true con saleID vacío
	// significa que otra petición con la misma clave sigue en curso.
	Lookup(ctx context.Context, companyID, key string) (saleID string, found bool, err error)
	Complete(ctx context.Context, companyID, key, saleID string) error
	Release(ctx context.Context, companyID, key string) error
}

// ThresholdCrossing es un cruce de umbral detectado durante el decremento,
// reportado al emisor de alertas después del commit.
type ThresholdCrossing struct {
	ProductID string
	Stock     decimal.Decimal
	MinStock  decimal.Decimal
}

// AlertEmitter encola notificaciones asíncronas. Fire-and-forget: la
// implementación registra en el log cualquier fallo y nunca lo propaga,
// un fallo de encolado no convierte una venta exitosa en error.
type AlertEmitter interface {
	EmitLowStock(ctx context.Context, companyID string, c ThresholdCrossing)
}

// ReceiptPDFGenerator genera la representación imprimible del recibo.
type ReceiptPDFGenerator interface {
	GenerateReceipt(ctx context.Context, sale *entity.Sale, productNames map[string]string) ([]byte, error)
}
