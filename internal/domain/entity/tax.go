package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxConfig configuración fiscal activa por empresa. Rate puede venir como
// fracción (0.16) o como porcentaje (16); la normalización la hace el dominio.
type TaxConfig struct {
	ID        string
	CompanyID string
	TaxType   string // ej. "IVA", "ISLR"
	Rate      decimal.Decimal
	IsActive  bool
	CreatedAt time.Time
}

// TaxRetention es la porción del impuesto retenida fiscalmente en una venta.
// Referencia a la venta pero persiste para auditoría; solo se elimina si la
// venta se cancela.
type TaxRetention struct {
	ID             string
	CompanyID      string
	EntityID       string // venta relacionada
	EntityType     string // "sale"
	TaxType        string
	BaseAmount     decimal.Decimal
	RetainedAmount decimal.Decimal // BaseAmount * rate
	CreatedAt      time.Time
}
