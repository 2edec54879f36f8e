package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Motivos de movimiento de stock.
const (
	MovementReasonSale         = "sale"
	MovementReasonRestock      = "restock"
	MovementReasonCancellation = "cancellation"
	MovementReasonAdjustment   = "adjustment"
)

// StockMovement es una fila del rastro de auditoría de stock (append-only).
// Referencia a la venta pero no le pertenece: sobrevive a la cancelación.
type StockMovement struct {
	ID        string
	CompanyID string
	ProductID string
	Quantity  decimal.Decimal // con signo: negativo para salidas
	Reason    string
	SaleID    string // opcional: venta relacionada
	CreatedAt time.Time
	CreatedBy string // UserID
}
