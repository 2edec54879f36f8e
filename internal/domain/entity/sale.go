package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
	PaymentMixed    = "mixed"
)

// Estados de una venta. No hay estado "cancelada": la compensación elimina el
// registro y deja el rastro en stock_movements y audit_logs.
const (
	SaleStatusCompleted = "completed"
)

// Sale representa la cabecera de una venta (recibo fiscal).
type Sale struct {
	ID            string
	CompanyID     string
	ReceiptNumber string // único por empresa+serie, ej. "FAC A/0042"
	CustomerID    string // opcional
	UserID        string // operador que registró la venta
	Items         []*SaleItem
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	AmountPaid    decimal.Decimal
	Change        decimal.Decimal
	Status        string
	// Clave del replay offline que creó la venta; vacía en ventas en línea.
	// Persistirla con la venta hace atómico el registro clave -> venta.
	IdempotencyKey string
	CreatedAt      time.Time
}

// SaleItem representa una línea de la venta. Las líneas pertenecen a su venta
// y se eliminan con ella.
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  decimal.Decimal // > 0
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	LineTotal decimal.Decimal // quantity*unitPrice - discount
}
