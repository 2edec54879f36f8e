// Package offline implementa la cola local de operaciones del punto de venta
// sin conexión: las ventas, cancelaciones y entradas de stock se encolan en
// SQLite y se sincronizan contra la API en orden de llegada cuando vuelve la
// red.
package offline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tipos de operación encolable.
const (
	OpCreateSale = "create_sale"
	OpCancelSale = "cancel_sale"
	OpStockEntry = "stock_entry"
)

// Estados de una operación en la cola.
const (
	StatePending = "pending"
	StateSyncing = "syncing"
	StateSynced  = "synced"
	StateFailed  = "failed"
)

// Operation es una entrada de la cola local. IdempotencyKey viaja en el
// header del replay para que un reintento tras una respuesta perdida no
// duplique la operación en el servidor.
type Operation struct {
	ID             string     `db:"id"`
	Kind           string     `db:"kind"`
	Payload        []byte     `db:"payload"` // JSON del request correspondiente
	IdempotencyKey string     `db:"idempotency_key"`
	State          string     `db:"state"`
	Attempts       int        `db:"attempts"`
	LastError      string     `db:"last_error"`
	CreatedAt      time.Time  `db:"created_at"`
	SyncedAt       *time.Time `db:"synced_at"`
}

// NewOperation arma una operación pendiente con clave de idempotencia propia.
func NewOperation(kind string, payload any) (*Operation, error) {
	switch kind {
	case OpCreateSale, OpCancelSale, OpStockEntry:
	default:
		return nil, fmt.Errorf("tipo de operación desconocido: %q", kind)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializar operación: %w", err)
	}
	return &Operation{
		ID:             uuid.NewString(),
		Kind:           kind,
		Payload:        raw,
		IdempotencyKey: uuid.NewString(),
		State:          StatePending,
		CreatedAt:      time.Now(),
	}, nil
}

// CancelPayload es el payload de una operación de cancelación.
type CancelPayload struct {
	SaleID string `json:"saleId"`
	Reason string `json:"reason,omitempty"`
}
