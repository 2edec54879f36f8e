package entity

import "time"

// Tipos y prioridades de alerta.
const (
	AlertLowStock     = "low_stock"
	AlertExpiringLot  = "expiring_lot"
	AlertPriorityHigh = "high"
	AlertPriorityMed  = "medium"
)

// Alert es una notificación de negocio. A lo sumo una sin resolver por
// (tipo, entidad); lo garantiza un índice único parcial en la base.
type Alert struct {
	ID        string
	CompanyID string
	Type      string
	EntityID  string // producto, lote, etc.
	Priority  string
	Resolved  bool
	CreatedAt time.Time
}

// Estados de un trabajo en la cola de notificaciones. El claim es un cambio
// de estado visible entre procesos; un claim caducado vuelve a ser elegible.
const (
	AlertJobPending   = "pending"
	AlertJobClaimed   = "claimed"
	AlertJobProcessed = "processed"
)

// AlertJob es una entrada de la cola durable que consume el worker de
// notificaciones (entrega at-least-once; el consumidor deduplica).
type AlertJob struct {
	ID          string
	CompanyID   string
	Kind        string // tipo de alerta
	EntityID    string
	Payload     []byte // JSON con el detalle (stock actual, mínimo, etc.)
	Status      string
	Attempts    int
	CreatedAt   time.Time
	ClaimedAt   *time.Time
	ProcessedAt *time.Time
}
