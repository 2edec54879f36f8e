package entity

import "time"

// Acciones registradas en audit_logs.
const (
	AuditSaleCancelled = "sale_cancelled"
)

// AuditLog registra operaciones sensibles (por ahora, la reversa de ventas).
type AuditLog struct {
	ID        string
	CompanyID string
	Action    string
	EntityID  string
	Detail    string // texto libre: motivo, número de recibo revertido, etc.
	CreatedAt time.Time
	CreatedBy string
}
