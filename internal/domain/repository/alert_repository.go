package repository

import (
	"context"

	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
)

// AlertRepository define el puerto de alertas y de la cola durable de
// notificaciones que consume el worker externo.
type AlertRepository interface {
	// CreateIfAbsent inserta la alerta salvo que ya exista una sin resolver para
	// (tipo, entidad). Devuelve true si insertó.
	CreateIfAbsent(ctx context.Context, a *entity.Alert) (bool, error)
	Resolve(ctx context.Context, companyID, alertID string) error

	Enqueue(ctx context.Context, job *entity.AlertJob) error
	// ClaimPending toma hasta limit trabajos pendientes y los marca como
	// reclamados en la misma operación, para que varios workers no procesen el
	// mismo lote. Los claims caducados vuelven a ser elegibles.
	ClaimPending(ctx context.Context, limit int) ([]*entity.AlertJob, error)
	MarkProcessed(ctx context.Context, jobID string) error
	// Release devuelve a la cola un trabajo reclamado cuya entrega falló.
	Release(ctx context.Context, jobID string) error
	// DeliveredToday indica si hoy ya se procesó un trabajo del mismo tipo y
	// entidad (deduplicación del consumidor ante entrega at-least-once).
	DeliveredToday(ctx context.Context, companyID, kind, entityID string) (bool, error)
}
