package alerts

import (
	"context"
	"time"

	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
	"github.com/jcastellanos/puntoventa-api/internal/domain/repository"
	"github.com/jcastellanos/puntoventa-api/pkg/logger"
)

// Notifier entrega una notificación al canal externo (correo, webhook, etc.).
type Notifier interface {
	Notify(ctx context.Context, job *entity.AlertJob) error
}

// Dispatcher consume la cola durable de notificaciones. La entrega es
// at-least-once; DeliveredToday deduplica para no notificar el mismo producto
// más de una vez al día.
type Dispatcher struct {
	repo     repository.AlertRepository
	notifier Notifier
	log      *logger.Logger
	interval time.Duration
	batch    int
}

func NewDispatcher(repo repository.AlertRepository, notifier Notifier, log *logger.Logger, interval time.Duration) *Dispatcher {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Dispatcher{repo: repo, notifier: notifier, log: log, interval: interval, batch: 20}
}

// Run procesa la cola hasta que ctx se cancele.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		if err := d.drain(ctx); err != nil {
			d.log.Error().Err(err).Msg("Error procesando la cola de notificaciones")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// drain procesa lotes pendientes hasta vaciar la cola. Cada lote queda
// reclamado mientras se procesa; los trabajos cuya entrega falla se liberan
// de vuelta a la cola.
func (d *Dispatcher) drain(ctx context.Context) error {
	for {
		jobs, err := d.repo.ClaimPending(ctx, d.batch)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			return nil
		}
		advanced := 0
		for _, job := range jobs {
			if d.process(ctx, job) {
				advanced++
			}
		}
		// Si nada avanzó (p.ej. el canal está caído) se espera al próximo ciclo
		// en lugar de reintentar en caliente el mismo lote.
		if advanced == 0 || len(jobs) < d.batch {
			return nil
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, job *entity.AlertJob) bool {
	delivered, err := d.repo.DeliveredToday(ctx, job.CompanyID, job.Kind, job.EntityID)
	if err != nil {
		d.log.Error().Err(err).Str("jobId", job.ID).Msg("No se pudo verificar la deduplicación")
		d.release(ctx, job.ID)
		return false
	}
	if !delivered {
		if err := d.notifier.Notify(ctx, job); err != nil {
			// Vuelve a la cola; el próximo ciclo reintenta.
			d.log.Warn().Err(err).Str("jobId", job.ID).Msg("Fallo al entregar la notificación")
			d.release(ctx, job.ID)
			return false
		}
	} else {
		d.log.Debug().Str("jobId", job.ID).Msg("Notificación duplicada del día, descartada")
	}
	if err := d.repo.MarkProcessed(ctx, job.ID); err != nil {
		d.log.Error().Err(err).Str("jobId", job.ID).Msg("No se pudo marcar el trabajo como procesado")
		return false
	}
	return true
}

func (d *Dispatcher) release(ctx context.Context, jobID string) {
	if err := d.repo.Release(ctx, jobID); err != nil {
		// El claim caduca solo; el trabajo no se pierde.
		d.log.Error().Err(err).Str("jobId", jobID).Msg("No se pudo liberar el trabajo reclamado")
	}
}

// LogNotifier escribe la notificación en el log. Es el canal por defecto
// cuando no hay integración externa configurada.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, job *entity.AlertJob) error {
	n.log.Info().
		Str("kind", job.Kind).
		Str("companyId", job.CompanyID).
		Str("entityId", job.EntityID).
		RawJSON("payload", job.Payload).
		Msg("Notificación de alerta")
	return nil
}
