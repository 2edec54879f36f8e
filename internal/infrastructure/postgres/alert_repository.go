package postgres

import (
	"context"
	"fmt"

	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
	"github.com/jcastellanos/puntoventa-api/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

// AlertRepo implementa alertas y la cola de notificaciones sobre PostgreSQL
// (usable con pool o tx).
type AlertRepo struct {
	q Querier
}

// NewAlertRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAlertRepository(q Querier) *AlertRepo {
	return &AlertRepo{q: q}
}

// CreateIfAbsent inserta la alerta salvo que ya exista una sin resolver para
// (empresa, tipo, entidad); lo garantiza el índice único parcial más
// ON CONFLICT DO NOTHING. Devuelve true si insertó.
func (r *AlertRepo) CreateIfAbsent(ctx context.Context, a *entity.Alert) (bool, error) {
	const q = `
		INSERT INTO alerts (id, company_id, type, entity_id, priority, resolved, created_at)
		VALUES ($1, $2, $3, $4, $5, false, $6)
		ON CONFLICT (company_id, type, entity_id) WHERE NOT resolved DO NOTHING`
	tag, err := r.q.Exec(ctx, q, a.ID, a.CompanyID, a.Type, a.EntityID, a.Priority, a.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert alert: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Resolve marca la alerta como resuelta.
func (r *AlertRepo) Resolve(ctx context.Context, companyID, alertID string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE alerts SET resolved = true WHERE id = $1 AND company_id = $2`, alertID, companyID)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("resolve alert %s: no existe", alertID)
	}
	return nil
}

// Enqueue agrega un trabajo a la cola durable de notificaciones.
func (r *AlertRepo) Enqueue(ctx context.Context, job *entity.AlertJob) error {
	const q = `
		INSERT INTO alert_jobs (id, company_id, kind, entity_id, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, q,
		job.ID, job.CompanyID, job.Kind, job.EntityID, job.Payload, entity.AlertJobPending, job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("enqueue alert job: %w", err)
	}
	return nil
}

// ClaimPending toma hasta limit trabajos pendientes y los reclama en la misma
// sentencia (cambio de estado, no lock de transacción): el claim sigue vigente
// mientras el worker procesa. SKIP LOCKED evita que dos workers reclamen la
// misma fila; un claim más viejo que el timeout (worker caído) vuelve a ser
// elegible.
func (r *AlertRepo) ClaimPending(ctx context.Context, limit int) ([]*entity.AlertJob, error) {
	const q = `
		UPDATE alert_jobs
		SET status = $3, claimed_at = now(), attempts = attempts + 1
		WHERE id IN (
			SELECT id FROM alert_jobs
			WHERE status = $1
			   OR (status = $3 AND claimed_at < now() - interval '5 minutes')
			ORDER BY created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, company_id, kind, entity_id, payload, status, attempts, created_at, claimed_at, processed_at`
	rows, err := r.q.Query(ctx, q, entity.AlertJobPending, limit, entity.AlertJobClaimed)
	if err != nil {
		return nil, fmt.Errorf("claim alert jobs: %w", err)
	}
	defer rows.Close()
	var jobs []*entity.AlertJob
	for rows.Next() {
		var j entity.AlertJob
		if err := rows.Scan(&j.ID, &j.CompanyID, &j.Kind, &j.EntityID, &j.Payload, &j.Status, &j.Attempts, &j.CreatedAt, &j.ClaimedAt, &j.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scan alert job: %w", err)
		}
		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}

// MarkProcessed marca el trabajo como procesado.
func (r *AlertRepo) MarkProcessed(ctx context.Context, jobID string) error {
	const q = `
		UPDATE alert_jobs
		SET status = $2, processed_at = now()
		WHERE id = $1`
	if _, err := r.q.Exec(ctx, q, jobID, entity.AlertJobProcessed); err != nil {
		return fmt.Errorf("mark alert job processed: %w", err)
	}
	return nil
}

// Release devuelve a la cola un trabajo reclamado cuya entrega falló.
func (r *AlertRepo) Release(ctx context.Context, jobID string) error {
	const q = `
		UPDATE alert_jobs
		SET status = $2, claimed_at = NULL
		WHERE id = $1`
	if _, err := r.q.Exec(ctx, q, jobID, entity.AlertJobPending); err != nil {
		return fmt.Errorf("release alert job: %w", err)
	}
	return nil
}

// DeliveredToday deduplica en el consumidor: indica si hoy ya se procesó un
// trabajo del mismo tipo y entidad.
func (r *AlertRepo) DeliveredToday(ctx context.Context, companyID, kind, entityID string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM alert_jobs
			WHERE company_id = $1 AND kind = $2 AND entity_id = $3
			  AND status = $4 AND processed_at::date = CURRENT_DATE
		)`
	var exists bool
	err := r.q.QueryRow(ctx, q, companyID, kind, entityID, entity.AlertJobProcessed).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check delivered today: %w", err)
	}
	return exists, nil
}
