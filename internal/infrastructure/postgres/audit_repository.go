package postgres

import (
	"context"
	"fmt"

	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
	"github.com/jcastellanos/puntoventa-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo implementa el registro de auditoría sobre PostgreSQL (usable con pool o tx).
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

func (r *AuditRepo) Create(ctx context.Context, l *entity.AuditLog) error {
	const q = `
		INSERT INTO audit_logs (id, company_id, action, entity_id, detail, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid)`
	_, err := r.q.Exec(ctx, q, l.ID, l.CompanyID, l.Action, l.EntityID, l.Detail, l.CreatedAt, l.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
