package postgres

import (
	"context"
	"fmt"

	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
	"github.com/jcastellanos/puntoventa-api/internal/domain/repository"
)

var _ repository.TaxRepository = (*TaxRepo)(nil)

// TaxRepo implementa configuración fiscal y retenciones sobre PostgreSQL
// (usable con pool o tx).
type TaxRepo struct {
	q Querier
}

// NewTaxRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTaxRepository(q Querier) *TaxRepo {
	return &TaxRepo{q: q}
}

// ActiveConfigs devuelve las configuraciones fiscales activas de la empresa.
func (r *TaxRepo) ActiveConfigs(ctx context.Context, companyID string) ([]*entity.TaxConfig, error) {
	const q = `
		SELECT id, company_id, tax_type, rate, is_active, created_at
		FROM tax_configs WHERE company_id = $1 AND is_active`
	rows, err := r.q.Query(ctx, q, companyID)
	if err != nil {
		return nil, fmt.Errorf("list tax configs: %w", err)
	}
	defer rows.Close()
	var list []*entity.TaxConfig
	for rows.Next() {
		var c entity.TaxConfig
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.TaxType, &c.Rate, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tax config: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// CreateRetention persiste la retención calculada para la venta.
func (r *TaxRepo) CreateRetention(ctx context.Context, ret *entity.TaxRetention) error {
	const q = `
		INSERT INTO tax_retentions (id, company_id, entity_id, entity_type, tax_type, base_amount, retained_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, q,
		ret.ID, ret.CompanyID, ret.EntityID, ret.EntityType, ret.TaxType,
		ret.BaseAmount, ret.RetainedAmount, ret.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tax retention: %w", err)
	}
	return nil
}

// DeleteByEntity elimina las retenciones ligadas a una venta cancelada.
func (r *TaxRepo) DeleteByEntity(ctx context.Context, entityID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM tax_retentions WHERE entity_id = $1`, entityID); err != nil {
		return fmt.Errorf("delete tax retentions: %w", err)
	}
	return nil
}
