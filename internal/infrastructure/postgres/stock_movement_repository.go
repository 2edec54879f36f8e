package postgres

import (
	"context"
	"fmt"

	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
	"github.com/jcastellanos/puntoventa-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementa el rastro de movimientos sobre PostgreSQL
// (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento (append-only, nunca se actualiza ni borra).
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	const q = `
		INSERT INTO stock_movements (id, company_id, product_id, quantity, reason, sale_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::uuid, $7, NULLIF($8, '')::uuid)`
	_, err := r.q.Exec(ctx, q,
		m.ID, m.CompanyID, m.ProductID, m.Quantity, m.Reason, m.SaleID, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByProduct devuelve los movimientos más recientes de un producto.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, companyID, productID string, limit int) ([]*entity.StockMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
		SELECT id, company_id, product_id, quantity, reason,
		       COALESCE(sale_id::text, ''), created_at, COALESCE(created_by::text, '')
		FROM stock_movements
		WHERE company_id = $1 AND product_id = $2
		ORDER BY created_at DESC
		LIMIT $3`
	rows, err := r.q.Query(ctx, q, companyID, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.ProductID, &m.Quantity, &m.Reason, &m.SaleID, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
