package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jcastellanos/puntoventa-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo implementa las consultas agregadas de ventas sobre PostgreSQL.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// SalesSummary devuelve ingresos totales, conteo, promedio, desglose por
// método de pago y productos más vendidos.
func (r *AnalyticsRepo) SalesSummary(ctx context.Context, companyID string) (*repository.SalesSummary, error) {
	var s repository.SalesSummary
	const totalsQ = `
		SELECT COALESCE(SUM(total), 0), COUNT(*), COALESCE(AVG(total), 0)
		FROM sales WHERE company_id = $1`
	if err := r.q.QueryRow(ctx, totalsQ, companyID).Scan(&s.TotalRevenue, &s.SalesCount, &s.AvgSale); err != nil {
		return nil, fmt.Errorf("sales totals: %w", err)
	}

	const byMethodQ = `
		SELECT payment_method, COUNT(*), COALESCE(SUM(total), 0)
		FROM sales WHERE company_id = $1
		GROUP BY payment_method
		ORDER BY SUM(total) DESC`
	rows, err := r.q.Query(ctx, byMethodQ, companyID)
	if err != nil {
		return nil, fmt.Errorf("sales by payment method: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m repository.PaymentMethodTotal
		if err := rows.Scan(&m.Method, &m.Count, &m.Total); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		s.ByPaymentMethod = append(s.ByPaymentMethod, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const topQ = `
		SELECT si.product_id, COALESCE(p.name, si.product_id::text),
		       COALESCE(SUM(si.quantity), 0), COALESCE(SUM(si.line_total), 0)
		FROM sale_items si
		JOIN sales sa ON sa.id = si.sale_id
		LEFT JOIN products p ON p.id = si.product_id
		WHERE sa.company_id = $1
		GROUP BY si.product_id, p.name
		ORDER BY SUM(si.quantity) DESC
		LIMIT 5`
	topRows, err := r.q.Query(ctx, topQ, companyID)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer topRows.Close()
	for topRows.Next() {
		var p repository.TopProduct
		if err := topRows.Scan(&p.ProductID, &p.Name, &p.Quantity, &p.Revenue); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		s.TopProducts = append(s.TopProducts, p)
	}
	return &s, topRows.Err()
}

// TotalsSince devuelve el conteo y total de ventas desde el instante dado.
func (r *AnalyticsRepo) TotalsSince(ctx context.Context, companyID string, from time.Time) (*repository.TodayTotals, error) {
	const q = `
		SELECT COUNT(*), COALESCE(SUM(total), 0)
		FROM sales WHERE company_id = $1 AND created_at >= $2`
	var t repository.TodayTotals
	if err := r.q.QueryRow(ctx, q, companyID, from).Scan(&t.Count, &t.Total); err != nil {
		return nil, fmt.Errorf("today totals: %w", err)
	}
	return &t, nil
}
