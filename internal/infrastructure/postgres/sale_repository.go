package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jcastellanos/puntoventa-api/internal/domain"
	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
	"github.com/jcastellanos/puntoventa-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementa SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, company_id, receipt_number, COALESCE(customer_id::text, ''), user_id,
	subtotal, discount, tax, total, payment_method, amount_paid, change, status, idempotency_key, created_at`

func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	const q = `
		INSERT INTO sales
			(id, company_id, receipt_number, customer_id, user_id,
			 subtotal, discount, tax, total, payment_method, amount_paid, change, status, idempotency_key, created_at)
		VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, q,
		sale.ID, sale.CompanyID, sale.ReceiptNumber, sale.CustomerID, sale.UserID,
		sale.Subtotal, sale.Discount, sale.Tax, sale.Total,
		sale.PaymentMethod, sale.AmountPaid, sale.Change, sale.Status, sale.IdempotencyKey, sale.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (r *SaleRepo) CreateItem(ctx context.Context, item *entity.SaleItem) error {
	const q = `
		INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, discount, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, q,
		item.ID, item.SaleID, item.ProductID, item.Quantity, item.UnitPrice, item.Discount, item.LineTotal,
	)
	if err != nil {
		return fmt.Errorf("insert sale item: %w", err)
	}
	return nil
}

// GetByID devuelve la venta con sus líneas; ErrNotFound si no existe o es de otra empresa.
func (r *SaleRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Sale, error) {
	q := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1 AND company_id = $2`
	return r.getOne(ctx, q, id, companyID)
}

// GetForUpdate bloquea la fila de la venta para serializar la cancelación
// frente a otras mutaciones de la misma venta.
func (r *SaleRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Sale, error) {
	q := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1 AND company_id = $2 FOR UPDATE`
	return r.getOne(ctx, q, id, companyID)
}

// GetByIdempotencyKey devuelve la venta creada con la clave, o nil, nil si la
// clave no se usó.
func (r *SaleRepo) GetByIdempotencyKey(ctx context.Context, companyID, key string) (*entity.Sale, error) {
	q := `SELECT ` + saleColumns + ` FROM sales WHERE idempotency_key = $1 AND company_id = $2`
	sale, err := r.getOne(ctx, q, key, companyID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return sale, err
}

func (r *SaleRepo) getOne(ctx context.Context, q, id, companyID string) (*entity.Sale, error) {
	sale, err := scanSale(r.q.QueryRow(ctx, q, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	items, err := r.GetItems(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return sale, nil
}

func (r *SaleRepo) GetItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error) {
	const q = `
		SELECT id, sale_id, product_id, quantity, unit_price, discount, line_total
		FROM sale_items WHERE sale_id = $1`
	rows, err := r.q.Query(ctx, q, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	var items []*entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Discount, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func (r *SaleRepo) DeleteItems(ctx context.Context, saleID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, saleID); err != nil {
		return fmt.Errorf("delete sale items: %w", err)
	}
	return nil
}

func (r *SaleRepo) Delete(ctx context.Context, companyID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve la página y el total de ventas que cumplen el filtro, más
// recientes primero.
func (r *SaleRepo) List(ctx context.Context, companyID string, f repository.SaleFilter) ([]*entity.Sale, int, error) {
	where := `WHERE company_id = $1`
	args := []any{companyID}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		where += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM sales `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	q := fmt.Sprintf(`SELECT %s FROM sales %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		saleColumns, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var list []*entity.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, sale := range list {
		items, err := r.GetItems(ctx, sale.ID)
		if err != nil {
			return nil, 0, err
		}
		sale.Items = items
	}
	return list, total, nil
}

func scanSale(row pgxScanner) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.ReceiptNumber, &s.CustomerID, &s.UserID,
		&s.Subtotal, &s.Discount, &s.Tax, &s.Total,
		&s.PaymentMethod, &s.AmountPaid, &s.Change, &s.Status, &s.IdempotencyKey, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
