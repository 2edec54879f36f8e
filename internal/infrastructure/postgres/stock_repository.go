package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jcastellanos/puntoventa-api/internal/domain"
	"github.com/jcastellanos/puntoventa-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementa el libro de stock sobre PostgreSQL (usable con pool o tx).
// La serialización es por fila de producto vía UPDATE condicional; nunca
// read-then-write ni locks en proceso.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// DecrementIfAvailable resta qty solo si el stock alcanza (compare-and-decrement
// en una sola sentencia). Sin filas afectadas significa stock insuficiente: el
// coordinador valida antes la existencia del producto.
func (r *StockRepo) DecrementIfAvailable(ctx context.Context, companyID, productID string, qty decimal.Decimal) (*repository.StockChange, error) {
	const q = `
		UPDATE products
		SET stock = stock - $3, updated_at = now()
		WHERE id = $1 AND company_id = $2 AND stock >= $3
		RETURNING stock, min_stock`
	var after, minStock decimal.Decimal
	err := r.q.QueryRow(ctx, q, productID, companyID, qty).Scan(&after, &minStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInsufficientStock
		}
		return nil, fmt.Errorf("decrement stock %s: %w", productID, err)
	}
	return &repository.StockChange{Before: after.Add(qty), After: after, MinStock: minStock}, nil
}

// Increment suma qty al stock (reposición o compensación).
func (r *StockRepo) Increment(ctx context.Context, companyID, productID string, qty decimal.Decimal) (*repository.StockChange, error) {
	const q = `
		UPDATE products
		SET stock = stock + $3, updated_at = now()
		WHERE id = $1 AND company_id = $2
		RETURNING stock, min_stock`
	var after, minStock decimal.Decimal
	err := r.q.QueryRow(ctx, q, productID, companyID, qty).Scan(&after, &minStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("increment stock %s: %w", productID, err)
	}
	return &repository.StockChange{Before: after.Sub(qty), After: after, MinStock: minStock}, nil
}
