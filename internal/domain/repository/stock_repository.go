package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// StockChange es el antes/después de una mutación de stock, con el umbral
// mínimo del producto para detectar cruces.
type StockChange struct {
	Before   decimal.Decimal
	After    decimal.Decimal
	MinStock decimal.Decimal
}

// StockRepository define el puerto del libro de stock. Ambas operaciones usan
// primitivas atómicas del almacén (UPDATE condicional), no read-then-write.
type StockRepository interface {
	// DecrementIfAvailable resta qty solo si el stock actual alcanza
	// (compare-and-decrement). Devuelve ErrInsufficientStock si no alcanza;
	// el stock nunca queda negativo.
	DecrementIfAvailable(ctx context.Context, companyID, productID string, qty decimal.Decimal) (*StockChange, error)
	// Increment suma qty (reposición o compensación de cancelación).
	Increment(ctx context.Context, companyID, productID string, qty decimal.Decimal) (*StockChange, error)
}
