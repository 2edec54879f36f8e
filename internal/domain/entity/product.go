package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados derivados del stock frente al mínimo configurado.
const (
	ProductInStock  = "in_stock"
	ProductLowStock = "low_stock"
)

// Product es la vista del catálogo que necesita el libro de stock:
// cantidad actual (nunca negativa) y umbral mínimo.
type Product struct {
	ID        string
	CompanyID string
	Name      string
	SKU       string
	Price     decimal.Decimal
	Stock     decimal.Decimal
	MinStock  decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StockStatus devuelve el estado derivado según el umbral mínimo.
func (p *Product) StockStatus() string {
	if p.Stock.LessThanOrEqual(p.MinStock) {
		return ProductLowStock
	}
	return ProductInStock
}
