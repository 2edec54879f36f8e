package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethodTotal total vendido por método de pago.
type PaymentMethodTotal struct {
	Method string
	Count  int
	Total  decimal.Decimal
}

// TopProduct producto más vendido por cantidad acumulada.
type TopProduct struct {
	ProductID string
	Name      string
	Quantity  decimal.Decimal
	Revenue   decimal.Decimal
}

// SalesSummary agregados globales de ventas de una empresa.
type SalesSummary struct {
	TotalRevenue    decimal.Decimal
	SalesCount      int
	AvgSale         decimal.Decimal
	ByPaymentMethod []PaymentMethodTotal
	TopProducts     []TopProduct
}

// TodayTotals conteo y total del día en curso.
type TodayTotals struct {
	Count int
	Total decimal.Decimal
}

// AnalyticsRepository define el puerto de consultas agregadas de ventas.
type AnalyticsRepository interface {
	SalesSummary(ctx context.Context, companyID string) (*SalesSummary, error)
	// TotalsSince agrega las ventas desde el instante dado. El llamador define
	// el corte del día, así el listado y los totales usan la misma frontera.
	TotalsSince(ctx context.Context, companyID string, from time.Time) (*TodayTotals, error)
}
