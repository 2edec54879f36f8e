package sales

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// NormalizeRate acepta tasas como fracción (0.16) o porcentaje (16) y
// devuelve siempre la fracción.
func NormalizeRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return rate.Div(hundred)
	}
	return rate
}

// RetainedAmount calcula la porción retenida: base * tasa, redondeada a dos
// decimales. Ej.: base 100, tasa 16 (%) -> 16.00.
func RetainedAmount(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(NormalizeRate(rate)).Round(2)
}
