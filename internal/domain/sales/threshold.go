package sales

import "github.com/shopspring/decimal"

// CrossedMinimum indica si un decremento cruzó el umbral mínimo de stock:
// el stock quedó en o por debajo del mínimo y antes estaba por encima.
// Ventas posteriores que mantienen el stock bajo el mínimo no cruzan de nuevo,
// así la alerta low_stock se dispara una sola vez por caída.
func CrossedMinimum(before, after, min decimal.Decimal) bool {
	return after.LessThanOrEqual(min) && before.GreaterThan(min)
}
