// Package sales contiene la lógica pura del pipeline de ventas: consistencia
// aritmética del recibo, formato del consecutivo, cruce de umbral de stock y
// cálculo de retención fiscal. No depende de infraestructura.
package sales

import (
	"github.com/shopspring/decimal"

	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
)

// Tolerancia de redondeo a dos decimales para comparar totales.
var tolerance = decimal.NewFromFloat(0.01)

// LineTotal calcula el total de una línea: cantidad*precio - descuento.
func LineTotal(quantity, unitPrice, discount decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Sub(discount)
}

// withinTolerance compara dos montos con la tolerancia de redondeo.
func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

// ValidateTotals verifica la consistencia aritmética del recibo:
//   - lista de líneas no vacía, cantidades > 0, precios y descuentos >= 0
//   - subtotal == suma de totales de línea (± tolerancia)
//   - total == subtotal - descuento + impuesto (± tolerancia)
//
// Devuelve ErrInvalidInput ante cualquier inconsistencia. Las reglas de stock
// no se evalúan aquí.
func ValidateTotals(items []*entity.SaleItem, subtotal, discount, tax, total decimal.Decimal) error {
	if len(items) == 0 {
		return errInvalid("la venta no tiene líneas")
	}
	if subtotal.IsNegative() || discount.IsNegative() || tax.IsNegative() {
		return errInvalid("subtotal, descuento e impuesto deben ser >= 0")
	}

	var sum decimal.Decimal
	for _, it := range items {
		if it.ProductID == "" {
			return errInvalid("línea sin producto")
		}
		if !it.Quantity.IsPositive() {
			return errInvalid("cantidad debe ser > 0")
		}
		if it.UnitPrice.IsNegative() || it.Discount.IsNegative() {
			return errInvalid("precio y descuento de línea deben ser >= 0")
		}
		sum = sum.Add(LineTotal(it.Quantity, it.UnitPrice, it.Discount))
	}
	if !withinTolerance(sum, subtotal) {
		return errInvalid("subtotal no coincide con las líneas")
	}
	if !withinTolerance(subtotal.Sub(discount).Add(tax), total) {
		return errInvalid("total no coincide con subtotal - descuento + impuesto")
	}
	return nil
}

// ValidatePayment verifica el método de pago y que lo pagado cubra el total
// cuando se informa (amountPaid en cero se interpreta como pago exacto).
func ValidatePayment(method string, amountPaid, change, total decimal.Decimal) error {
	switch method {
	case entity.PaymentCash, entity.PaymentCard, entity.PaymentTransfer, entity.PaymentMixed:
	default:
		return errInvalid("método de pago desconocido")
	}
	if amountPaid.IsZero() {
		return nil
	}
	if amountPaid.LessThan(total) {
		return errInvalid("monto pagado menor al total")
	}
	if !withinTolerance(amountPaid.Sub(total), change) {
		return errInvalid("cambio no coincide con pagado - total")
	}
	return nil
}
