package sales_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcastellanos/puntoventa-api/internal/domain"
	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
	"github.com/jcastellanos/puntoventa-api/internal/domain/sales"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func item(productID, qty, price, discount string) *entity.SaleItem {
	return &entity.SaleItem{
		ProductID: productID,
		Quantity:  d(qty),
		UnitPrice: d(price),
		Discount:  d(discount),
	}
}

func TestValidateTotals_VentaConsistente(t *testing.T) {
	items := []*entity.SaleItem{
		item("p1", "2", "10.00", "0"),
		item("p2", "1", "5.50", "0.50"),
	}
	// subtotal 25.00, descuento 2.00, impuesto 3.68, total 26.68
	err := sales.ValidateTotals(items, d("25.00"), d("2.00"), d("3.68"), d("26.68"))
	require.NoError(t, err)
}

func TestValidateTotals_ToleranciaDeRedondeo(t *testing.T) {
	items := []*entity.SaleItem{item("p1", "3", "3.33", "0")} // 9.99
	// Una diferencia de un centavo se acepta
	assert.NoError(t, sales.ValidateTotals(items, d("10.00"), d("0"), d("0"), d("10.00")))
	// Dos centavos ya no
	assert.Error(t, sales.ValidateTotals(items, d("10.02"), d("0"), d("0"), d("10.02")))
}

func TestValidateTotals_ListaVacia(t *testing.T) {
	err := sales.ValidateTotals(nil, d("0"), d("0"), d("0"), d("0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestValidateTotals_CantidadNoPositiva(t *testing.T) {
	items := []*entity.SaleItem{item("p1", "0", "10.00", "0")}
	err := sales.ValidateTotals(items, d("0"), d("0"), d("0"), d("0"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestValidateTotals_SubtotalNegativo(t *testing.T) {
	items := []*entity.SaleItem{item("p1", "1", "10.00", "0")}
	err := sales.ValidateTotals(items, d("-10.00"), d("0"), d("0"), d("-10.00"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestValidateTotals_TotalInconsistente(t *testing.T) {
	items := []*entity.SaleItem{item("p1", "1", "10.00", "0")}
	// total != subtotal - descuento + impuesto
	err := sales.ValidateTotals(items, d("10.00"), d("1.00"), d("1.60"), d("12.00"))
	require.Error(t, err)
	var verr *sales.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestValidatePayment_PagoExacto(t *testing.T) {
	assert.NoError(t, sales.ValidatePayment(entity.PaymentCash, d("0"), d("0"), d("10.00")))
}

func TestValidatePayment_CambioCorrecto(t *testing.T) {
	assert.NoError(t, sales.ValidatePayment(entity.PaymentCash, d("20.00"), d("10.00"), d("10.00")))
}

func TestValidatePayment_PagoInsuficiente(t *testing.T) {
	err := sales.ValidatePayment(entity.PaymentCash, d("5.00"), d("0"), d("10.00"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestValidatePayment_MetodoDesconocido(t *testing.T) {
	err := sales.ValidatePayment("bitcoin", d("0"), d("0"), d("10.00"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
