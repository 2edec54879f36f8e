// Package pdf implementa la representación imprimible del recibo de venta
// usando Maroto v2.
//
// Layout (media carta, pensado para impresión de mostrador):
//
//	┌──────────────────────────────────────────────┐
//	│  RECIBO DE VENTA        N° FAC A/0042        │
//	│  Fecha / Operador                            │
//	│  ──────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | P.Unit | Importe   │
//	│  ──────────────────────────────────────────  │
//	│  Subtotal / Descuento / Impuesto / TOTAL     │
//	│  Pago (método, recibido, cambio)             │
//	└──────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appsales "github.com/jcastellanos/puntoventa-api/internal/application/sales"
	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 30, Green: 30, Blue: 30}
	colorGray    = &props.Color{Red: 110, Green: 110, Blue: 110}
)

var _ appsales.ReceiptPDFGenerator = (*MarotoReceiptGenerator)(nil)

// MarotoReceiptGenerator implementa sales.ReceiptPDFGenerator usando Maroto v2.
type MarotoReceiptGenerator struct{}

// NewMarotoReceiptGenerator construye el generador.
func NewMarotoReceiptGenerator() *MarotoReceiptGenerator { return &MarotoReceiptGenerator{} }

// GenerateReceipt genera el PDF del recibo y devuelve sus bytes.
func (g *MarotoReceiptGenerator) GenerateReceipt(
	_ context.Context,
	sale *entity.Sale,
	productNames map[string]string,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "courier", Size: 9}).
		WithTitle("Recibo "+sale.ReceiptNumber, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.4}))
	m.AddRows(tableHeaderRow())
	for _, r := range itemRows(sale, productNames) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range totalsRows(sale) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(2))
	m.AddRows(paymentRow(sale))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar recibo: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(sale *entity.Sale) core.Row {
	fecha := sale.CreatedAt.Format("02/01/2006 15:04")
	return row.New(16).Add(
		col.New(7).Add(
			text.New("RECIBO DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New("Fecha: "+fecha, props.Text{Size: 8, Top: 8, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("N° "+sale.ReceiptNumber, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 1,
			}),
			text.New("Operador: "+sale.UserID, props.Text{
				Size: 7, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary}
	return row.New(6).Add(
		col.New(2).Add(text.New("Cant", h)),
		col.New(5).Add(text.New("Producto", h)),
		col.New(2).Add(text.New("P.Unit", mergeAlign(h, align.Right))),
		col.New(3).Add(text.New("Importe", mergeAlign(h, align.Right))),
	)
}

func itemRows(sale *entity.Sale, productNames map[string]string) []core.Row {
	rows := make([]core.Row, 0, len(sale.Items))
	for _, it := range sale.Items {
		name := productNames[it.ProductID]
		if name == "" {
			name = it.ProductID
		}
		cell := props.Text{Size: 8}
		rows = append(rows, row.New(5).Add(
			col.New(2).Add(text.New(it.Quantity.String(), cell)),
			col.New(5).Add(text.New(name, cell)),
			col.New(2).Add(text.New(money(it.UnitPrice), mergeAlign(cell, align.Right))),
			col.New(3).Add(text.New(money(it.LineTotal), mergeAlign(cell, align.Right))),
		))
	}
	return rows
}

func totalsRows(sale *entity.Sale) []core.Row {
	rows := []core.Row{
		totalRow("Subtotal", money(sale.Subtotal), false),
	}
	if sale.Discount.IsPositive() {
		rows = append(rows, totalRow("Descuento", "-"+money(sale.Discount), false))
	}
	rows = append(rows,
		totalRow("Impuesto", money(sale.Tax), false),
		totalRow("TOTAL", money(sale.Total), true),
	)
	return rows
}

func totalRow(label, value string, bold bool) core.Row {
	p := props.Text{Size: 9, Align: align.Right}
	if bold {
		p.Style = fontstyle.Bold
		p.Size = 11
	}
	return row.New(5).Add(
		col.New(9).Add(text.New(label, p)),
		col.New(3).Add(text.New(value, p)),
	)
}

func paymentRow(sale *entity.Sale) core.Row {
	detail := fmt.Sprintf("Pago: %s  Recibido: %s  Cambio: %s",
		paymentLabel(sale.PaymentMethod), money(sale.AmountPaid), money(sale.Change))
	return row.New(6).Add(
		col.New(12).Add(text.New(detail, props.Text{Size: 8, Color: colorGray})),
	)
}

func paymentLabel(method string) string {
	switch method {
	case entity.PaymentCash:
		return "Efectivo"
	case entity.PaymentCard:
		return "Tarjeta"
	case entity.PaymentTransfer:
		return "Transferencia"
	case entity.PaymentMixed:
		return "Mixto"
	default:
		return method
	}
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func mergeAlign(p props.Text, a align.Type) props.Text {
	p.Align = a
	return p
}
