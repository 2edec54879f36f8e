package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
	"github.com/jcastellanos/puntoventa-api/internal/domain/repository"
)

// SaleItemRequest línea de la venta tal como llega del cliente.
type SaleItemRequest struct {
	ProductID string          `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Discount  decimal.Decimal `json:"discount"`
}

// CreateSaleRequest cuerpo de POST /sales. IdempotencyKey también puede venir
// en el header Idempotency-Key (el header tiene prioridad).
type CreateSaleRequest struct {
	Items          []SaleItemRequest `json:"items"`
	Subtotal       decimal.Decimal   `json:"subtotal"`
	Discount       decimal.Decimal   `json:"discount"`
	Tax            decimal.Decimal   `json:"tax"`
	Total          decimal.Decimal   `json:"total"`
	PaymentMethod  string            `json:"paymentMethod"`
	AmountPaid     decimal.Decimal   `json:"amountPaid"`
	Change         decimal.Decimal   `json:"change"`
	CustomerID     string            `json:"customerId,omitempty"`
	IdempotencyKey string            `json:"idempotencyKey,omitempty"`
}

// CancelSaleRequest cuerpo de POST /sales/:id/cancel.
type CancelSaleRequest struct {
	Reason string `json:"reason"`
}

// SaleItemResponse línea de la venta en respuestas.
type SaleItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Discount  decimal.Decimal `json:"discount"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// SaleResponse venta completa en respuestas.
type SaleResponse struct {
	ID            string             `json:"id"`
	ReceiptNumber string             `json:"receiptNumber"`
	CustomerID    string             `json:"customerId,omitempty"`
	UserID        string             `json:"userId"`
	Items         []SaleItemResponse `json:"items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	Tax           decimal.Decimal    `json:"tax"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"paymentMethod"`
	AmountPaid    decimal.Decimal    `json:"amountPaid"`
	Change        decimal.Decimal    `json:"change"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// NewSaleResponse arma la respuesta desde la entidad.
func NewSaleResponse(s *entity.Sale) *SaleResponse {
	resp := &SaleResponse{
		ID:            s.ID,
		ReceiptNumber: s.ReceiptNumber,
		CustomerID:    s.CustomerID,
		UserID:        s.UserID,
		Items:         make([]SaleItemResponse, 0, len(s.Items)),
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		Tax:           s.Tax,
		Total:         s.Total,
		PaymentMethod: s.PaymentMethod,
		AmountPaid:    s.AmountPaid,
		Change:        s.Change,
		Status:        s.Status,
		CreatedAt:     s.CreatedAt,
	}
	for _, it := range s.Items {
		resp.Items = append(resp.Items, SaleItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Discount:  it.Discount,
			LineTotal: it.LineTotal,
		})
	}
	return resp
}

// SaleListResponse página de ventas.
type SaleListResponse struct {
	Data       []*SaleResponse `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// PaymentMethodStat agregado por método de pago.
type PaymentMethodStat struct {
	Method string          `json:"method"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// TopProductStat producto más vendido.
type TopProductStat struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// SalesStatsResponse respuesta de GET /sales/stats/summary.
type SalesStatsResponse struct {
	TotalRevenue    decimal.Decimal     `json:"totalRevenue"`
	SalesCount      int                 `json:"salesCount"`
	AvgSale         decimal.Decimal     `json:"avgSale"`
	ByPaymentMethod []PaymentMethodStat `json:"byPaymentMethod"`
	TopProducts     []TopProductStat    `json:"topProducts"`
}

// NewSalesStatsResponse arma la respuesta desde el agregado del repositorio.
func NewSalesStatsResponse(s *repository.SalesSummary) *SalesStatsResponse {
	resp := &SalesStatsResponse{
		TotalRevenue:    s.TotalRevenue,
		SalesCount:      s.SalesCount,
		AvgSale:         s.AvgSale,
		ByPaymentMethod: make([]PaymentMethodStat, 0, len(s.ByPaymentMethod)),
		TopProducts:     make([]TopProductStat, 0, len(s.TopProducts)),
	}
	for _, m := range s.ByPaymentMethod {
		resp.ByPaymentMethod = append(resp.ByPaymentMethod, PaymentMethodStat{Method: m.Method, Count: m.Count, Total: m.Total})
	}
	for _, p := range s.TopProducts {
		resp.TopProducts = append(resp.TopProducts, TopProductStat{ProductID: p.ProductID, Name: p.Name, Quantity: p.Quantity, Revenue: p.Revenue})
	}
	return resp
}

// TodayTotals conteo y total del día.
type TodayTotals struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// TodaySummaryResponse respuesta de GET /sales/today/summary.
type TodaySummaryResponse struct {
	Sales  []*SaleResponse `json:"sales"`
	Totals TodayTotals     `json:"totals"`
}

// StockEntryRequest cuerpo de POST /stock/entries (reposición).
type StockEntryRequest struct {
	ProductID string          `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason,omitempty"` // restock por defecto
}

// StockEntryResponse resultado de la reposición.
type StockEntryResponse struct {
	ProductID string          `json:"productId"`
	Stock     decimal.Decimal `json:"stock"`
	Status    string          `json:"status"` // in_stock | low_stock
}
