package sales

import (
	"context"
	"time"

	"github.com/jcastellanos/puntoventa-api/internal/application/dto"
	domsales "github.com/jcastellanos/puntoventa-api/internal/domain/sales"
	"github.com/jcastellanos/puntoventa-api/internal/domain/repository"
)

// Límite máximo de página.
const maxPageLimit = 100

// SaleQueryUseCase atiende el lado de lectura: listado paginado, detalle y
// resúmenes agregados.
type SaleQueryUseCase struct {
	saleRepo      repository.SaleRepository
	analyticsRepo repository.AnalyticsRepository
}

// NewSaleQueryUseCase construye el caso de uso de consultas.
func NewSaleQueryUseCase(saleRepo repository.SaleRepository, analyticsRepo repository.AnalyticsRepository) *SaleQueryUseCase {
	return &SaleQueryUseCase{saleRepo: saleRepo, analyticsRepo: analyticsRepo}
}

// List devuelve la página solicitada. page y limit inválidos son error de
// validación; startDate/endDate van en formato YYYY-MM-DD.
func (uc *SaleQueryUseCase) List(ctx context.Context, companyID string, page dto.PageRequest, startDate, endDate string) (*dto.SaleListResponse, error) {
	if page.Page == 0 {
		page.Page = 1
	}
	if page.Limit == 0 {
		page.Limit = 20
	}
	if page.Page < 1 || page.Limit < 1 || page.Limit > maxPageLimit {
		return nil, &domsales.ValidationError{Reason: "parámetros de paginación inválidos"}
	}

	f := repository.SaleFilter{Page: page.Page, Limit: page.Limit}
	if startDate != "" {
		t, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return nil, &domsales.ValidationError{Reason: "startDate inválida (YYYY-MM-DD)"}
		}
		f.StartDate = &t
	}
	if endDate != "" {
		t, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, &domsales.ValidationError{Reason: "endDate inválida (YYYY-MM-DD)"}
		}
		// el filtro es inclusivo: hasta el final del día
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.EndDate = &end
	}

	list, total, err := uc.saleRepo.List(ctx, companyID, f)
	if err != nil {
		return nil, err
	}
	resp := &dto.SaleListResponse{
		Data:       make([]*dto.SaleResponse, 0, len(list)),
		Pagination: dto.NewPagination(page.Page, page.Limit, total),
	}
	for _, s := range list {
		resp.Data = append(resp.Data, dto.NewSaleResponse(s))
	}
	return resp, nil
}

// GetByID devuelve la venta con sus líneas.
func (uc *SaleQueryUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return dto.NewSaleResponse(sale), nil
}

// Stats devuelve los agregados globales de ventas.
func (uc *SaleQueryUseCase) Stats(ctx context.Context, companyID string) (*dto.SalesStatsResponse, error) {
	summary, err := uc.analyticsRepo.SalesSummary(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return dto.NewSalesStatsResponse(summary), nil
}

// Today devuelve las ventas del día en curso con conteo y total. El corte del
// día se calcula una sola vez, en la zona horaria del proceso, y alimenta
// tanto el listado como los totales.
func (uc *SaleQueryUseCase) Today(ctx context.Context, companyID string) (*dto.TodaySummaryResponse, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	f := repository.SaleFilter{Page: 1, Limit: maxPageLimit, StartDate: &start}
	list, _, err := uc.saleRepo.List(ctx, companyID, f)
	if err != nil {
		return nil, err
	}
	totals, err := uc.analyticsRepo.TotalsSince(ctx, companyID, start)
	if err != nil {
		return nil, err
	}
	resp := &dto.TodaySummaryResponse{
		Sales:  make([]*dto.SaleResponse, 0, len(list)),
		Totals: dto.TodayTotals{Count: totals.Count, Total: totals.Total},
	}
	for _, s := range list {
		resp.Sales = append(resp.Sales, dto.NewSaleResponse(s))
	}
	return resp, nil
}
