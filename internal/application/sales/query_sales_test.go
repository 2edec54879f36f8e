package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsales "github.com/jcastellanos/puntoventa-api/internal/application/sales"
	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
	"github.com/jcastellanos/puntoventa-api/internal/domain/repository"
)

// fakeAnalyticsRepo registra la frontera con la que se consultan los totales.
type fakeAnalyticsRepo struct {
	lastFrom time.Time
}

func (f *fakeAnalyticsRepo) SalesSummary(context.Context, string) (*repository.SalesSummary, error) {
	return &repository.SalesSummary{}, nil
}

func (f *fakeAnalyticsRepo) TotalsSince(_ context.Context, _ string, from time.Time) (*repository.TodayTotals, error) {
	f.lastFrom = from
	return &repository.TodayTotals{Count: 1, Total: decimal.NewFromInt(10)}, nil
}

func TestToday_ListadoYTotalesUsanLaMismaFronteraDeDia(t *testing.T) {
	store := newMemStore()
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	// Una venta de hoy y una de ayer (hora local).
	store.sales["v-hoy"] = &entity.Sale{ID: "v-hoy", CompanyID: testCompany, CreatedAt: start.Add(time.Minute)}
	store.sales["v-ayer"] = &entity.Sale{ID: "v-ayer", CompanyID: testCompany, CreatedAt: start.Add(-time.Hour)}

	analytics := &fakeAnalyticsRepo{}
	uc := appsales.NewSaleQueryUseCase(&memSaleRepo{s: store}, analytics)

	resp, err := uc.Today(context.Background(), testCompany)
	require.NoError(t, err)
	require.Len(t, resp.Sales, 1)
	assert.Equal(t, "v-hoy", resp.Sales[0].ID)

	// Los totales se consultan con la misma medianoche local que el listado.
	assert.True(t, analytics.lastFrom.Equal(start))
	assert.Equal(t, 1, resp.Totals.Count)
}
