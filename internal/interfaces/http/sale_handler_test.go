package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcastellanos/puntoventa-api/internal/application/dto"
	"github.com/jcastellanos/puntoventa-api/internal/domain"
	domsales "github.com/jcastellanos/puntoventa-api/internal/domain/sales"
	apphttp "github.com/jcastellanos/puntoventa-api/internal/interfaces/http"
	pkgjwt "github.com/jcastellanos/puntoventa-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "puntoventa-test"
	testExpMin    = 60

	testSaleID    = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	unknownSaleID = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
)

// fakeSales implementa los puertos del handler con respuestas programables.
type fakeSales struct {
	createResp   *dto.SaleResponse
	createReplay bool
	createErr    error
	cancelErr    error
	lastKey      string // IdempotencyKey visto por CreateSale
}

func (f *fakeSales) CreateSale(_ context.Context, _, _ string, in dto.CreateSaleRequest) (*dto.SaleResponse, bool, error) {
	f.lastKey = in.IdempotencyKey
	return f.createResp, f.createReplay, f.createErr
}

func (f *fakeSales) Cancel(_ context.Context, _, _, _, _ string) error { return f.cancelErr }

func (f *fakeSales) List(context.Context, string, dto.PageRequest, string, string) (*dto.SaleListResponse, error) {
	return &dto.SaleListResponse{Data: []*dto.SaleResponse{}}, nil
}

func (f *fakeSales) GetByID(_ context.Context, _, id string) (*dto.SaleResponse, error) {
	if f.createResp != nil && f.createResp.ID == id {
		return f.createResp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSales) Stats(context.Context, string) (*dto.SalesStatsResponse, error) {
	return &dto.SalesStatsResponse{}, nil
}

func (f *fakeSales) Today(context.Context, string) (*dto.TodaySummaryResponse, error) {
	return &dto.TodaySummaryResponse{}, nil
}

func (f *fakeSales) Generate(context.Context, string, string) ([]byte, error) {
	return []byte("%PDF-1.7"), nil
}

type fakeRestocker struct{}

func (fakeRestocker) Restock(_ context.Context, _, _ string, in dto.StockEntryRequest) (*dto.StockEntryResponse, error) {
	return &dto.StockEntryResponse{ProductID: in.ProductID, Status: "in_stock"}, nil
}

func buildTestApp(f *fakeSales) *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Creator:   f,
		Canceller: f,
		Reader:    f,
		Receipts:  f,
		Restocker: fakeRestocker{},
		JWTSecret: testJWTSecret,
	})
	return app
}

func bearerToken(t *testing.T) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) dto.ErrorResponse {
	t.Helper()
	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_ExitoDevuelve201(t *testing.T) {
	f := &fakeSales{createResp: &dto.SaleResponse{ID: "s1", ReceiptNumber: "FAC A/0001"}}
	app := buildTestApp(f)

	resp := doJSON(t, app, http.MethodPost, "/sales", dto.CreateSaleRequest{}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out dto.SaleResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "FAC A/0001", out.ReceiptNumber)
}

func TestCreateSale_ReplayDevuelve200(t *testing.T) {
	f := &fakeSales{createResp: &dto.SaleResponse{ID: "s1"}, createReplay: true}
	app := buildTestApp(f)

	resp := doJSON(t, app, http.MethodPost, "/sales", dto.CreateSaleRequest{}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateSale_HeaderIdempotencyKeyTienePrioridad(t *testing.T) {
	f := &fakeSales{createResp: &dto.SaleResponse{ID: "s1"}}
	app := buildTestApp(f)

	body := dto.CreateSaleRequest{IdempotencyKey: "del-cuerpo"}
	resp := doJSON(t, app, http.MethodPost, "/sales", body, map[string]string{
		"Idempotency-Key": "del-header",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "del-header", f.lastKey)
}

func TestCreateSale_ValidacionDevuelve400ConDetalle(t *testing.T) {
	f := &fakeSales{createErr: &domsales.ValidationError{Reason: "la venta requiere al menos una línea"}}
	app := buildTestApp(f)

	resp := doJSON(t, app, http.MethodPost, "/sales", dto.CreateSaleRequest{}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out := decodeError(t, resp)
	assert.Equal(t, "Datos de venta inválidos", out.Error)
	assert.Equal(t, "la venta requiere al menos una línea", out.Details)
}

func TestCreateSale_StockInsuficienteDevuelve400(t *testing.T) {
	f := &fakeSales{createErr: domain.ErrInsufficientStock}
	app := buildTestApp(f)

	resp := doJSON(t, app, http.MethodPost, "/sales", dto.CreateSaleRequest{}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Stock insuficiente", decodeError(t, resp).Error)
}

func TestCreateSale_ReplayEnCursoDevuelve409(t *testing.T) {
	f := &fakeSales{createErr: domain.ErrReplayInProgress}
	app := buildTestApp(f)

	resp := doJSON(t, app, http.MethodPost, "/sales", dto.CreateSaleRequest{}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateSale_SinTokenDevuelve401(t *testing.T) {
	app := buildTestApp(&fakeSales{})

	req := httptest.NewRequest(http.MethodPost, "/sales", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCancelSale_NoEncontradaDevuelve404(t *testing.T) {
	f := &fakeSales{cancelErr: domain.ErrNotFound}
	app := buildTestApp(f)

	resp := doJSON(t, app, http.MethodPost, "/sales/"+unknownSaleID+"/cancel", dto.CancelSaleRequest{Reason: "prueba"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetSale_ExistenteDevuelve200(t *testing.T) {
	f := &fakeSales{createResp: &dto.SaleResponse{ID: testSaleID}}
	app := buildTestApp(f)

	resp := doJSON(t, app, http.MethodGet, "/sales/"+testSaleID, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetSale_IdMalformadoDevuelve400(t *testing.T) {
	app := buildTestApp(&fakeSales{})

	resp := doJSON(t, app, http.MethodGet, "/sales/abc", nil, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "formato de id inválido", decodeError(t, resp).Error)
}

func TestCancelSale_IdMalformadoDevuelve400(t *testing.T) {
	app := buildTestApp(&fakeSales{})

	resp := doJSON(t, app, http.MethodPost, "/sales/abc/cancel", dto.CancelSaleRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRutasEstaticas_NoLasCapturaElParametro(t *testing.T) {
	app := buildTestApp(&fakeSales{})

	resp := doJSON(t, app, http.MethodGet, "/sales/stats/summary", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/sales/today/summary", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReceiptPDF_DevuelveContentTypePDF(t *testing.T) {
	f := &fakeSales{createResp: &dto.SaleResponse{ID: testSaleID}}
	app := buildTestApp(f)

	resp := doJSON(t, app, http.MethodGet, "/sales/"+testSaleID+"/receipt.pdf", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
}

func TestStockEntry_ExitoDevuelve201(t *testing.T) {
	app := buildTestApp(&fakeSales{})

	resp := doJSON(t, app, http.MethodPost, "/stock/entries", dto.StockEntryRequest{ProductID: "p1"}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}
