package sales_test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	appsales "github.com/jcastellanos/puntoventa-api/internal/application/sales"
	"github.com/jcastellanos/puntoventa-api/internal/domain"
	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
	"github.com/jcastellanos/puntoventa-api/internal/domain/repository"
)

// memStore es un almacén en memoria para los tests de casos de uso. Las
// transacciones se serializan con txMu y el rollback se hace restaurando un
// snapshot, así las propiedades de atomicidad y serialización del pipeline se
// pueden verificar sin base de datos.
type memStore struct {
	txMu sync.Mutex // serializa transacciones
	mu   sync.Mutex // protege el estado entre lecturas sueltas y transacciones

	products   map[string]*entity.Product
	series     map[string]*entity.DocumentSeries
	sales      map[string]*entity.Sale
	items      map[string][]*entity.SaleItem
	movements  []*entity.StockMovement
	retentions []*entity.TaxRetention
	configs    []*entity.TaxConfig
	audits     []*entity.AuditLog
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[string]*entity.Product),
		series:   make(map[string]*entity.DocumentSeries),
		sales:    make(map[string]*entity.Sale),
		items:    make(map[string][]*entity.SaleItem),
	}
}

func (s *memStore) addProduct(id string, stock, minStock int64) {
	s.products[id] = &entity.Product{
		ID: id, CompanyID: testCompany, Name: "producto " + id,
		Stock: decimal.NewFromInt(stock), MinStock: decimal.NewFromInt(minStock),
	}
}

type memSnapshot struct {
	products   map[string]entity.Product
	series     map[string]entity.DocumentSeries
	sales      map[string]*entity.Sale
	items      map[string][]*entity.SaleItem
	movements  []*entity.StockMovement
	retentions []*entity.TaxRetention
	audits     []*entity.AuditLog
}

func (s *memStore) snapshot() *memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := &memSnapshot{
		products:   make(map[string]entity.Product, len(s.products)),
		series:     make(map[string]entity.DocumentSeries, len(s.series)),
		sales:      make(map[string]*entity.Sale, len(s.sales)),
		items:      make(map[string][]*entity.SaleItem, len(s.items)),
		movements:  append([]*entity.StockMovement(nil), s.movements...),
		retentions: append([]*entity.TaxRetention(nil), s.retentions...),
		audits:     append([]*entity.AuditLog(nil), s.audits...),
	}
	for k, v := range s.products {
		snap.products[k] = *v
	}
	for k, v := range s.series {
		snap.series[k] = *v
	}
	for k, v := range s.sales {
		snap.sales[k] = v
	}
	for k, v := range s.items {
		snap.items[k] = append([]*entity.SaleItem(nil), v...)
	}
	return snap
}

func (s *memStore) restore(snap *memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = make(map[string]*entity.Product, len(snap.products))
	for k := range snap.products {
		v := snap.products[k]
		s.products[k] = &v
	}
	s.series = make(map[string]*entity.DocumentSeries, len(snap.series))
	for k := range snap.series {
		v := snap.series[k]
		s.series[k] = &v
	}
	s.sales = snap.sales
	s.items = snap.items
	s.movements = snap.movements
	s.retentions = snap.retentions
	s.audits = snap.audits
}

// memTxRunner implementa appsales.TxRunner sobre memStore.
type memTxRunner struct{ s *memStore }

func (r *memTxRunner) Run(_ context.Context, fn func(appsales.TxRepos) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	snap := r.s.snapshot()
	repos := appsales.TxRepos{
		Sales:     &memSaleRepo{s: r.s},
		Series:    &memSeriesRepo{s: r.s},
		Stock:     &memStockRepo{s: r.s},
		Movements: &memMovementRepo{s: r.s},
		Tax:       &memTaxRepo{s: r.s},
		Audit:     &memAuditRepo{s: r.s},
	}
	if err := fn(repos); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

// ── repos ─────────────────────────────────────────────────────────────────────

type memSaleRepo struct{ s *memStore }

func (r *memSaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sales[sale.ID] = sale
	return nil
}

func (r *memSaleRepo) CreateItem(_ context.Context, item *entity.SaleItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.items[item.SaleID] = append(r.s.items[item.SaleID], item)
	return nil
}

func (r *memSaleRepo) GetByID(_ context.Context, companyID, id string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.sales[id]
	if !ok || sale.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	cp := *sale
	cp.Items = append([]*entity.SaleItem(nil), r.s.items[id]...)
	return &cp, nil
}

func (r *memSaleRepo) GetByIdempotencyKey(_ context.Context, companyID, key string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sale := range r.s.sales {
		if sale.CompanyID == companyID && sale.IdempotencyKey == key {
			cp := *sale
			cp.Items = append([]*entity.SaleItem(nil), r.s.items[sale.ID]...)
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memSaleRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *memSaleRepo) GetItems(_ context.Context, saleID string) ([]*entity.SaleItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]*entity.SaleItem(nil), r.s.items[saleID]...), nil
}

func (r *memSaleRepo) DeleteItems(_ context.Context, saleID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.items, saleID)
	return nil
}

func (r *memSaleRepo) Delete(_ context.Context, companyID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sale, ok := r.s.sales[id]
	if !ok || sale.CompanyID != companyID {
		return domain.ErrNotFound
	}
	delete(r.s.sales, id)
	return nil
}

func (r *memSaleRepo) List(_ context.Context, companyID string, f repository.SaleFilter) ([]*entity.Sale, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entity.Sale
	for _, sale := range r.s.sales {
		if sale.CompanyID != companyID {
			continue
		}
		if f.StartDate != nil && sale.CreatedAt.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && sale.CreatedAt.After(*f.EndDate) {
			continue
		}
		all = append(all, sale)
	}
	total := len(all)
	start := (f.Page - 1) * f.Limit
	if start > total {
		start = total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

type memSeriesRepo struct{ s *memStore }

func (r *memSeriesRepo) NextNumber(_ context.Context, companyID, prefix string) (*repository.IssuedNumber, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := companyID + "/" + prefix
	sr, ok := r.s.series[key]
	if !ok {
		sr = &entity.DocumentSeries{CompanyID: companyID, Prefix: prefix, Letter: "A", PadWidth: 4}
		r.s.series[key] = sr
	}
	sr.CurrentNumber++
	sr.LastIssuedAt = time.Now()
	return &repository.IssuedNumber{Number: sr.CurrentNumber, Letter: sr.Letter, PadWidth: sr.PadWidth}, nil
}

func (r *memSeriesRepo) Get(_ context.Context, companyID, prefix string) (*entity.DocumentSeries, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sr, ok := r.s.series[companyID+"/"+prefix]
	if !ok {
		return nil, domain.ErrSeriesNotFound
	}
	cp := *sr
	return &cp, nil
}

type memStockRepo struct{ s *memStore }

func (r *memStockRepo) DecrementIfAvailable(_ context.Context, companyID, productID string, qty decimal.Decimal) (*repository.StockChange, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok || p.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if p.Stock.LessThan(qty) {
		return nil, domain.ErrInsufficientStock
	}
	before := p.Stock
	p.Stock = p.Stock.Sub(qty)
	return &repository.StockChange{Before: before, After: p.Stock, MinStock: p.MinStock}, nil
}

func (r *memStockRepo) Increment(_ context.Context, companyID, productID string, qty decimal.Decimal) (*repository.StockChange, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok || p.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	before := p.Stock
	p.Stock = p.Stock.Add(qty)
	return &repository.StockChange{Before: before, After: p.Stock, MinStock: p.MinStock}, nil
}

type memMovementRepo struct{ s *memStore }

func (r *memMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, m)
	return nil
}

func (r *memMovementRepo) ListByProduct(_ context.Context, companyID, productID string, limit int) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.CompanyID == companyID && m.ProductID == productID {
			out = append(out, m)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type memTaxRepo struct{ s *memStore }

func (r *memTaxRepo) ActiveConfigs(_ context.Context, companyID string) ([]*entity.TaxConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.TaxConfig
	for _, c := range r.s.configs {
		if c.CompanyID == companyID && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memTaxRepo) CreateRetention(_ context.Context, ret *entity.TaxRetention) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.retentions = append(r.s.retentions, ret)
	return nil
}

func (r *memTaxRepo) DeleteByEntity(_ context.Context, entityID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.retentions[:0]
	for _, ret := range r.s.retentions {
		if ret.EntityID != entityID {
			kept = append(kept, ret)
		}
	}
	r.s.retentions = kept
	return nil
}

type memAuditRepo struct{ s *memStore }

func (r *memAuditRepo) Create(_ context.Context, l *entity.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audits = append(r.s.audits, l)
	return nil
}

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) GetByID(_ context.Context, companyID, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.CompanyID != companyID {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// ── colaboradores falsos ──────────────────────────────────────────────────────

// fakeEmitter acumula los cruces reportados tras cada commit.
type fakeEmitter struct {
	mu        sync.Mutex
	crossings []appsales.ThresholdCrossing
}

func (e *fakeEmitter) EmitLowStock(_ context.Context, _ string, c appsales.ThresholdCrossing) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.crossings = append(e.crossings, c)
}

func (e *fakeEmitter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.crossings)
}

// fakeIdemStore implementa el puerto de idempotencia en memoria.
type fakeIdemStore struct {
	mu   sync.Mutex
	keys map[string]string // key -> saleID ("" = reservada)
}

func newFakeIdemStore() *fakeIdemStore {
	return &fakeIdemStore{keys: make(map[string]string)}
}

func (s *fakeIdemStore) Reserve(_ context.Context, companyID, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := companyID + ":" + key
	if _, ok := s.keys[k]; ok {
		return false, nil
	}
	s.keys[k] = ""
	return true, nil
}

func (s *fakeIdemStore) Lookup(_ context.Context, companyID, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.keys[companyID+":"+key]
	return v, ok, nil
}

func (s *fakeIdemStore) Complete(_ context.Context, companyID, key, saleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[companyID+":"+key] = saleID
	return nil
}

func (s *fakeIdemStore) Release(_ context.Context, companyID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, companyID+":"+key)
	return nil
}
