package alerts

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcastellanos/puntoventa-api/internal/domain/entity"
	"github.com/jcastellanos/puntoventa-api/pkg/logger"
)

type fakeAlertRepo struct {
	mu        sync.Mutex
	jobs      []*entity.AlertJob
	delivered map[string]bool // companyID|kind|entityID
	processed []string
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{delivered: map[string]bool{}}
}

func (f *fakeAlertRepo) CreateIfAbsent(context.Context, *entity.Alert) (bool, error) {
	return true, nil
}

func (f *fakeAlertRepo) Resolve(context.Context, string, string) error { return nil }

func (f *fakeAlertRepo) Enqueue(_ context.Context, job *entity.AlertJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeAlertRepo) ClaimPending(_ context.Context, limit int) ([]*entity.AlertJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.AlertJob
	for _, j := range f.jobs {
		if j.Status == entity.AlertJobPending {
			j.Status = entity.AlertJobClaimed
			j.Attempts++
			out = append(out, j)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeAlertRepo) Release(_ context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.ID == jobID {
			j.Status = entity.AlertJobPending
		}
	}
	return nil
}

func (f *fakeAlertRepo) MarkProcessed(_ context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.ID == jobID {
			j.Status = entity.AlertJobProcessed
		}
	}
	f.processed = append(f.processed, jobID)
	return nil
}

func (f *fakeAlertRepo) DeliveredToday(_ context.Context, companyID, kind, entityID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.delivered[companyID+"|"+kind+"|"+entityID], nil
}

type countingNotifier struct {
	mu    sync.Mutex
	count int
	fail  bool
	repo  *fakeAlertRepo
}

func (n *countingNotifier) Notify(_ context.Context, job *entity.AlertJob) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return assert.AnError
	}
	n.count++
	if n.repo != nil {
		n.repo.mu.Lock()
		n.repo.delivered[job.CompanyID+"|"+job.Kind+"|"+job.EntityID] = true
		n.repo.mu.Unlock()
	}
	return nil
}

func TestDispatcher_ProcesaPendientesYMarca(t *testing.T) {
	repo := newFakeAlertRepo()
	n := &countingNotifier{repo: repo}
	d := NewDispatcher(repo, n, logger.Nop(), 0)

	require.NoError(t, repo.Enqueue(context.Background(), &entity.AlertJob{
		ID: "j1", CompanyID: "c1", Kind: entity.AlertLowStock, EntityID: "p1",
		Payload: []byte(`{}`), Status: entity.AlertJobPending,
	}))

	require.NoError(t, d.drain(context.Background()))

	assert.Equal(t, 1, n.count)
	assert.Equal(t, []string{"j1"}, repo.processed)

	// Segundo ciclo: no queda nada pendiente.
	require.NoError(t, d.drain(context.Background()))
	assert.Equal(t, 1, n.count)
}

func TestDispatcher_DeduplicaPorDia(t *testing.T) {
	repo := newFakeAlertRepo()
	n := &countingNotifier{repo: repo}
	d := NewDispatcher(repo, n, logger.Nop(), 0)

	// Dos trabajos del mismo producto el mismo día.
	for _, id := range []string{"j1", "j2"} {
		require.NoError(t, repo.Enqueue(context.Background(), &entity.AlertJob{
			ID: id, CompanyID: "c1", Kind: entity.AlertLowStock, EntityID: "p1",
			Payload: []byte(`{}`), Status: entity.AlertJobPending,
		}))
	}

	require.NoError(t, d.drain(context.Background()))

	// Solo una entrega, pero ambos trabajos quedan procesados.
	assert.Equal(t, 1, n.count)
	assert.Len(t, repo.processed, 2)
}

func TestDispatcher_FalloDeEntregaDejaPendiente(t *testing.T) {
	repo := newFakeAlertRepo()
	n := &countingNotifier{repo: repo, fail: true}
	d := NewDispatcher(repo, n, logger.Nop(), 0)

	require.NoError(t, repo.Enqueue(context.Background(), &entity.AlertJob{
		ID: "j1", CompanyID: "c1", Kind: entity.AlertLowStock, EntityID: "p1",
		Payload: []byte(`{}`), Status: entity.AlertJobPending,
	}))

	require.NoError(t, d.drain(context.Background()))
	assert.Empty(t, repo.processed)
	// El trabajo no queda retenido por el claim: vuelve a 'pending'.
	assert.Equal(t, entity.AlertJobPending, repo.jobs[0].Status)

	// Al recuperarse el canal, el reintento entrega y marca.
	n.fail = false
	require.NoError(t, d.drain(context.Background()))
	assert.Equal(t, 1, n.count)
	assert.Equal(t, []string{"j1"}, repo.processed)
}

func TestDispatcher_ClaimExcluyeElLoteDeOtroWorker(t *testing.T) {
	repo := newFakeAlertRepo()

	require.NoError(t, repo.Enqueue(context.Background(), &entity.AlertJob{
		ID: "j1", CompanyID: "c1", Kind: entity.AlertLowStock, EntityID: "p1",
		Payload: []byte(`{}`), Status: entity.AlertJobPending,
	}))

	// Primer worker reclama el lote; un segundo claim no lo vuelve a entregar.
	first, err := repo.ClaimPending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := repo.ClaimPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, second)
}
