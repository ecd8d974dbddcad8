package cache_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/internal/domain/repository"
	"github.com/turtacn/suitability/internal/domain/repository/repotest"
	"github.com/turtacn/suitability/internal/domain/service"
	"github.com/turtacn/suitability/internal/domain/service/mocks"
	"github.com/turtacn/suitability/internal/infrastructure/persistence/cache"
	"github.com/turtacn/suitability/internal/infrastructure/persistence/memory"
	"github.com/turtacn/suitability/pkg/logger"
)

// countingRepo counts backend reads.
type countingRepo struct {
	repository.TenantConfigRepository
	gets  atomic.Int32
	lists atomic.Int32
	delay time.Duration
}

func (r *countingRepo) Get(ctx context.Context, tenantID string) (*models.TenantConfiguration, error) {
	r.gets.Add(1)
	time.Sleep(r.delay)
	return r.TenantConfigRepository.Get(ctx, tenantID)
}

func (r *countingRepo) List(ctx context.Context) (map[string]*models.TenantConfiguration, error) {
	r.lists.Add(1)
	return r.TenantConfigRepository.List(ctx)
}

// gatedRepo blocks Get until released, after signalling that the read started.
type gatedRepo struct {
	repository.TenantConfigRepository
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *gatedRepo) Get(ctx context.Context, tenantID string) (*models.TenantConfiguration, error) {
	cfg, err := r.TenantConfigRepository.Get(ctx, tenantID)
	first := false
	r.once.Do(func() { first = true })
	if first {
		close(r.entered)
		<-r.release
	}
	return cfg, err
}

func newCached(next repository.TenantConfigRepository) *cache.CachedTenantConfigRepository {
	return cache.NewCachedTenantConfigRepository(next, time.Minute, time.Minute, service.NewNoopMetrics(), logger.NewNoopLogger())
}

func seeded(t *testing.T) *countingRepo {
	t.Helper()
	inner := memory.NewTenantConfigRepository()
	require.NoError(t, inner.Save(context.Background(), models.RetailConfiguration()))
	return &countingRepo{TenantConfigRepository: inner}
}

func TestCachedTenantConfigRepository_Contract(t *testing.T) {
	repotest.RunContractTests(t, func(t *testing.T) repository.TenantConfigRepository {
		return newCached(memory.NewTenantConfigRepository())
	})
}

func TestCachedTenantConfigRepository_GetHitsBackendOnce(t *testing.T) {
	backend := seeded(t)
	repo := newCached(backend)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cfg, err := repo.Get(ctx, "retail")
		require.NoError(t, err)
		assert.Equal(t, "Retail Banking", cfg.Name)
	}
	assert.EqualValues(t, 1, backend.gets.Load())
}

func TestCachedTenantConfigRepository_ReturnsCopies(t *testing.T) {
	repo := newCached(seeded(t))
	ctx := context.Background()

	first, err := repo.Get(ctx, "retail")
	require.NoError(t, err)
	first.Name = "mutated"
	first.RiskLevels[0].AllowedInstruments[0] = "mutated"

	second, err := repo.Get(ctx, "retail")
	require.NoError(t, err)
	assert.Equal(t, "Retail Banking", second.Name)
	assert.NotEqual(t, "mutated", second.RiskLevels[0].AllowedInstruments[0])
}

func TestCachedTenantConfigRepository_WritesInvalidate(t *testing.T) {
	backend := seeded(t)
	repo := newCached(backend)
	ctx := context.Background()

	_, err := repo.List(ctx)
	require.NoError(t, err)
	_, err = repo.Get(ctx, "retail")
	require.NoError(t, err)

	updated := models.RetailConfiguration()
	updated.Name = "Retail v2"
	require.NoError(t, repo.Save(ctx, updated))

	cfg, err := repo.Get(ctx, "retail")
	require.NoError(t, err)
	assert.Equal(t, "Retail v2", cfg.Name)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Retail v2", all["retail"].Name)
	assert.EqualValues(t, 2, backend.lists.Load())

	require.NoError(t, repo.Delete(ctx, "retail"))
	_, err = repo.Get(ctx, "retail")
	assert.Error(t, err)
}

func TestCachedTenantConfigRepository_ConcurrentMissesShareRead(t *testing.T) {
	backend := seeded(t)
	backend.delay = 50 * time.Millisecond
	repo := newCached(backend)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Get(context.Background(), "retail")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, backend.gets.Load())
}

func TestCachedTenantConfigRepository_RecordsAccess(t *testing.T) {
	metrics := new(mocks.MockMetrics)
	metrics.On("RecordCacheAccess", "tenant_config", false).Once()
	metrics.On("RecordCacheAccess", "tenant_config", true).Once()

	repo := cache.NewCachedTenantConfigRepository(seeded(t), time.Minute, time.Minute, metrics, logger.NewNoopLogger())
	ctx := context.Background()
	_, err := repo.Get(ctx, "retail")
	require.NoError(t, err)
	_, err = repo.Get(ctx, "retail")
	require.NoError(t, err)

	metrics.AssertExpectations(t)
	metrics.AssertNumberOfCalls(t, "RecordCacheAccess", 2)
}

func TestCachedTenantConfigRepository_Expiry(t *testing.T) {
	backend := seeded(t)
	repo := cache.NewCachedTenantConfigRepository(backend, 20*time.Millisecond, time.Minute, service.NewNoopMetrics(), logger.NewNoopLogger())
	ctx := context.Background()

	_, err := repo.Get(ctx, "retail")
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)
	_, err = repo.Get(ctx, "retail")
	require.NoError(t, err)
	assert.EqualValues(t, 2, backend.gets.Load())
}

func TestCachedTenantConfigRepository_InvalidateDuringLoad(t *testing.T) {
	inner := memory.NewTenantConfigRepository()
	ctx := context.Background()
	require.NoError(t, inner.Save(ctx, models.RetailConfiguration()))

	backend := &gatedRepo{TenantConfigRepository: inner, entered: make(chan struct{}), release: make(chan struct{})}
	repo := newCached(backend)

	loaded := make(chan *models.TenantConfiguration, 1)
	go func() {
		cfg, err := repo.Get(ctx, "retail")
		assert.NoError(t, err)
		loaded <- cfg
	}()
	<-backend.entered

	// Another replica changes retail while the stale read is still in flight.
	updated := models.RetailConfiguration()
	updated.Name = "Retail v2"
	require.NoError(t, inner.Save(ctx, updated))
	repo.Invalidate(ctx, "retail")

	close(backend.release)
	assert.Equal(t, "Retail Banking", (<-loaded).Name)

	cfg, err := repo.Get(ctx, "retail")
	require.NoError(t, err)
	assert.Equal(t, "Retail v2", cfg.Name)
}

func TestCachedTenantConfigRepository_Flush(t *testing.T) {
	backend := seeded(t)
	repo := newCached(backend)
	ctx := context.Background()

	_, err := repo.Get(ctx, "retail")
	require.NoError(t, err)
	_, err = repo.List(ctx)
	require.NoError(t, err)

	repo.Flush()

	_, err = repo.Get(ctx, "retail")
	require.NoError(t, err)
	_, err = repo.List(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, backend.gets.Load())
	assert.EqualValues(t, 2, backend.lists.Load())
}
