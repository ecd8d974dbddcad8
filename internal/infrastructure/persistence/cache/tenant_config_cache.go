// Package cache provides a read-through cache in front of any tenant configuration store.
package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/internal/domain/repository"
	"github.com/turtacn/suitability/internal/domain/service"
	"github.com/turtacn/suitability/pkg/logger"
)

const (
	cacheType = "tenant_config"
	listKey   = "\x00all"
)

// CachedTenantConfigRepository caches Get and List results of the wrapped repository.
// Writes go straight through and invalidate the affected entries.
// Concurrent misses for the same key share one backend read. A read that was in flight
// when an invalidation happened returns its result but does not cache it.
type CachedTenantConfigRepository struct {
	next    repository.TenantConfigRepository
	cache   *gocache.Cache
	sf      singleflight.Group
	metrics service.Metrics
	logger  logger.Logger

	mu         sync.Mutex
	generation uint64 // bumped by every invalidation, guarded by mu
}

var (
	_ repository.TenantConfigRepository = (*CachedTenantConfigRepository)(nil)
	_ repository.Pinger                 = (*CachedTenantConfigRepository)(nil)
)

// NewCachedTenantConfigRepository wraps next with a cache whose entries live for ttl.
func NewCachedTenantConfigRepository(
	next repository.TenantConfigRepository,
	ttl, cleanupInterval time.Duration,
	metrics service.Metrics,
	log logger.Logger,
) *CachedTenantConfigRepository {
	return &CachedTenantConfigRepository{
		next:    next,
		cache:   gocache.New(ttl, cleanupInterval),
		metrics: metrics,
		logger:  log.WithComponent("tenant_config_cache"),
	}
}

// Get returns a copy of the cached configuration, loading it on a miss.
// Not-found results are not cached.
func (r *CachedTenantConfigRepository) Get(ctx context.Context, tenantID string) (*models.TenantConfiguration, error) {
	if v, ok := r.cache.Get(tenantID); ok {
		r.metrics.RecordCacheAccess(cacheType, true)
		return v.(*models.TenantConfiguration).Clone(), nil
	}
	r.metrics.RecordCacheAccess(cacheType, false)

	v, err, _ := r.sf.Do(tenantID, func() (interface{}, error) {
		gen := r.currentGeneration()
		cfg, err := r.next.Get(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		r.store(tenantID, cfg, gen)
		return cfg, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.TenantConfiguration).Clone(), nil
}

// List returns copies of every configuration, loading the set on a miss.
func (r *CachedTenantConfigRepository) List(ctx context.Context) (map[string]*models.TenantConfiguration, error) {
	if v, ok := r.cache.Get(listKey); ok {
		r.metrics.RecordCacheAccess(cacheType, true)
		return cloneAll(v.(map[string]*models.TenantConfiguration)), nil
	}
	r.metrics.RecordCacheAccess(cacheType, false)

	v, err, _ := r.sf.Do(listKey, func() (interface{}, error) {
		gen := r.currentGeneration()
		all, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		r.store(listKey, all, gen)
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneAll(v.(map[string]*models.TenantConfiguration)), nil
}

func (r *CachedTenantConfigRepository) Save(ctx context.Context, cfg *models.TenantConfiguration) error {
	if cfg != nil {
		defer r.Invalidate(ctx, cfg.ID)
	}
	return r.next.Save(ctx, cfg)
}

func (r *CachedTenantConfigRepository) Delete(ctx context.Context, tenantID string) error {
	defer r.Invalidate(ctx, tenantID)
	return r.next.Delete(ctx, tenantID)
}

// Ping forwards to the wrapped repository when it talks to a remote service.
func (r *CachedTenantConfigRepository) Ping(ctx context.Context) error {
	if p, ok := r.next.(repository.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Flush drops every cached entry.
func (r *CachedTenantConfigRepository) Flush() {
	r.mu.Lock()
	r.generation++
	r.cache.Flush()
	r.mu.Unlock()
}

// Invalidate evicts tenantID and the cached listing.
func (r *CachedTenantConfigRepository) Invalidate(ctx context.Context, tenantID string) {
	r.mu.Lock()
	r.generation++
	r.cache.Delete(tenantID)
	r.cache.Delete(listKey)
	r.mu.Unlock()

	r.sf.Forget(tenantID)
	r.sf.Forget(listKey)
	r.logger.Debug(ctx, "Tenant configuration cache invalidated", logger.String("tenant_id", tenantID))
}

func (r *CachedTenantConfigRepository) currentGeneration() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// store caches v unless an invalidation happened since gen was read.
func (r *CachedTenantConfigRepository) store(key string, v interface{}, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != gen {
		return
	}
	r.cache.SetDefault(key, v)
}

func cloneAll(in map[string]*models.TenantConfiguration) map[string]*models.TenantConfiguration {
	out := make(map[string]*models.TenantConfiguration, len(in))
	for id, cfg := range in {
		out[id] = cfg.Clone()
	}
	return out
}
