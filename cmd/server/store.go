package main

import (
	"context"
	"fmt"

	"github.com/turtacn/suitability/internal/config"
	"github.com/turtacn/suitability/internal/domain/repository"
	"github.com/turtacn/suitability/internal/domain/service"
	"github.com/turtacn/suitability/internal/infrastructure/persistence/cache"
	"github.com/turtacn/suitability/internal/infrastructure/persistence/file"
	"github.com/turtacn/suitability/internal/infrastructure/persistence/memory"
	"github.com/turtacn/suitability/internal/infrastructure/persistence/postgres"
	"github.com/turtacn/suitability/internal/infrastructure/persistence/redis"
	"github.com/turtacn/suitability/pkg/constants"
	"github.com/turtacn/suitability/pkg/logger"
)

// storeBackend is the configured tenant configuration repository and the resources
// that must be closed or pinged with it.
type storeBackend struct {
	repo   repository.TenantConfigRepository
	cache  *cache.CachedTenantConfigRepository
	db     *postgres.DBConnection
	checks map[string]repository.Pinger
	closer []func() error
}

func (b *storeBackend) Close() {
	for i := len(b.closer) - 1; i >= 0; i-- {
		_ = b.closer[i]()
	}
}

func openStore(ctx context.Context, cfg *config.Config, metrics service.Metrics, log logger.Logger) (*storeBackend, error) {
	b := &storeBackend{checks: map[string]repository.Pinger{}}

	switch constants.StoreBackend(cfg.Store.Backend) {
	case constants.StoreBackendMemory:
		b.repo = memory.NewTenantConfigRepository()

	case constants.StoreBackendFile:
		repo, err := file.NewTenantConfigRepository(cfg.Store.FilePath, log)
		if err != nil {
			return nil, err
		}
		b.repo = repo

	case constants.StoreBackendDatabase:
		conn, err := postgres.NewDBConnection(ctx, &cfg.Database, log)
		if err != nil {
			return nil, err
		}
		b.closer = append(b.closer, conn.Close)
		repo, err := postgres.NewTenantConfigRepository(ctx, conn, log)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.db = conn
		b.repo = repo
		b.checks["database"] = conn

	case constants.StoreBackendRedis:
		conn := redis.NewRedisConnection(&cfg.Redis, log)
		if err := conn.Connect(ctx); err != nil {
			return nil, err
		}
		b.closer = append(b.closer, conn.Close)
		b.repo = redis.NewTenantConfigRepository(conn.GetClient(), cfg.Redis.KeyPrefix, log)
		b.checks["redis"] = conn

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}

	remote := len(b.checks) > 0
	if remote && cfg.Store.CacheTTL > 0 {
		b.cache = cache.NewCachedTenantConfigRepository(b.repo, cfg.Store.CacheTTL, cfg.Store.CacheCleanupInterval, metrics, log)
		b.repo = b.cache
	}

	log.Info(ctx, "Tenant configuration store ready",
		logger.String("backend", cfg.Store.Backend),
		logger.Bool("cached", b.cache != nil),
	)
	return b, nil
}
