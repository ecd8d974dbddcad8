package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/internal/domain/repository"
	"github.com/turtacn/suitability/pkg/errors"
	"github.com/turtacn/suitability/pkg/logger"
)

// tenantsKey is the hash holding one field per tenant id, valued with the configuration JSON.
const tenantsKey = "tenants"

// TenantConfigRepository stores configurations in a single Redis hash so every
// replica of the service sees the same tenants.
type TenantConfigRepository struct {
	client redis.UniversalClient
	key    string
	logger logger.Logger
}

var (
	_ repository.TenantConfigRepository = (*TenantConfigRepository)(nil)
	_ repository.Pinger                 = (*TenantConfigRepository)(nil)
)

// NewTenantConfigRepository creates a repository writing to <keyPrefix>tenants.
func NewTenantConfigRepository(client redis.UniversalClient, keyPrefix string, log logger.Logger) *TenantConfigRepository {
	return &TenantConfigRepository{
		client: client,
		key:    keyPrefix + tenantsKey,
		logger: log.WithComponent("redis_tenant_store"),
	}
}

func decode(tenantID, raw string) (*models.TenantConfiguration, error) {
	var cfg models.TenantConfiguration
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, errors.ErrStorage("decode", err)
	}
	cfg.ID = tenantID
	return &cfg, nil
}

func (r *TenantConfigRepository) Get(ctx context.Context, tenantID string) (*models.TenantConfiguration, error) {
	raw, err := r.client.HGet(ctx, r.key, tenantID).Result()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return nil, errors.ErrNotFound(tenantID)
		}
		r.logger.Error(ctx, "Failed to read tenant configuration", err, logger.String("tenant_id", tenantID))
		return nil, errors.ErrStorage("get", err)
	}
	return decode(tenantID, raw)
}

func (r *TenantConfigRepository) List(ctx context.Context) (map[string]*models.TenantConfiguration, error) {
	entries, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		r.logger.Error(ctx, "Failed to list tenant configurations", err)
		return nil, errors.ErrStorage("list", err)
	}

	out := make(map[string]*models.TenantConfiguration, len(entries))
	for id, raw := range entries {
		cfg, err := decode(id, raw)
		if err != nil {
			return nil, err
		}
		out[id] = cfg
	}
	return out, nil
}

func (r *TenantConfigRepository) Save(ctx context.Context, cfg *models.TenantConfiguration) error {
	if cfg == nil || cfg.ID == "" {
		return errors.ErrInvalidConfiguration("tenant id is required")
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return errors.ErrStorage("encode", err)
	}
	if err := r.client.HSet(ctx, r.key, cfg.ID, data).Err(); err != nil {
		r.logger.Error(ctx, "Failed to save tenant configuration", err, logger.String("tenant_id", cfg.ID))
		return errors.ErrStorage("save", err)
	}
	return nil
}

func (r *TenantConfigRepository) Delete(ctx context.Context, tenantID string) error {
	removed, err := r.client.HDel(ctx, r.key, tenantID).Result()
	if err != nil {
		r.logger.Error(ctx, "Failed to delete tenant configuration", err, logger.String("tenant_id", tenantID))
		return errors.ErrStorage("delete", err)
	}
	if removed == 0 {
		return errors.ErrNotFound(tenantID)
	}
	return nil
}

func (r *TenantConfigRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
