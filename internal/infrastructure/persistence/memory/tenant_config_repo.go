// Package memory implements a process-local tenant configuration repository.
package memory

import (
	"context"
	"sync"

	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/internal/domain/repository"
	"github.com/turtacn/suitability/pkg/errors"
)

// TenantConfigRepository keeps configurations in a map. Contents are lost on restart.
type TenantConfigRepository struct {
	mu      sync.RWMutex
	configs map[string]*models.TenantConfiguration
}

var _ repository.TenantConfigRepository = (*TenantConfigRepository)(nil)

// NewTenantConfigRepository creates an empty repository.
func NewTenantConfigRepository() *TenantConfigRepository {
	return &TenantConfigRepository{configs: make(map[string]*models.TenantConfiguration)}
}

func (r *TenantConfigRepository) Get(_ context.Context, tenantID string) (*models.TenantConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[tenantID]
	if !ok {
		return nil, errors.ErrNotFound(tenantID)
	}
	return cfg.Clone(), nil
}

func (r *TenantConfigRepository) List(_ context.Context) (map[string]*models.TenantConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*models.TenantConfiguration, len(r.configs))
	for id, cfg := range r.configs {
		out[id] = cfg.Clone()
	}
	return out, nil
}

func (r *TenantConfigRepository) Save(_ context.Context, cfg *models.TenantConfiguration) error {
	if cfg == nil || cfg.ID == "" {
		return errors.ErrInvalidConfiguration("tenant id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[cfg.ID] = cfg.Clone()
	return nil
}

func (r *TenantConfigRepository) Delete(_ context.Context, tenantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.configs[tenantID]; !ok {
		return errors.ErrNotFound(tenantID)
	}
	delete(r.configs, tenantID)
	return nil
}
