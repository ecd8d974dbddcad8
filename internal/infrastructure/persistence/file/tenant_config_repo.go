// Package file persists tenant configurations as a single JSON document mapping tenant
// id to configuration, the same shape the HTTP API returns for all configurations.
package file

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/internal/domain/repository"
	"github.com/turtacn/suitability/pkg/errors"
	"github.com/turtacn/suitability/pkg/logger"
)

// TenantConfigRepository keeps the document in memory and rewrites the file on every
// mutation. Writes go to a temporary file that is renamed over the original.
type TenantConfigRepository struct {
	mu      sync.RWMutex
	path    string
	configs map[string]*models.TenantConfiguration
	logger  logger.Logger
}

var _ repository.TenantConfigRepository = (*TenantConfigRepository)(nil)

// NewTenantConfigRepository loads path, or starts empty when the file does not exist yet.
func NewTenantConfigRepository(path string, log logger.Logger) (*TenantConfigRepository, error) {
	r := &TenantConfigRepository{
		path:    path,
		configs: make(map[string]*models.TenantConfiguration),
		logger:  log.WithComponent("file_tenant_store"),
	}

	data, err := os.ReadFile(path)
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		r.logger.Info(context.Background(), "Tenant configuration file not found, starting empty", logger.String("path", path))
		return r, nil
	case err != nil:
		return nil, errors.ErrStorage("load", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &r.configs); err != nil {
			return nil, errors.ErrStorage("load", fmt.Errorf("parse %s: %w", path, err))
		}
	}
	for id, cfg := range r.configs {
		if cfg == nil {
			delete(r.configs, id)
			continue
		}
		cfg.ID = id
	}

	r.logger.Info(context.Background(), "Tenant configurations loaded",
		logger.String("path", path),
		logger.Int("tenants", len(r.configs)),
	)
	return r, nil
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

func (r *TenantConfigRepository) Save(ctx context.Context, cfg *models.TenantConfiguration) error {
	if cfg == nil || cfg.ID == "" {
		return errors.ErrInvalidConfiguration("tenant id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	previous, existed := r.configs[cfg.ID]
	r.configs[cfg.ID] = cfg.Clone()
	if err := r.flush(); err != nil {
		if existed {
			r.configs[cfg.ID] = previous
		} else {
			delete(r.configs, cfg.ID)
		}
		r.logger.Error(ctx, "Failed to persist tenant configuration", err, logger.String("tenant_id", cfg.ID))
		return errors.ErrStorage("save", err)
	}
	return nil
}

func (r *TenantConfigRepository) Delete(ctx context.Context, tenantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, ok := r.configs[tenantID]
	if !ok {
		return errors.ErrNotFound(tenantID)
	}
	delete(r.configs, tenantID)
	if err := r.flush(); err != nil {
		r.configs[tenantID] = previous
		r.logger.Error(ctx, "Failed to persist tenant deletion", err, logger.String("tenant_id", tenantID))
		return errors.ErrStorage("delete", err)
	}
	return nil
}

// flush must be called with the write lock held.
func (r *TenantConfigRepository) flush() error {
	data, err := json.MarshalIndent(r.configs, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}
