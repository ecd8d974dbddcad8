package postgres

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/internal/domain/repository"
	"github.com/turtacn/suitability/pkg/errors"
	"github.com/turtacn/suitability/pkg/logger"
)

// tenantConfigRecord is the table row. Rule tables are stored as JSON text so the
// stored shape matches the API shape.
type tenantConfigRecord struct {
	TenantID     string `gorm:"primaryKey;column:tenant_id;size:128"`
	Name         string `gorm:"column:name;size:255"`
	Description  string `gorm:"column:description;type:text"`
	ScoringRules string `gorm:"column:scoring_rules;type:text"`
	RiskLevels   string `gorm:"column:risk_levels;type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (tenantConfigRecord) TableName() string {
	return "tenant_configurations"
}

func toRecord(cfg *models.TenantConfiguration) (*tenantConfigRecord, error) {
	rules, err := json.Marshal(cfg.ScoringRules)
	if err != nil {
		return nil, err
	}
	tiers, err := json.Marshal(cfg.RiskLevels)
	if err != nil {
		return nil, err
	}
	return &tenantConfigRecord{
		TenantID:     cfg.ID,
		Name:         cfg.Name,
		Description:  cfg.Description,
		ScoringRules: string(rules),
		RiskLevels:   string(tiers),
	}, nil
}

func (r *tenantConfigRecord) toModel() (*models.TenantConfiguration, error) {
	cfg := &models.TenantConfiguration{
		ID:          r.TenantID,
		Name:        r.Name,
		Description: r.Description,
	}
	if err := json.Unmarshal([]byte(r.ScoringRules), &cfg.ScoringRules); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(r.RiskLevels), &cfg.RiskLevels); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TenantConfigRepoImpl implements TenantConfigRepository using gorm.
type TenantConfigRepoImpl struct {
	conn   *DBConnection
	logger logger.Logger
}

var (
	_ repository.TenantConfigRepository = (*TenantConfigRepoImpl)(nil)
	_ repository.Pinger                 = (*TenantConfigRepoImpl)(nil)
)

// NewTenantConfigRepository creates the repository and migrates its table.
func NewTenantConfigRepository(ctx context.Context, conn *DBConnection, log logger.Logger) (*TenantConfigRepoImpl, error) {
	if err := conn.DB().WithContext(ctx).AutoMigrate(&tenantConfigRecord{}); err != nil {
		log.Error(ctx, "Failed to migrate tenant configuration table", err)
		return nil, errors.ErrStorage("migrate", err)
	}
	return &TenantConfigRepoImpl{conn: conn, logger: log.WithComponent("sql_tenant_store")}, nil
}

// Get retrieves one configuration by tenant id.
func (r *TenantConfigRepoImpl) Get(ctx context.Context, tenantID string) (*models.TenantConfiguration, error) {
	var record tenantConfigRecord
	err := r.conn.DB().WithContext(ctx).Where("tenant_id = ?", tenantID).First(&record).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Debug(ctx, "Tenant configuration not found", logger.String("tenant_id", tenantID))
			return nil, errors.ErrNotFound(tenantID)
		}
		r.logger.Error(ctx, "Failed to retrieve tenant configuration", err, logger.String("tenant_id", tenantID))
		return nil, errors.ErrStorage("get", err)
	}

	cfg, err := record.toModel()
	if err != nil {
		return nil, errors.ErrStorage("decode", err)
	}
	return cfg, nil
}

// List retrieves every stored configuration.
func (r *TenantConfigRepoImpl) List(ctx context.Context) (map[string]*models.TenantConfiguration, error) {
	var records []tenantConfigRecord
	if err := r.conn.DB().WithContext(ctx).Order("tenant_id").Find(&records).Error; err != nil {
		r.logger.Error(ctx, "Failed to list tenant configurations", err)
		return nil, errors.ErrStorage("list", err)
	}

	out := make(map[string]*models.TenantConfiguration, len(records))
	for i := range records {
		cfg, err := records[i].toModel()
		if err != nil {
			return nil, errors.ErrStorage("decode", err)
		}
		out[cfg.ID] = cfg
	}
	return out, nil
}

// Save inserts the configuration or replaces the existing row.
func (r *TenantConfigRepoImpl) Save(ctx context.Context, cfg *models.TenantConfiguration) error {
	if cfg == nil || cfg.ID == "" {
		return errors.ErrInvalidConfiguration("tenant id is required")
	}

	startTime := time.Now()
	record, err := toRecord(cfg)
	if err != nil {
		return errors.ErrStorage("encode", err)
	}

	err = r.conn.DB().WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "scoring_rules", "risk_levels", "updated_at"}),
	}).Create(record).Error
	if err != nil {
		r.logger.Error(ctx, "Failed to save tenant configuration", err, logger.String("tenant_id", cfg.ID))
		return errors.ErrStorage("save", err)
	}

	r.logger.Debug(ctx, "Tenant configuration saved",
		logger.String("tenant_id", cfg.ID),
		logger.Int64("latency_ms", time.Since(startTime).Milliseconds()),
	)
	return nil
}

// Delete removes a configuration row.
func (r *TenantConfigRepoImpl) Delete(ctx context.Context, tenantID string) error {
	result := r.conn.DB().WithContext(ctx).Where("tenant_id = ?", tenantID).Delete(&tenantConfigRecord{})
	if result.Error != nil {
		r.logger.Error(ctx, "Failed to delete tenant configuration", result.Error, logger.String("tenant_id", tenantID))
		return errors.ErrStorage("delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound(tenantID)
	}
	return nil
}

// Ping checks the database connection.
func (r *TenantConfigRepoImpl) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx)
}
