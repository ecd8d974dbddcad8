// Package service implements the application use cases of the suitability service.
package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/internal/domain/repository"
	"github.com/turtacn/suitability/internal/domain/service"
	"github.com/turtacn/suitability/pkg/constants"
	"github.com/turtacn/suitability/pkg/errors"
	"github.com/turtacn/suitability/pkg/logger"
	"github.com/turtacn/suitability/pkg/utils"
)

// HistoryReader returns the recorded changes of a tenant configuration.
// HistoryReader 返回租户配置的变更记录。
type HistoryReader interface {
	History(ctx context.Context, tenantID string) ([]service.TenantConfigEvent, error)
}

// TenantConfigService is the tenant configuration store: the single source of truth for
// scoring rules. Store access runs under one RWMutex, so check-then-write sequences are
// atomic within the process; change events are published after the lock is released.
// Returned configurations are copies.
// TenantConfigService 是租户配置存储，评分规则的唯一来源。
// 存储访问都在同一个读写锁下执行，因此进程内的先检查后写入是原子的；变更事件在释放锁之后发布。
// 返回的配置均为副本。
type TenantConfigService struct {
	mu        sync.RWMutex
	repo      repository.TenantConfigRepository
	strict    bool
	publisher service.EventPublisher
	metrics   service.Metrics
	logger    logger.Logger
	now       func() time.Time
}

var _ service.ConfigurationReader = (*TenantConfigService)(nil)

// TenantConfigOption customises a TenantConfigService.
type TenantConfigOption func(*TenantConfigService)

// WithStrictValidation rejects writes whose configuration fails the completeness checks.
func WithStrictValidation(strict bool) TenantConfigOption {
	return func(s *TenantConfigService) { s.strict = strict }
}

// WithEventPublisher broadcasts every successful write.
func WithEventPublisher(p service.EventPublisher) TenantConfigOption {
	return func(s *TenantConfigService) { s.publisher = p }
}

// WithMetrics records every write attempt.
func WithMetrics(m service.Metrics) TenantConfigOption {
	return func(s *TenantConfigService) { s.metrics = m }
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) TenantConfigOption {
	return func(s *TenantConfigService) { s.now = now }
}

// NewTenantConfigService creates the store on top of repo.
// NewTenantConfigService 基于 repo 创建配置存储。
func NewTenantConfigService(repo repository.TenantConfigRepository, log logger.Logger, opts ...TenantConfigOption) *TenantConfigService {
	s := &TenantConfigService{
		repo:      repo,
		publisher: service.NewNoopEventPublisher(),
		metrics:   service.NewNoopMetrics(),
		logger:    log.WithComponent("tenant_config_service"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the configuration of tenantID, or a not_found error.
// Get 返回 tenantID 的配置，不存在时返回 not_found 错误。
func (s *TenantConfigService) Get(ctx context.Context, tenantID string) (*models.TenantConfiguration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.repo.Get(ctx, tenantID)
}

// All returns every configuration keyed by tenant id.
// All 返回以租户 ID 为键的全部配置。
func (s *TenantConfigService) All(ctx context.Context) (map[string]*models.TenantConfiguration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.repo.List(ctx)
}

// List returns the tenant summaries: built-in tenants first, then the rest ordered by id.
// List 返回租户摘要：内置租户在前，其余按 ID 排序。
func (s *TenantConfigService) List(ctx context.Context) ([]models.TenantSummary, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.TenantSummary, 0, len(all))
	for _, id := range constants.ProtectedTenantIDs {
		if cfg, ok := all[id]; ok {
			summaries = append(summaries, cfg.Summary())
		}
	}

	rest := make([]string, 0, len(all))
	for id := range all {
		if !constants.IsProtectedTenant(id) {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		summaries = append(summaries, all[id].Summary())
	}
	return summaries, nil
}

// Create stores a new tenant. An existing id fails with already_exists before the body is
// looked at; a body without scoringRules or riskLevels fails with invalid_configuration.
// Create 存储一个新租户。已存在的 ID 在检查请求体之前即返回 already_exists；
// 缺少 scoringRules 或 riskLevels 的请求体返回 invalid_configuration。
func (s *TenantConfigService) Create(ctx context.Context, tenantID string, cfg *models.TenantConfiguration) (stored *models.TenantConfiguration, err error) {
	defer func() { s.metrics.RecordConfigMutation("create", err == nil) }()

	if tenantID == "" {
		return nil, errors.ErrMissingRequiredParameter("tenant")
	}
	if err := utils.ValidateTenantID(tenantID); err != nil {
		return nil, err
	}

	stored, err = s.create(ctx, tenantID, cfg)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Tenant configuration created", logger.String("tenant_id", tenantID))
	s.publish(ctx, s.newEvent(constants.TenantConfigCreated, tenantID, stored))
	return stored.Clone(), nil
}

func (s *TenantConfigService) create(ctx context.Context, tenantID string, cfg *models.TenantConfiguration) (*models.TenantConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.Get(ctx, tenantID); err == nil {
		return nil, errors.ErrAlreadyExists(tenantID)
	} else if !errors.IsNotFoundError(err) {
		return nil, err
	}

	if err := s.checkWrite(cfg); err != nil {
		return nil, err
	}

	stored := cfg.Clone()
	stored.ID = tenantID
	if stored.Name == "" {
		stored.Name = tenantID
	}

	if err := s.repo.Save(ctx, stored); err != nil {
		s.logger.Error(ctx, "Failed to create tenant configuration", err, logger.String("tenant_id", tenantID))
		return nil, err
	}
	return stored, nil
}

// Update creates or replaces the configuration of tenantID. Rule tables are replaced
// wholesale; name and description fall back to the stored values, then to the id and "".
// created reports whether the tenant did not exist before.
// Update 创建或替换 tenantID 的配置。规则表整体替换；name 和 description
// 依次回退到已存储的值、租户 ID 和空字符串。created 表示租户此前是否不存在。
func (s *TenantConfigService) Update(ctx context.Context, tenantID string, cfg *models.TenantConfiguration) (stored *models.TenantConfiguration, created bool, err error) {
	defer func() { s.metrics.RecordConfigMutation("update", err == nil) }()

	if tenantID == "" {
		return nil, false, errors.ErrMissingRequiredParameter("tenant")
	}
	if err := utils.ValidateTenantID(tenantID); err != nil {
		return nil, false, err
	}
	if err := s.checkWrite(cfg); err != nil {
		return nil, false, err
	}

	stored, created, err = s.update(ctx, tenantID, cfg)
	if err != nil {
		return nil, false, err
	}

	eventType := constants.TenantConfigUpdated
	if created {
		eventType = constants.TenantConfigCreated
	}
	s.logger.Info(ctx, "Tenant configuration saved",
		logger.String("tenant_id", tenantID),
		logger.Bool("created", created),
	)
	s.publish(ctx, s.newEvent(eventType, tenantID, stored))
	return stored.Clone(), created, nil
}

func (s *TenantConfigService) update(ctx context.Context, tenantID string, cfg *models.TenantConfiguration) (*models.TenantConfiguration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := false
	existing, err := s.repo.Get(ctx, tenantID)
	switch {
	case err == nil:
	case errors.IsNotFoundError(err):
		created = true
	default:
		return nil, false, err
	}

	stored := cfg.Clone()
	stored.ID = tenantID
	if stored.Name == "" && existing != nil {
		stored.Name = existing.Name
	}
	if stored.Name == "" {
		stored.Name = tenantID
	}
	if stored.Description == "" && existing != nil {
		stored.Description = existing.Description
	}

	if err := s.repo.Save(ctx, stored); err != nil {
		s.logger.Error(ctx, "Failed to update tenant configuration", err, logger.String("tenant_id", tenantID))
		return nil, false, err
	}
	return stored, created, nil
}

// Delete removes a tenant. Built-in tenants fail with protected_tenant whether or not
// they are stored; unknown tenants fail with not_found.
// Delete 删除一个租户。内置租户无论是否存在均返回 protected_tenant；未知租户返回 not_found。
func (s *TenantConfigService) Delete(ctx context.Context, tenantID string) (err error) {
	defer func() { s.metrics.RecordConfigMutation("delete", err == nil) }()

	if constants.IsProtectedTenant(tenantID) {
		return errors.ErrProtectedTenant(tenantID)
	}

	if err := s.delete(ctx, tenantID); err != nil {
		return err
	}

	s.logger.Info(ctx, "Tenant configuration deleted", logger.String("tenant_id", tenantID))
	s.publish(ctx, s.newEvent(constants.TenantConfigDeleted, tenantID, nil))
	return nil
}

func (s *TenantConfigService) delete(ctx context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, tenantID); err != nil {
		if !errors.IsNotFoundError(err) {
			s.logger.Error(ctx, "Failed to delete tenant configuration", err, logger.String("tenant_id", tenantID))
		}
		return err
	}
	return nil
}

// Seed stores each default tenant that the backend does not hold yet, so persisted edits
// to the defaults survive a restart.
// Seed 写入后端尚未保存的默认租户，使对默认租户的已持久化修改在重启后得以保留。
func (s *TenantConfigService) Seed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cfg := range models.DefaultTenantConfigurations() {
		_, err := s.repo.Get(ctx, cfg.ID)
		if err == nil {
			s.logger.Debug(ctx, "Default tenant already stored", logger.String("tenant_id", cfg.ID))
			continue
		}
		if !errors.IsNotFoundError(err) {
			return err
		}
		if err := s.repo.Save(ctx, cfg); err != nil {
			return err
		}
		s.logger.Info(ctx, "Default tenant seeded", logger.String("tenant_id", cfg.ID))
	}
	return nil
}

// Validate runs the completeness checks against the stored configuration of tenantID.
// Validate 对 tenantID 已存储的配置运行完整性检查。
func (s *TenantConfigService) Validate(ctx context.Context, tenantID string) (*service.ValidationReport, error) {
	cfg, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	report := service.ValidateConfiguration(cfg)
	return &report, nil
}

// ValidateCandidate runs the completeness checks against an unsaved configuration.
// ValidateCandidate 对尚未保存的配置运行完整性检查。
func (s *TenantConfigService) ValidateCandidate(cfg *models.TenantConfiguration) (*service.ValidationReport, error) {
	if cfg == nil {
		return nil, errors.ErrInvalidRequest("configuration body is required")
	}
	report := service.ValidateConfiguration(cfg)
	return &report, nil
}

// checkWrite applies the write-time structural check: both rule keys must be present,
// and in strict mode the configuration must pass the completeness checks.
func (s *TenantConfigService) checkWrite(cfg *models.TenantConfiguration) error {
	if cfg == nil || cfg.ScoringRules == nil || cfg.RiskLevels == nil {
		return errors.ErrInvalidConfiguration("scoringRules and riskLevels are required")
	}
	if !s.strict {
		return nil
	}

	report := service.ValidateConfiguration(cfg)
	if issues := report.Errors(); len(issues) > 0 {
		return errors.ErrInvalidConfiguration(fmt.Sprintf("%s: %s", issues[0].Path, issues[0].Message)).
			WithMetadata("issues", issues)
	}
	return nil
}

func (s *TenantConfigService) newEvent(eventType constants.TenantConfigEventType, tenantID string, cfg *models.TenantConfiguration) service.TenantConfigEvent {
	event := service.TenantConfigEvent{
		Type:       eventType,
		TenantID:   tenantID,
		OccurredAt: s.now().UTC(),
	}
	if cfg != nil {
		event.Configuration = cfg.Clone()
	}
	return event
}

// publish runs outside s.mu so a slow broker never blocks readers.
func (s *TenantConfigService) publish(ctx context.Context, event service.TenantConfigEvent) {
	if err := s.publisher.PublishTenantConfigEvent(ctx, event); err != nil {
		s.logger.Warn(ctx, "Failed to publish tenant config event",
			logger.String("tenant_id", event.TenantID),
			logger.String("event_type", string(event.Type)),
			logger.Err(err),
		)
	}
}
