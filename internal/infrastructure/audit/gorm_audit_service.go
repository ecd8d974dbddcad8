package audit

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/turtacn/suitability/internal/domain/service"
	"github.com/turtacn/suitability/pkg/constants"
	"github.com/turtacn/suitability/pkg/errors"
)

// tenantConfigEventRecord is one row of the change history.
type tenantConfigEventRecord struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	TenantID      string    `gorm:"column:tenant_id;size:128;index"`
	Type          string    `gorm:"column:type;size:16"`
	OccurredAt    time.Time `gorm:"column:occurred_at;index"`
	Configuration string    `gorm:"column:configuration;type:text"`
}

func (tenantConfigEventRecord) TableName() string {
	return "tenant_config_events"
}

// GormAuditService keeps the history of tenant configuration changes in a relational database.
type GormAuditService struct {
	db *gorm.DB
}

var _ service.EventPublisher = (*GormAuditService)(nil)

// NewGormAuditService creates the service and migrates its table.
func NewGormAuditService(ctx context.Context, db *gorm.DB) (*GormAuditService, error) {
	if err := db.WithContext(ctx).AutoMigrate(&tenantConfigEventRecord{}); err != nil {
		return nil, errors.ErrStorage("migrate", err)
	}
	return &GormAuditService{db: db}, nil
}

// PublishTenantConfigEvent saves the event to the database.
func (s *GormAuditService) PublishTenantConfigEvent(ctx context.Context, event service.TenantConfigEvent) error {
	record := tenantConfigEventRecord{
		TenantID:   event.TenantID,
		Type:       string(event.Type),
		OccurredAt: event.OccurredAt,
	}
	if event.Configuration != nil {
		data, err := json.Marshal(event.Configuration)
		if err != nil {
			return errors.ErrStorage("encode", err)
		}
		record.Configuration = string(data)
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return errors.ErrStorage("audit", err)
	}
	return nil
}

// History returns the recorded events for tenantID, oldest first.
func (s *GormAuditService) History(ctx context.Context, tenantID string) ([]service.TenantConfigEvent, error) {
	var records []tenantConfigEventRecord
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("occurred_at, id").
		Find(&records).Error
	if err != nil {
		return nil, errors.ErrStorage("history", err)
	}

	events := make([]service.TenantConfigEvent, 0, len(records))
	for _, r := range records {
		event := service.TenantConfigEvent{
			Type:       constants.TenantConfigEventType(r.Type),
			TenantID:   r.TenantID,
			OccurredAt: r.OccurredAt,
		}
		if r.Configuration != "" {
			if err := json.Unmarshal([]byte(r.Configuration), &event.Configuration); err != nil {
				return nil, errors.ErrStorage("decode", err)
			}
			event.Configuration.ID = r.TenantID
		}
		events = append(events, event)
	}
	return events, nil
}

// Close is a no-op; the database handle is owned by the connection manager.
func (s *GormAuditService) Close() error {
	return nil
}
