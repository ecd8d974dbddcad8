package service

import (
	"context"
	"time"

	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/pkg/constants"
)

//go:generate mockery --name ConfigurationReader --output mocks --outpkg mocks
// ConfigurationReader provides read access to tenant configurations for scoring.
// ConfigurationReader 为评分提供对租户配置的只读访问。
type ConfigurationReader interface {
	// Get returns a snapshot of the tenant's configuration, or a not_found error.
	// Get 返回租户配置的快照，或 not_found 错误。
	Get(ctx context.Context, tenantID string) (*models.TenantConfiguration, error)
}

// TenantConfigEvent describes one mutation of the tenant configuration store.
// TenantConfigEvent 描述租户配置存储的一次变更。
type TenantConfigEvent struct {
	Type       constants.TenantConfigEventType `json:"type"`
	TenantID   string                          `json:"tenant_id"`
	OccurredAt time.Time                       `json:"occurred_at"`

	// Configuration is the stored value after the change; nil for deletions.
	// Configuration 是变更后存储的值；删除事件为 nil。
	Configuration *models.TenantConfiguration `json:"configuration,omitempty"`
}

//go:generate mockery --name EventPublisher --output mocks --outpkg mocks
// EventPublisher broadcasts tenant configuration changes to other systems.
// EventPublisher 将租户配置的变更广播给其他系统。
type EventPublisher interface {
	// PublishTenantConfigEvent sends the event. Callers treat failures as non-fatal.
	// PublishTenantConfigEvent 发送事件。调用方将失败视为非致命错误。
	PublishTenantConfigEvent(ctx context.Context, event TenantConfigEvent) error

	// Close flushes pending events and releases the underlying connection.
	// Close 刷新待发送的事件并释放底层连接。
	Close() error
}

type noopEventPublisher struct{}

// NewNoopEventPublisher returns a publisher that drops every event.
func NewNoopEventPublisher() EventPublisher {
	return noopEventPublisher{}
}

func (noopEventPublisher) PublishTenantConfigEvent(context.Context, TenantConfigEvent) error {
	return nil
}

func (noopEventPublisher) Close() error {
	return nil
}
