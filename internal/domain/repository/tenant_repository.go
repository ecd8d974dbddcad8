package repository

import (
	"context"

	"github.com/turtacn/suitability/internal/domain/models"
)

// TenantConfigRepository defines the interface for interacting with tenant configuration storage.
// Implementations return copies; callers may modify what they receive.
// TenantConfigRepository 定义了与租户配置存储交互的接口。
// 实现返回副本；调用方可以修改收到的对象。
type TenantConfigRepository interface {
	// Get retrieves one configuration, or a not_found error.
	// Get 获取一个配置，不存在时返回 not_found 错误。
	Get(ctx context.Context, tenantID string) (*models.TenantConfiguration, error)

	// List retrieves all configurations keyed by tenant id.
	// List 获取所有配置，以租户 ID 为键。
	List(ctx context.Context) (map[string]*models.TenantConfiguration, error)

	// Save creates or replaces the configuration stored under cfg.ID.
	// Save 创建或替换 cfg.ID 下存储的配置。
	Save(ctx context.Context, cfg *models.TenantConfiguration) error

	// Delete removes a configuration, or returns a not_found error.
	// Delete 删除一个配置，不存在时返回 not_found 错误。
	Delete(ctx context.Context, tenantID string) error
}

// Pinger is implemented by repositories backed by a remote service.
// Pinger 由依赖远程服务的存储库实现。
type Pinger interface {
	Ping(ctx context.Context) error
}
