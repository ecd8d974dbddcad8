package dto

import (
	"time"

	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/internal/domain/service"
	"github.com/turtacn/suitability/pkg/constants"
)

// ListTenantsResponse 租户列表响应
type ListTenantsResponse struct {
	Tenants []models.TenantSummary `json:"tenants"`
}

// TenantConfigResponse 单个租户配置响应，租户 ID 位于 tenant 字段
type TenantConfigResponse struct {
	Tenant       string               `json:"tenant"`
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	ScoringRules *models.ScoringRules `json:"scoringRules"`
	RiskLevels   []models.RiskTier    `json:"riskLevels"`
}

// NewTenantConfigResponse 从领域模型构造响应
func NewTenantConfigResponse(cfg *models.TenantConfiguration) *TenantConfigResponse {
	return &TenantConfigResponse{
		Tenant:       cfg.ID,
		Name:         cfg.Name,
		Description:  cfg.Description,
		ScoringRules: cfg.ScoringRules,
		RiskLevels:   cfg.RiskLevels,
	}
}

// TenantMutationResponse 创建或更新租户配置后的响应
type TenantMutationResponse struct {
	Message       string                      `json:"message"`
	Configuration *models.TenantConfiguration `json:"configuration"`
}

// TenantConfigEventDTO 租户配置变更历史中的一条记录
type TenantConfigEventDTO struct {
	Type          constants.TenantConfigEventType `json:"type"`
	OccurredAt    time.Time                       `json:"occurredAt"`
	Configuration *models.TenantConfiguration     `json:"configuration,omitempty"`
}

// TenantHistoryResponse 租户配置变更历史响应
type TenantHistoryResponse struct {
	Tenant string                 `json:"tenant"`
	Events []TenantConfigEventDTO `json:"events"`
}

// NewTenantHistoryResponse 从领域事件构造历史响应
func NewTenantHistoryResponse(tenantID string, events []service.TenantConfigEvent) *TenantHistoryResponse {
	resp := &TenantHistoryResponse{Tenant: tenantID, Events: make([]TenantConfigEventDTO, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, TenantConfigEventDTO{
			Type:          e.Type,
			OccurredAt:    e.OccurredAt,
			Configuration: e.Configuration,
		})
	}
	return resp
}
