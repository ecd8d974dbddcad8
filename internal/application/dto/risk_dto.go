package dto

import (
	"github.com/turtacn/suitability/internal/domain/models"
)

// RiskProfileRequest is the body of a scoring request.
// RiskProfileRequest 是评分请求的请求体。
type RiskProfileRequest struct {
	// ClientAnswers holds the questionnaire answers; missing sections score zero.
	// ClientAnswers 保存问卷答案；缺失的部分计零分。
	ClientAnswers *models.ClientAnswers `json:"clientAnswers"`

	// TenantID selects the tenant rules; empty selects retail.
	// TenantID 选择租户规则；为空时选择零售租户。
	TenantID string `json:"tenantId,omitempty"`
}
