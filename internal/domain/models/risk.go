package models

import "encoding/json"

// RiskProfile is the result of scoring one questionnaire against a tenant configuration.
// It is recomputed on every call and never stored.
// RiskProfile 是根据租户配置对一份问卷进行评分的结果。
// 每次调用都会重新计算，不会被存储。
type RiskProfile struct {
	// RiskScore is the sum of all applicable rule points.
	// RiskScore 是所有适用规则分值的总和。
	RiskScore int `json:"riskScore"`

	// RiskLevel is the matched tier level, 1 through 7 for the default tenants.
	// RiskLevel 是匹配到的风险等级，默认租户为 1 到 7。
	RiskLevel int `json:"riskLevel"`

	// RiskCategory is the label of the matched tier.
	// RiskCategory 是匹配等级的标签。
	RiskCategory string `json:"riskCategory"`

	// AllowedInstruments lists the instrument categories the client may be offered. Never nil.
	// AllowedInstruments 列出可以向客户提供的金融工具类别，从不为 nil。
	AllowedInstruments []string `json:"allowedInstruments"`

	// Factors describes the high-weight rules that fired, in scoring order. Never nil.
	// Factors 按评分顺序描述触发的高权重规则，从不为 nil。
	Factors []string `json:"factors"`

	Tenant     string `json:"tenant"`
	TenantName string `json:"tenantName"`

	// Sustainability echoes the client's preferences and is omitted when absent.
	// Sustainability 回显客户的可持续发展偏好，缺失时省略。
	Sustainability json.RawMessage `json:"sustainability,omitempty"`
}
