// Package service holds the scoring rules of the suitability domain and the interfaces
// the domain needs from the outside world.
package service

import (
	"time"

	"github.com/turtacn/suitability/pkg/constants"
)

// Metrics defines the interface for collecting business metrics.
// This abstraction allows the application layer to remain independent of the specific monitoring implementation (e.g., Prometheus).
// Metrics 定义了收集业务指标的接口。
// 这种抽象使应用层能够独立于具体的监控实现（例如 Prometheus）。
type Metrics interface {
	// RecordRiskProfile records a successfully computed profile.
	// RecordRiskProfile 记录一次成功计算的风险画像。
	RecordRiskProfile(tenantID string, riskLevel, riskScore int)

	// RecordRiskProfileError records a rejected scoring request.
	// RecordRiskProfileError 记录一次被拒绝的评分请求。
	RecordRiskProfileError(tenantID, errorCode string)

	// RecordScoringFallback records a silent fallback taken while scoring.
	// RecordScoringFallback 记录评分时发生的静默回退。
	RecordScoringFallback(tenantID string, kind constants.FallbackKind)

	// RecordConfigMutation records a create, update or delete of a tenant configuration.
	// RecordConfigMutation 记录租户配置的创建、更新或删除。
	RecordConfigMutation(operation string, success bool)

	// RecordHTTPRequest records the outcome and latency of an HTTP request.
	// RecordHTTPRequest 记录 HTTP 请求的结果和延迟。
	RecordHTTPRequest(method, route string, status int, duration time.Duration)

	// RecordCacheAccess records a cache hit or miss.
	// RecordCacheAccess 记录缓存命中或未命中。
	RecordCacheAccess(cacheType string, hit bool)
}

type noopMetrics struct{}

// NewNoopMetrics returns a Metrics implementation that records nothing.
func NewNoopMetrics() Metrics {
	return noopMetrics{}
}

func (noopMetrics) RecordRiskProfile(string, int, int)                   {}
func (noopMetrics) RecordRiskProfileError(string, string)                {}
func (noopMetrics) RecordScoringFallback(string, constants.FallbackKind) {}
func (noopMetrics) RecordConfigMutation(string, bool)                    {}
func (noopMetrics) RecordHTTPRequest(string, string, int, time.Duration) {}
func (noopMetrics) RecordCacheAccess(string, bool)                       {}
