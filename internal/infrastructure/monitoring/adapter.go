// Package monitoring provides the zap logger, Prometheus metrics and OpenTelemetry tracing.
package monitoring

import (
	"strconv"
	"time"

	"github.com/turtacn/suitability/internal/domain/service"
	"github.com/turtacn/suitability/pkg/constants"
)

// MetricsAdapter implements the domain's service.Metrics interface, sending metrics to a Prometheus backend.
// This adapter translates the domain-specific metric calls into Prometheus label values.
// MetricsAdapter 实现了域的 service.Metrics 接口，将指标发送到 Prometheus 后端。
// 此适配器将特定于域的指标调用转换为 Prometheus 标签值。
type MetricsAdapter struct {
	metrics *Metrics
}

// NewMetricsAdapter creates a new adapter that wraps a concrete Prometheus Metrics object,
// satisfying the domain's Metrics interface.
// NewMetricsAdapter 创建一个包装具体 Prometheus Metrics 对象的新适配器，
// 满足域的 Metrics 接口。
func NewMetricsAdapter(metrics *Metrics) service.Metrics {
	return &MetricsAdapter{metrics: metrics}
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// RecordRiskProfile delegates the call to the underlying Prometheus Metrics object.
// RecordRiskProfile 将调用委托给底层的 Prometheus Metrics 对象。
func (a *MetricsAdapter) RecordRiskProfile(tenantID string, riskLevel, riskScore int) {
	a.metrics.RecordRiskProfile(tenantID, strconv.Itoa(riskLevel), float64(riskScore))
}

// RecordRiskProfileError counts a failed scoring request by error code.
// RecordRiskProfileError 按错误码统计失败的评分请求。
func (a *MetricsAdapter) RecordRiskProfileError(tenantID, errorCode string) {
	a.metrics.RiskProfileErrors.WithLabelValues(tenantID, errorCode).Inc()
}

// RecordScoringFallback counts a silent fallback taken while scoring.
// RecordScoringFallback 统计评分过程中发生的静默回退。
func (a *MetricsAdapter) RecordScoringFallback(tenantID string, kind constants.FallbackKind) {
	a.metrics.ScoringFallbacks.WithLabelValues(tenantID, string(kind)).Inc()
}

// RecordConfigMutation counts a tenant configuration write.
// RecordConfigMutation 统计租户配置写操作。
func (a *MetricsAdapter) RecordConfigMutation(operation string, success bool) {
	a.metrics.ConfigMutations.WithLabelValues(operation, result(success)).Inc()
}

// RecordHTTPRequest delegates the call to the underlying Prometheus Metrics object.
// Requests that matched no route share one label value.
// RecordHTTPRequest 将调用委托给底层的 Prometheus Metrics 对象。
func (a *MetricsAdapter) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	a.metrics.RecordHTTPRequest(method, route, strconv.Itoa(status), duration)
}

// RecordCacheAccess delegates the call to the underlying Prometheus Metrics object.
// RecordCacheAccess 将调用委托给底层的 Prometheus Metrics 对象。
func (a *MetricsAdapter) RecordCacheAccess(cacheType string, hit bool) {
	label := "miss"
	if hit {
		label = "hit"
	}
	a.metrics.CacheAccess.WithLabelValues(cacheType, label).Inc()
}
