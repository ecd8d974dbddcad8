package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	RiskProfiles      *prometheus.CounterVec
	RiskScores        *prometheus.HistogramVec
	RiskProfileErrors *prometheus.CounterVec
	ScoringFallbacks  *prometheus.CounterVec
	ConfigMutations   *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
	HTTPLatency       *prometheus.HistogramVec
	CacheAccess       *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RiskProfiles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suitability_risk_profiles_total",
				Help: "Total number of risk profiles computed.",
			},
			[]string{"tenant_id", "risk_level"},
		),
		RiskScores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "suitability_risk_score",
				Help:    "Distribution of computed risk scores.",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
			[]string{"tenant_id"},
		),
		RiskProfileErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suitability_risk_profile_errors_total",
				Help: "Total number of failed risk profile requests.",
			},
			[]string{"tenant_id", "error_code"},
		),
		ScoringFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suitability_scoring_fallbacks_total",
				Help: "Total number of silent fallbacks taken while scoring.",
			},
			[]string{"tenant_id", "kind"},
		),
		ConfigMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suitability_tenant_config_mutations_total",
				Help: "Total number of tenant configuration writes.",
			},
			[]string{"operation", "result"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suitability_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "suitability_http_request_duration_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		CacheAccess: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suitability_cache_access_total",
				Help: "Total number of cache lookups.",
			},
			[]string{"cache", "result"},
		),
	}
}

// RecordRiskProfile records a computed profile.
func (m *Metrics) RecordRiskProfile(tenantID, riskLevel string, riskScore float64) {
	m.RiskProfiles.WithLabelValues(tenantID, riskLevel).Inc()
	m.RiskScores.WithLabelValues(tenantID).Observe(riskScore)
}

// RecordHTTPRequest records metrics for one served request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}
