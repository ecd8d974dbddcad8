package monitoring_test

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/suitability/internal/config"
	"github.com/turtacn/suitability/internal/infrastructure/monitoring"
	"github.com/turtacn/suitability/pkg/constants"
	"github.com/turtacn/suitability/pkg/logger"
)

func observed(level zapcore.Level) (*monitoring.ZapLogger, *observer.ObservedLogs) {
	atom := zap.NewAtomicLevelAt(level)
	core, logs := observer.New(atom)
	return monitoring.NewZapLoggerWithCore(core, atom), logs
}

func TestZapLogger_ContextAndComponentFields(t *testing.T) {
	log, logs := observed(zapcore.DebugLevel)

	ctx := context.WithValue(context.Background(), constants.ContextKeyRequestID, "req-1")
	ctx = context.WithValue(ctx, constants.ContextKeyTenantID, "retail")
	log.WithComponent("scoring").Info(ctx, "profile computed", logger.Int("score", 80))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "scoring", fields["component"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "retail", fields["tenant_id"])
	assert.EqualValues(t, 80, fields["score"])
}

func TestZapLogger_TraceFields(t *testing.T) {
	log, logs := observed(zapcore.DebugLevel)
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(tracetest.NewSpanRecorder()))
	ctx, span := provider.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	log.Info(ctx, "traced")
	log.Info(context.Background(), "untraced")

	entries := logs.All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, monitoring.GetTraceID(ctx), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
	assert.NotContains(t, entries[1].ContextMap(), "trace_id")
}

func TestZapLogger_ErrorAttachesCause(t *testing.T) {
	log, logs := observed(zapcore.DebugLevel)
	log.Error(context.Background(), "save failed", stderrors.New("disk full"))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "disk full", logs.All()[0].ContextMap()["error"])
}

func TestZapLogger_SetLevelAffectsDerivedLoggers(t *testing.T) {
	log, logs := observed(zapcore.InfoLevel)
	child := log.WithComponent("child")

	child.Debug(context.Background(), "hidden")
	assert.Equal(t, 0, logs.Len())

	require.NoError(t, log.SetLevel("debug"))
	assert.Equal(t, "debug", log.Level())
	child.Debug(context.Background(), "visible")
	assert.Equal(t, 1, logs.Len())

	assert.Error(t, log.SetLevel("loud"))
}

func TestNewZapLogger_Config(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	log, err := monitoring.NewZapLogger(&config.LogConfig{Level: "warn", Format: "console", OutputPath: path})
	require.NoError(t, err)
	assert.Equal(t, "warn", log.Level())

	_, err = monitoring.NewZapLogger(&config.LogConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)

	_, err = monitoring.NewZapLogger(&config.LogConfig{Level: "chatty"})
	assert.Error(t, err)
}

func TestMetricsAdapter_RecordsLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := monitoring.NewMetrics(reg)
	adapter := monitoring.NewMetricsAdapter(m)

	adapter.RecordRiskProfile("retail", 5, 80)
	adapter.RecordRiskProfileError("acme", "invalid_tenant")
	adapter.RecordScoringFallback("retail", constants.FallbackTier)
	adapter.RecordConfigMutation("create", true)
	adapter.RecordConfigMutation("create", false)
	adapter.RecordHTTPRequest("GET", "", 404, 5*time.Millisecond)
	adapter.RecordCacheAccess("tenant_config", true)
	adapter.RecordCacheAccess("tenant_config", false)
	adapter.RecordCacheAccess("tenant_config", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RiskProfiles.WithLabelValues("retail", "5")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RiskProfileErrors.WithLabelValues("acme", "invalid_tenant")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScoringFallbacks.WithLabelValues("retail", "tier")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfigMutations.WithLabelValues("create", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfigMutations.WithLabelValues("create", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheAccess.WithLabelValues("tenant_config", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheAccess.WithLabelValues("tenant_config", "miss")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RiskScores))
}

func TestTracingManager_Disabled(t *testing.T) {
	tm, err := monitoring.NewTracingManager(&config.Config{}, logger.NewNoopLogger())
	require.NoError(t, err)

	ctx, span := tm.StartSpanWithAttributes(context.Background(), "noop", map[string]interface{}{"tenant": "retail"})
	span.End()
	assert.Empty(t, monitoring.GetTraceID(ctx))
	assert.NoError(t, tm.Shutdown(context.Background()))
}

func TestTracingManager_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tm := monitoring.NewTracingManagerWithProvider(provider, logger.NewNoopLogger())

	ctx, span := tm.StartSpanWithAttributes(context.Background(), "risk.compute", map[string]interface{}{
		"tenant_id": "retail",
		"score":     80,
		"tags":      []string{"a"},
		"other":     1.5,
	})
	assert.NotEmpty(t, monitoring.GetTraceID(ctx))
	monitoring.RecordError(span, stderrors.New("boom"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "risk.compute", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Len(t, spans[0].Attributes(), 4)
	assert.NoError(t, tm.Shutdown(context.Background()))
}
