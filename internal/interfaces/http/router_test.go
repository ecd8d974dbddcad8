package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/turtacn/suitability/internal/application/dto"
	appservice "github.com/turtacn/suitability/internal/application/service"
	"github.com/turtacn/suitability/internal/config"
	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/internal/domain/repository"
	"github.com/turtacn/suitability/internal/infrastructure/monitoring"
	"github.com/turtacn/suitability/internal/infrastructure/persistence/memory"
	"github.com/turtacn/suitability/internal/interfaces/http/handlers"
	"github.com/turtacn/suitability/pkg/errors"
	"github.com/turtacn/suitability/pkg/logger"
)

const expertRequest = `{
	"clientAnswers": {
		"knowledgeExperience": {"yearsInvesting": "12", "educationLevel": "finance_degree", "instrumentKnowledge": []},
		"objectives": {"timeHorizon": "long", "primaryObjective": "growth"},
		"riskTolerance": {"level": "aggressive"},
		"sustainability": {"esgPreference": "high"}
	}
}`

const customConfig = `{
	"name": "Wealth",
	"scoringRules": {
		"riskTolerance": {"level": {"aggressive": {"points": 100, "label": "Aggressive"}}}
	},
	"riskLevels": [
		{"level": 1, "minScore": 0, "maxScore": 50, "category": "Low", "allowedInstruments": ["Bonds"]},
		{"level": 2, "minScore": 51, "maxScore": 999, "category": "High", "allowedInstruments": ["Equities"]}
	]
}`

type testServer struct {
	handler  http.Handler
	registry *prometheus.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNoopLogger()
	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetricsAdapter(monitoring.NewMetrics(registry))
	tracer := noop.NewTracerProvider().Tracer("test")

	configs := appservice.NewTenantConfigService(memory.NewTenantConfigRepository(), log, appservice.WithMetrics(metrics))
	require.NoError(t, configs.Seed(context.Background()))
	risk := appservice.NewRiskProfileService(configs, metrics, tracer, log)

	cfg := &config.Config{Server: config.ServerConfig{Port: 5001, Environment: "production", AllowedOrigins: []string{"*"}}}
	router := NewRouter(cfg, log, tracer, metrics, registry,
		handlers.NewHealthHandler(map[string]repository.Pinger{}, log),
		handlers.NewRiskHandler(risk, log),
		handlers.NewTenantConfigHandler(configs, nil, log),
	)
	return &testServer{handler: router.Handler(), registry: registry}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestRouter_ComputeRiskProfile(t *testing.T) {
	srv := newTestServer(t)

	for _, prefix := range []string{"/api/v1", "/api"} {
		t.Run(prefix, func(t *testing.T) {
			w := srv.do(t, http.MethodPost, prefix+"/risk-profile", expertRequest)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var profile models.RiskProfile
			decode(t, w, &profile)
			assert.Equal(t, 80, profile.RiskScore)
			assert.Equal(t, 6, profile.RiskLevel)
			assert.Equal(t, "High Risk", profile.RiskCategory)
			assert.Equal(t, "retail", profile.Tenant)
			assert.Equal(t, "Retail Banking", profile.TenantName)
			assert.JSONEq(t, `{"esgPreference":"high"}`, string(profile.Sustainability))
		})
	}
}

func TestRouter_ComputeRiskProfile_Errors(t *testing.T) {
	srv := newTestServer(t)

	t.Run("unknown tenant", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v1/risk-profile", `{"clientAnswers": {}, "tenantId": "nope"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp errors.ErrorResponse
		decode(t, w, &resp)
		assert.Equal(t, string(errors.CodeInvalidTenant), resp.Error)
		assert.Equal(t, errors.CategoryClient, resp.Category)
		assert.Equal(t, "nope", resp.Metadata["tenant_id"])
	})

	t.Run("missing answers", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v1/risk-profile", `{"tenantId": "retail"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp errors.ErrorResponse
		decode(t, w, &resp)
		assert.Equal(t, string(errors.CodeInvalidRequest), resp.Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v1/risk-profile", `{"clientAnswers":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRouter_ListTenants(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/tenants", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ListTenantsResponse
	decode(t, w, &resp)
	require.Len(t, resp.Tenants, 2)
	assert.Equal(t, "retail", resp.Tenants[0].ID)
	assert.Equal(t, "Retail Banking", resp.Tenants[0].Name)
	assert.Equal(t, "private_banking", resp.Tenants[1].ID)
}

func TestRouter_TenantConfigurationLifecycle(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/v1/risk-configuration/wealth", customConfig)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created map[string]interface{}
	decode(t, w, &created)
	assert.Equal(t, "Tenant wealth created successfully", created["message"])
	assert.Equal(t, "Wealth", created["configuration"].(map[string]interface{})["name"])

	w = srv.do(t, http.MethodPost, "/api/v1/risk-configuration/wealth", customConfig)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/risk-configuration/wealth", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got dto.TenantConfigResponse
	decode(t, w, &got)
	assert.Equal(t, "wealth", got.Tenant)
	assert.Len(t, got.RiskLevels, 2)

	w = srv.do(t, http.MethodPost, "/api/v1/risk-profile",
		`{"clientAnswers": {"riskTolerance": {"level": "aggressive"}}, "tenantId": "wealth"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var profile models.RiskProfile
	decode(t, w, &profile)
	assert.Equal(t, 100, profile.RiskScore)
	assert.Equal(t, "High", profile.RiskCategory)
	assert.Equal(t, []string{"Equities"}, profile.AllowedInstruments)

	w = srv.do(t, http.MethodPut, "/api/v1/risk-configuration/wealth", strings.Replace(customConfig, `"name": "Wealth",`, "", 1))
	require.Equal(t, http.StatusOK, w.Code)
	var updated map[string]interface{}
	decode(t, w, &updated)
	assert.Equal(t, "Risk configuration for wealth updated successfully", updated["message"])
	assert.Equal(t, "Wealth", updated["configuration"].(map[string]interface{})["name"])

	w = srv.do(t, http.MethodPut, "/api/v1/risk-configuration/fresh", customConfig)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/risk-configuration", "")
	require.Equal(t, http.StatusOK, w.Code)
	var all map[string]json.RawMessage
	decode(t, w, &all)
	assert.Len(t, all, 4)

	w = srv.do(t, http.MethodDelete, "/api/v1/risk-configuration/wealth", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Tenant wealth deleted successfully"}`, w.Body.String())

	w = srv.do(t, http.MethodDelete, "/api/v1/risk-configuration/wealth", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/risk-configuration/wealth", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_TenantConfigurationErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   errors.ErrorCode
	}{
		{"create without tiers", http.MethodPost, "/api/v1/risk-configuration/x", `{"scoringRules": {}}`, http.StatusBadRequest, errors.CodeInvalidConfiguration},
		{"create with empty body", http.MethodPost, "/api/v1/risk-configuration/x", "", http.StatusBadRequest, errors.CodeInvalidConfiguration},
		{"create existing", http.MethodPost, "/api/v1/risk-configuration/retail", customConfig, http.StatusConflict, errors.CodeAlreadyExists},
		{"update without rules", http.MethodPut, "/api/v1/risk-configuration/retail", `{"riskLevels": []}`, http.StatusBadRequest, errors.CodeInvalidConfiguration},
		{"update malformed", http.MethodPut, "/api/v1/risk-configuration/retail", `[`, http.StatusBadRequest, errors.CodeInvalidRequest},
		{"create malformed id", http.MethodPost, "/api/v1/risk-configuration/bad%20id", customConfig, http.StatusBadRequest, errors.CodeInvalidRequest},
		{"update reserved id", http.MethodPut, "/api/v1/risk-configuration/validate", customConfig, http.StatusBadRequest, errors.CodeInvalidRequest},
		{"delete retail", http.MethodDelete, "/api/v1/risk-configuration/retail", "", http.StatusForbidden, errors.CodeProtectedTenant},
		{"delete private banking", http.MethodDelete, "/api/risk-configuration/private_banking", "", http.StatusForbidden, errors.CodeProtectedTenant},
		{"get unknown", http.MethodGet, "/api/v1/risk-configuration/ghost", "", http.StatusNotFound, errors.CodeNotFound},
		{"validate unknown", http.MethodGet, "/api/v1/risk-configuration/ghost/validation", "", http.StatusNotFound, errors.CodeNotFound},
		{"validate empty candidate", http.MethodPost, "/api/v1/risk-configuration/validate", "", http.StatusBadRequest, errors.CodeInvalidRequest},
		{"unknown route", http.MethodGet, "/api/v1/nothing-here", "", http.StatusNotFound, errors.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			var resp errors.ErrorResponse
			decode(t, w, &resp)
			assert.Equal(t, string(tt.code), resp.Error)
		})
	}
}

func TestRouter_Validation(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/risk-configuration/retail/validation", "")
	require.Equal(t, http.StatusOK, w.Code)
	var report struct {
		Valid              bool `json:"valid"`
		MaxAchievableScore int  `json:"maxAchievableScore"`
	}
	decode(t, w, &report)
	assert.True(t, report.Valid)
	assert.Positive(t, report.MaxAchievableScore)

	gap := `{
		"scoringRules": {},
		"riskLevels": [
			{"level": 1, "minScore": 0, "maxScore": 10, "category": "Low", "allowedInstruments": []},
			{"level": 2, "minScore": 20, "maxScore": 999, "category": "High", "allowedInstruments": []}
		]
	}`
	w = srv.do(t, http.MethodPost, "/api/v1/risk-configuration/validate", gap)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &report)
	assert.False(t, report.Valid)
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	var health dto.HealthResponse
	decode(t, w, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "suitability", health.Service)

	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/api/health", "").Code)
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/live", "").Code)
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/ready", "").Code)

	// History is not served without a history backend.
	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, "/api/v1/risk-configuration/retail/history", "").Code)

	// pprof stays off in production.
	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, "/debug/pprof/", "").Code)

	srv.do(t, http.MethodGet, "/api/v1/tenants", "")
	w = srv.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `suitability_http_requests_total{method="GET",route="/api/v1/tenants",status="200"}`)
}
