package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/suitability/internal/application/dto"
	appservice "github.com/turtacn/suitability/internal/application/service"
	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/internal/domain/repository"
	"github.com/turtacn/suitability/internal/domain/service"
	"github.com/turtacn/suitability/internal/infrastructure/persistence/memory"
	"github.com/turtacn/suitability/pkg/constants"
	"github.com/turtacn/suitability/pkg/errors"
	"github.com/turtacn/suitability/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// reportingPinger reports pool statistics the way the database and redis connections do.
type reportingPinger struct {
	stats map[string]interface{}
	err   error
}

func (p reportingPinger) Ping(context.Context) error { return stderrors.New("Ping must not be used") }

func (p reportingPinger) HealthCheck(context.Context) (map[string]interface{}, error) {
	return p.stats, p.err
}

type staticHistory []service.TenantConfigEvent

func (h staticHistory) History(_ context.Context, tenantID string) ([]service.TenantConfigEvent, error) {
	var out []service.TenantConfigEvent
	for _, e := range h {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out, nil
}

type failingHistory struct{}

func (failingHistory) History(context.Context, string) ([]service.TenantConfigEvent, error) {
	return nil, errors.ErrStorage("history", stderrors.New("connection refused"))
}

func serve(h gin.HandlerFunc, method, route, target string) *httptest.ResponseRecorder {
	engine := gin.New()
	engine.Handle(method, route, h)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestHealthHandler_HealthCheck(t *testing.T) {
	healthy := pingerFunc(func(context.Context) error { return nil })
	broken := pingerFunc(func(context.Context) error { return stderrors.New("dial tcp: refused") })

	t.Run("all dependencies up", func(t *testing.T) {
		h := NewHealthHandler(map[string]repository.Pinger{"database": healthy}, logger.NewNoopLogger())
		w := serve(h.HealthCheck, http.MethodGet, "/health", "/health")
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, constants.ServiceName, resp.Service)
		assert.Equal(t, map[string]string{"database": "ok"}, resp.Checks)
	})

	t.Run("one dependency down", func(t *testing.T) {
		h := NewHealthHandler(map[string]repository.Pinger{"database": healthy, "redis": broken}, logger.NewNoopLogger())
		w := serve(h.ReadinessCheck, http.MethodGet, "/ready", "/ready")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp dto.HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "ok", resp.Checks["database"])
		assert.Equal(t, "error: dial tcp: refused", resp.Checks["redis"])
	})

	t.Run("readiness reports connection statistics", func(t *testing.T) {
		h := NewHealthHandler(map[string]repository.Pinger{
			"database": reportingPinger{stats: map[string]interface{}{"status": "healthy", "open_connections": 2}},
			"redis":    reportingPinger{stats: map[string]interface{}{"connected": false}, err: stderrors.New("timeout")},
			"other":    healthy,
		}, logger.NewNoopLogger())
		w := serve(h.ReadinessCheck, http.MethodGet, "/ready", "/ready")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp dto.HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, map[string]string{"database": "ok", "redis": "error: timeout", "other": "ok"}, resp.Checks)
		assert.Equal(t, "healthy", resp.Details["database"]["status"])
		assert.EqualValues(t, 2, resp.Details["database"]["open_connections"])
		assert.Equal(t, false, resp.Details["redis"]["connected"])
		assert.NotContains(t, resp.Details, "other")
	})

	t.Run("liveness ignores dependencies", func(t *testing.T) {
		h := NewHealthHandler(map[string]repository.Pinger{"redis": broken}, logger.NewNoopLogger())
		w := serve(h.LivenessCheck, http.MethodGet, "/live", "/live")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestTenantConfigHandler_GetHistory(t *testing.T) {
	log := logger.NewNoopLogger()
	configs := appservice.NewTenantConfigService(memory.NewTenantConfigRepository(), log)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	history := staticHistory{
		{Type: constants.TenantConfigCreated, TenantID: "wealth", OccurredAt: at, Configuration: &models.TenantConfiguration{Name: "Wealth"}},
		{Type: constants.TenantConfigDeleted, TenantID: "wealth", OccurredAt: at.Add(time.Hour)},
		{Type: constants.TenantConfigCreated, TenantID: "other", OccurredAt: at},
	}

	h := NewTenantConfigHandler(configs, history, log)
	require.True(t, h.HasHistory())

	w := serve(h.GetHistory, http.MethodGet, "/risk-configuration/:tenant/history", "/risk-configuration/wealth/history")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.TenantHistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "wealth", resp.Tenant)
	require.Len(t, resp.Events, 2)
	assert.Equal(t, constants.TenantConfigCreated, resp.Events[0].Type)
	assert.Equal(t, "Wealth", resp.Events[0].Configuration.Name)
	assert.Nil(t, resp.Events[1].Configuration)

	unknown := serve(h.GetHistory, http.MethodGet, "/risk-configuration/:tenant/history", "/risk-configuration/ghost/history")
	require.Equal(t, http.StatusOK, unknown.Code)
	assert.JSONEq(t, `{"tenant":"ghost","events":[]}`, unknown.Body.String())
}

func TestTenantConfigHandler_StorageFailure(t *testing.T) {
	log := logger.NewNoopLogger()
	configs := appservice.NewTenantConfigService(memory.NewTenantConfigRepository(), log)
	h := NewTenantConfigHandler(configs, failingHistory{}, log)

	w := serve(h.GetHistory, http.MethodGet, "/risk-configuration/:tenant/history", "/risk-configuration/wealth/history")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(errors.CodeStorage), resp.Error)
	assert.Equal(t, errors.CategoryServer, resp.Category)
}
