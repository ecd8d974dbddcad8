package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/turtacn/suitability/internal/domain/service/mocks"
	"github.com/turtacn/suitability/pkg/constants"
	"github.com/turtacn/suitability/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestObservabilityMiddleware(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	metrics := new(mocks.MockMetrics)
	metrics.On("RecordHTTPRequest", http.MethodGet, "/items/:id", http.StatusOK, mock.AnythingOfType("time.Duration")).Return()
	metrics.On("RecordHTTPRequest", http.MethodGet, "", http.StatusNotFound, mock.AnythingOfType("time.Duration")).Return()

	router := gin.New()
	router.Use(ObservabilityMiddleware(provider.Tracer("test"), metrics))
	router.GET("/items/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	metrics.AssertExpectations(t)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "GET /items/:id", spans[0].Name())
}

func TestObservabilityMiddleware_MarksServerErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	metrics := new(mocks.MockMetrics)
	metrics.On("RecordHTTPRequest", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()

	router := gin.New()
	router.Use(ObservabilityMiddleware(provider.Tracer("test"), metrics))
	router.GET("/store", func(c *gin.Context) {
		_ = c.Error(stderrors.New("connection refused"))
		c.Status(http.StatusInternalServerError)
	})
	router.GET("/gateway", func(c *gin.Context) {
		c.Status(http.StatusBadGateway)
	})
	router.GET("/bad", func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})

	for _, target := range []string{"/store", "/gateway", "/bad"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "connection refused", spans[0].Status().Description)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "HTTP 502", spans[1].Status().Description)
	assert.Equal(t, codes.Unset, spans[2].Status().Code)
}

func TestRequestID(t *testing.T) {
	var fromContext interface{}
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		fromContext = c.Request.Context().Value(constants.ContextKeyRequestID)
		c.Status(http.StatusNoContent)
	})

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		id := w.Header().Get(constants.HeaderRequestID)
		assert.Len(t, id, 36)
		assert.Equal(t, id, fromContext)
	})

	t.Run("keeps the caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constants.HeaderRequestID, "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get(constants.HeaderRequestID))
		assert.Equal(t, "req-123", fromContext)
	})
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(logger.NewNoopLogger()), Logging(logger.NewNoopLogger()))
	router.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil).WithContext(context.Background()))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal_error","error_description":"internal server error","category":"server"}`, w.Body.String())
}
