package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/suitability/internal/application/dto"
	"github.com/turtacn/suitability/internal/domain/repository"
	"github.com/turtacn/suitability/pkg/constants"
	"github.com/turtacn/suitability/pkg/logger"
)

const healthCheckTimeout = 3 * time.Second

// healthReporter is implemented by connections that report pool statistics with their check.
type healthReporter interface {
	HealthCheck(ctx context.Context) (map[string]interface{}, error)
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	checks map[string]repository.Pinger
	log    logger.Logger
	now    func() time.Time
}

// NewHealthHandler creates a new HealthHandler. checks maps a dependency name to the
// backend that is pinged for it; the memory and file stores have nothing to ping.
// Backends that also implement HealthCheck have their statistics reported under details.
func NewHealthHandler(checks map[string]repository.Pinger, log logger.Logger) *HealthHandler {
	if checks == nil {
		checks = map[string]repository.Pinger{}
	}
	return &HealthHandler{
		checks: checks,
		log:    log.WithComponent("health_handler"),
		now:    time.Now,
	}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Checks the health of the service and its dependencies.
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Failure      503  {object}  dto.HealthResponse
// @Router       /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := "healthy"
	checks, details := h.performChecks(c.Request.Context())

	httpStatus := http.StatusOK
	for name, checkStatus := range checks {
		if checkStatus != "ok" {
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
			h.log.Warn(c.Request.Context(), "Dependency check failed",
				logger.String("dependency", name),
				logger.String("status", checkStatus),
			)
		}
	}

	resp := dto.HealthResponse{
		Status:    status,
		Timestamp: h.now().UTC(),
		Service:   constants.ServiceName,
	}
	if len(checks) > 0 {
		resp.Checks = checks
	}
	if len(details) > 0 {
		resp.Details = details
	}
	c.JSON(httpStatus, resp)
}

// ReadinessCheck godoc
// @Summary      Readiness Check
// @Description  Checks if the service is ready to accept traffic.
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Failure      503  {object}  dto.HealthResponse
// @Router       /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	h.HealthCheck(c) // Readiness is the same as healthiness
}

// LivenessCheck godoc
// @Summary      Liveness Check
// @Description  Reports that the process is running without touching dependencies.
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Router       /live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:    "alive",
		Timestamp: h.now().UTC(),
		Service:   constants.ServiceName,
	})
}

func (h *HealthHandler) performChecks(ctx context.Context) (map[string]string, map[string]map[string]interface{}) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	var wg sync.WaitGroup
	checks := make(map[string]string, len(h.checks))
	details := make(map[string]map[string]interface{})
	mu := &sync.Mutex{}

	wg.Add(len(h.checks))
	for name, pinger := range h.checks {
		go func(name string, p repository.Pinger) {
			defer wg.Done()
			var (
				stats map[string]interface{}
				err   error
			)
			if r, ok := p.(healthReporter); ok {
				stats, err = r.HealthCheck(ctx)
			} else {
				err = p.Ping(ctx)
			}

			status := "ok"
			if err != nil {
				status = "error: " + err.Error()
			}
			mu.Lock()
			checks[name] = status
			if len(stats) > 0 {
				details[name] = stats
			}
			mu.Unlock()
		}(name, pinger)
	}
	wg.Wait()
	return checks, details
}
