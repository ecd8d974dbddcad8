package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/suitability/internal/application/dto"
	"github.com/turtacn/suitability/internal/application/service"
	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/pkg/logger"
)

// TenantConfigHandler serves tenant configuration management.
type TenantConfigHandler struct {
	configs *service.TenantConfigService
	history service.HistoryReader
	logger  logger.Logger
}

// NewTenantConfigHandler creates a new TenantConfigHandler. history may be nil when the
// configured backend keeps no change history.
func NewTenantConfigHandler(configs *service.TenantConfigService, history service.HistoryReader, log logger.Logger) *TenantConfigHandler {
	return &TenantConfigHandler{
		configs: configs,
		history: history,
		logger:  log.WithComponent("tenant_config_handler"),
	}
}

// HasHistory reports whether the history endpoint can be served.
func (h *TenantConfigHandler) HasHistory() bool {
	return h.history != nil
}

// ListTenants godoc
// @Summary      List tenants
// @Tags         tenants
// @Produce      json
// @Success      200  {object}  dto.ListTenantsResponse
// @Router       /api/v1/tenants [get]
func (h *TenantConfigHandler) ListTenants(c *gin.Context) {
	tenants, err := h.configs.List(c.Request.Context())
	if err != nil {
		sendError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTenantsResponse{Tenants: tenants})
}

// GetConfiguration godoc
// @Summary      Get tenant configuration
// @Tags         risk-configuration
// @Produce      json
// @Param        tenant  path      string  true  "Tenant ID"
// @Success      200     {object}  dto.TenantConfigResponse
// @Failure      404     {object}  errors.ErrorResponse
// @Router       /api/v1/risk-configuration/{tenant} [get]
func (h *TenantConfigHandler) GetConfiguration(c *gin.Context) {
	cfg, err := h.configs.Get(c.Request.Context(), c.Param("tenant"))
	if err != nil {
		sendError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTenantConfigResponse(cfg))
}

// GetAllConfigurations godoc
// @Summary      Get every tenant configuration
// @Tags         risk-configuration
// @Produce      json
// @Success      200  {object}  map[string]models.TenantConfiguration
// @Router       /api/v1/risk-configuration [get]
func (h *TenantConfigHandler) GetAllConfigurations(c *gin.Context) {
	all, err := h.configs.All(c.Request.Context())
	if err != nil {
		sendError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

// CreateConfiguration godoc
// @Summary      Create tenant configuration
// @Tags         risk-configuration
// @Accept       json
// @Produce      json
// @Param        tenant  path      string                      true  "Tenant ID"
// @Param        config  body      models.TenantConfiguration  true  "Configuration"
// @Success      201     {object}  dto.TenantMutationResponse
// @Failure      400     {object}  errors.ErrorResponse
// @Failure      409     {object}  errors.ErrorResponse
// @Router       /api/v1/risk-configuration/{tenant} [post]
func (h *TenantConfigHandler) CreateConfiguration(c *gin.Context) {
	tenant := c.Param("tenant")

	var cfg models.TenantConfiguration
	if err := bindJSON(c, &cfg); err != nil {
		sendError(c, h.logger, err)
		return
	}

	stored, err := h.configs.Create(c.Request.Context(), tenant, &cfg)
	if err != nil {
		sendError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.TenantMutationResponse{
		Message:       fmt.Sprintf("Tenant %s created successfully", tenant),
		Configuration: stored,
	})
}

// UpdateConfiguration godoc
// @Summary      Create or replace tenant configuration
// @Tags         risk-configuration
// @Accept       json
// @Produce      json
// @Param        tenant  path      string                      true  "Tenant ID"
// @Param        config  body      models.TenantConfiguration  true  "Configuration"
// @Success      200     {object}  dto.TenantMutationResponse
// @Success      201     {object}  dto.TenantMutationResponse
// @Failure      400     {object}  errors.ErrorResponse
// @Router       /api/v1/risk-configuration/{tenant} [put]
func (h *TenantConfigHandler) UpdateConfiguration(c *gin.Context) {
	tenant := c.Param("tenant")

	var cfg models.TenantConfiguration
	if err := bindJSON(c, &cfg); err != nil {
		sendError(c, h.logger, err)
		return
	}

	stored, created, err := h.configs.Update(c.Request.Context(), tenant, &cfg)
	if err != nil {
		sendError(c, h.logger, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.TenantMutationResponse{
		Message:       fmt.Sprintf("Risk configuration for %s updated successfully", tenant),
		Configuration: stored,
	})
}

// DeleteConfiguration godoc
// @Summary      Delete tenant configuration
// @Tags         risk-configuration
// @Produce      json
// @Param        tenant  path      string  true  "Tenant ID"
// @Success      200     {object}  dto.MessageResponse
// @Failure      403     {object}  errors.ErrorResponse
// @Failure      404     {object}  errors.ErrorResponse
// @Router       /api/v1/risk-configuration/{tenant} [delete]
func (h *TenantConfigHandler) DeleteConfiguration(c *gin.Context) {
	tenant := c.Param("tenant")
	if err := h.configs.Delete(c.Request.Context(), tenant); err != nil {
		sendError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: fmt.Sprintf("Tenant %s deleted successfully", tenant)})
}

// ValidateConfiguration godoc
// @Summary      Check a stored tenant configuration for completeness
// @Tags         risk-configuration
// @Produce      json
// @Param        tenant  path      string  true  "Tenant ID"
// @Success      200     {object}  service.ValidationReport
// @Failure      404     {object}  errors.ErrorResponse
// @Router       /api/v1/risk-configuration/{tenant}/validation [get]
func (h *TenantConfigHandler) ValidateConfiguration(c *gin.Context) {
	report, err := h.configs.Validate(c.Request.Context(), c.Param("tenant"))
	if err != nil {
		sendError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ValidateCandidate godoc
// @Summary      Check an unsaved configuration for completeness
// @Tags         risk-configuration
// @Accept       json
// @Produce      json
// @Param        config  body      models.TenantConfiguration  true  "Configuration"
// @Success      200     {object}  service.ValidationReport
// @Failure      400     {object}  errors.ErrorResponse
// @Router       /api/v1/risk-configuration/validate [post]
func (h *TenantConfigHandler) ValidateCandidate(c *gin.Context) {
	var cfg *models.TenantConfiguration
	if err := bindJSON(c, &cfg); err != nil {
		sendError(c, h.logger, err)
		return
	}

	report, err := h.configs.ValidateCandidate(cfg)
	if err != nil {
		sendError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetHistory godoc
// @Summary      List the recorded changes of a tenant configuration
// @Tags         risk-configuration
// @Produce      json
// @Param        tenant  path      string  true  "Tenant ID"
// @Success      200     {object}  dto.TenantHistoryResponse
// @Router       /api/v1/risk-configuration/{tenant}/history [get]
func (h *TenantConfigHandler) GetHistory(c *gin.Context) {
	tenant := c.Param("tenant")
	events, err := h.history.History(c.Request.Context(), tenant)
	if err != nil {
		sendError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTenantHistoryResponse(tenant, events))
}
