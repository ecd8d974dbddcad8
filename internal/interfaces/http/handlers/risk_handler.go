package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/suitability/internal/application/dto"
	"github.com/turtacn/suitability/internal/application/service"
	"github.com/turtacn/suitability/pkg/logger"
)

// RiskHandler serves risk profile computation.
type RiskHandler struct {
	risk   *service.RiskProfileService
	logger logger.Logger
}

// NewRiskHandler creates a new RiskHandler.
func NewRiskHandler(risk *service.RiskProfileService, log logger.Logger) *RiskHandler {
	return &RiskHandler{risk: risk, logger: log.WithComponent("risk_handler")}
}

// ComputeRiskProfile godoc
// @Summary      Compute risk profile
// @Description  Scores questionnaire answers against the rules of a tenant and returns the risk tier and allowed instruments.
// @Tags         risk
// @Accept       json
// @Produce      json
// @Param        request  body      dto.RiskProfileRequest  true  "Client answers and optional tenant"
// @Success      200      {object}  models.RiskProfile
// @Failure      400      {object}  errors.ErrorResponse
// @Router       /api/v1/risk-profile [post]
func (h *RiskHandler) ComputeRiskProfile(c *gin.Context) {
	var req dto.RiskProfileRequest
	if err := bindJSON(c, &req); err != nil {
		sendError(c, h.logger, err)
		return
	}

	profile, err := h.risk.ComputeRiskProfile(c.Request.Context(), &req)
	if err != nil {
		sendError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
