package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/suitability/internal/application/dto"
	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/internal/domain/service"
	"github.com/turtacn/suitability/pkg/constants"
	"github.com/turtacn/suitability/pkg/errors"
	"github.com/turtacn/suitability/pkg/logger"
)

// RiskProfileService computes risk profiles for scoring requests and reports how each
// computation went through logs, metrics and traces.
// RiskProfileService 为评分请求计算风险画像，并通过日志、指标和追踪报告计算过程。
type RiskProfileService struct {
	engine  *service.ScoringEngine
	metrics service.Metrics
	tracer  trace.Tracer
	logger  logger.Logger
}

// NewRiskProfileService creates the service. configs is usually the TenantConfigService.
// NewRiskProfileService 创建评分服务，configs 通常为 TenantConfigService。
func NewRiskProfileService(configs service.ConfigurationReader, metrics service.Metrics, tracer trace.Tracer, log logger.Logger) *RiskProfileService {
	return &RiskProfileService{
		engine:  service.NewScoringEngine(configs),
		metrics: metrics,
		tracer:  tracer,
		logger:  log.WithComponent("risk_profile_service"),
	}
}

// ComputeRiskProfile scores the request. A request without clientAnswers is malformed;
// an unknown tenant fails with invalid_tenant.
// ComputeRiskProfile 对请求进行评分。缺少 clientAnswers 的请求视为格式错误；未知租户返回 invalid_tenant。
func (s *RiskProfileService) ComputeRiskProfile(ctx context.Context, req *dto.RiskProfileRequest) (*models.RiskProfile, error) {
	if req == nil || req.ClientAnswers == nil {
		return nil, errors.ErrMissingRequiredParameter("clientAnswers")
	}

	tenantID := req.TenantID
	if tenantID == "" {
		tenantID = constants.DefaultTenantID
	}
	ctx = context.WithValue(ctx, constants.ContextKeyTenantID, tenantID)

	ctx, span := s.tracer.Start(ctx, "RiskProfileService.ComputeRiskProfile",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)),
	)
	defer span.End()

	eval, err := s.engine.Compute(ctx, req.ClientAnswers, tenantID)
	if err != nil {
		code := string(errors.CodeInternal)
		if appErr, ok := errors.AsAppError(err); ok {
			code = string(appErr.Code())
		}
		s.metrics.RecordRiskProfileError(tenantID, code)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if errors.IsClientError(err) {
			s.logger.Info(ctx, "Risk profile rejected", logger.String("reason", err.Error()))
		} else {
			s.logger.Error(ctx, "Risk profile computation failed", err)
		}
		return nil, err
	}

	for _, kind := range eval.Fallbacks {
		s.metrics.RecordScoringFallback(tenantID, kind)
		s.logger.Warn(ctx, "Scoring fell back on incomplete tenant rules",
			logger.String("fallback", string(kind)),
			logger.Int("risk_score", eval.Profile.RiskScore),
		)
	}

	profile := eval.Profile
	s.metrics.RecordRiskProfile(tenantID, profile.RiskLevel, profile.RiskScore)
	span.SetAttributes(
		attribute.Int("risk.score", profile.RiskScore),
		attribute.Int("risk.level", profile.RiskLevel),
	)
	s.logger.Debug(ctx, "Risk profile computed",
		logger.Int("risk_score", profile.RiskScore),
		logger.Int("risk_level", profile.RiskLevel),
	)
	return profile, nil
}
