package service

import (
	"context"

	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/pkg/constants"
	"github.com/turtacn/suitability/pkg/errors"
)

// Evaluation is the outcome of scoring one questionnaire: the profile plus every silent
// fallback the rules had to take.
// Evaluation 是一次问卷评分的结果：风险画像以及评分过程中发生的所有静默回退。
type Evaluation struct {
	Profile   *models.RiskProfile
	Fallbacks []constants.FallbackKind
}

// ScoringEngine computes risk profiles from client answers and tenant configurations.
// ScoringEngine 根据客户答案和租户配置计算风险画像。
type ScoringEngine struct {
	configs ConfigurationReader
}

// NewScoringEngine creates an engine that resolves tenants through configs.
func NewScoringEngine(configs ConfigurationReader) *ScoringEngine {
	return &ScoringEngine{configs: configs}
}

// Compute resolves the tenant and scores the answers against its configuration.
// An empty tenantID selects the retail tenant. An unknown tenant fails with
// invalid_tenant and no partial result.
// Compute 解析租户并根据其配置对答案进行评分。
// 空的 tenantID 选择零售租户；未知租户返回 invalid_tenant 错误，不返回部分结果。
func (e *ScoringEngine) Compute(ctx context.Context, answers *models.ClientAnswers, tenantID string) (*Evaluation, error) {
	if tenantID == "" {
		tenantID = constants.DefaultTenantID
	}

	cfg, err := e.configs.Get(ctx, tenantID)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil, errors.ErrInvalidTenant(tenantID)
		}
		return nil, err
	}

	eval := e.Evaluate(answers, cfg)
	return &eval, nil
}

// Evaluate scores answers against cfg. It is a pure function of its inputs.
// Evaluate 根据 cfg 对答案进行评分，是其输入的纯函数。
func (e *ScoringEngine) Evaluate(answers *models.ClientAnswers, cfg *models.TenantConfiguration) Evaluation {
	if answers == nil {
		answers = &models.ClientAnswers{}
	}

	var (
		score     int
		factors   = []string{}
		fallbacks []constants.FallbackKind
	)

	rules := cfg.ScoringRules
	if rules == nil {
		rules = &models.ScoringRules{}
	}

	if ke := rules.KnowledgeExperience; ke != nil {
		if len(ke.YearsInvesting) > 0 {
			bracket, matched := ResolveRange(answers.KnowledgeExperience.YearsInvesting.Float64(), ke.YearsInvesting)
			if !matched {
				fallbacks = append(fallbacks, constants.FallbackRangeYearsInvesting)
			}
			score += bracket.Points
			if bracket.Points >= constants.ExperienceFactorThreshold {
				factors = append(factors, constants.FactorExtensiveExperience)
			}
		}

		if education := answers.KnowledgeExperience.EducationLevel; education != "" {
			if rule, ok := ke.EducationLevel[education]; ok {
				score += rule.Points
				if rule.Points >= constants.EducationFactorThreshold {
					factors = append(factors, constants.FactorProfessionalEducation)
				}
			}
		}
	}

	score += instrumentPoints(answers.KnowledgeExperience.InstrumentKnowledge, rules.KnowledgeExperience)

	if obj := rules.Objectives; obj != nil {
		if rule, ok := obj.TimeHorizon[answers.Objectives.TimeHorizonOrDefault()]; ok {
			score += rule.Points
			if rule.Points >= constants.HorizonFactorThreshold {
				factors = append(factors, constants.FactorLongTermHorizon)
			}
		}
		if rule, ok := obj.PrimaryObjective[answers.Objectives.PrimaryObjectiveOrDefault()]; ok {
			score += rule.Points
		}
	}

	if tol := rules.RiskTolerance; tol != nil {
		if rule, ok := tol.Level[answers.RiskTolerance.LevelOrDefault()]; ok {
			score += rule.Points
			if rule.Points >= constants.ToleranceFactorThreshold {
				factors = append(factors, constants.FactorAggressiveTolerance)
			}
		}
	}

	tier, matched := ClassifyTier(score, cfg.RiskLevels)
	if !matched {
		fallbacks = append(fallbacks, constants.FallbackTier)
	}

	instruments := make([]string, len(tier.AllowedInstruments))
	copy(instruments, tier.AllowedInstruments)

	return Evaluation{
		Profile: &models.RiskProfile{
			RiskScore:          score,
			RiskLevel:          tier.Level,
			RiskCategory:       tier.Category,
			AllowedInstruments: instruments,
			Factors:            factors,
			Tenant:             cfg.ID,
			TenantName:         cfg.Name,
			Sustainability:     answers.Sustainability,
		},
		Fallbacks: fallbacks,
	}
}

// instrumentPoints counts experienced or expert instruments, multiplies by the tenant
// multiplier and applies the cap. Unset values use the package defaults.
func instrumentPoints(knowledge []models.InstrumentKnowledge, rules *models.KnowledgeExperienceRules) int {
	multiplier := constants.DefaultInstrumentKnowledgeMultiplier
	maxPoints := constants.DefaultMaxInstrumentPoints
	if rules != nil {
		if rules.InstrumentKnowledgeMultiplier != 0 {
			multiplier = rules.InstrumentKnowledgeMultiplier
		}
		if rules.MaxInstrumentPoints != 0 {
			maxPoints = rules.MaxInstrumentPoints
		}
	}

	known := 0
	for _, k := range knowledge {
		if k.IsWellKnown() {
			known++
		}
	}

	points := known * multiplier
	if points > maxPoints {
		points = maxPoints
	}
	return points
}
