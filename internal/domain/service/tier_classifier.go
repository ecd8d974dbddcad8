package service

import (
	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/pkg/constants"
)

// ClassifyTier returns the first tier whose inclusive score bounds contain score.
// When no tier matches, it returns level 1 "Very Low Risk" with no instruments and matched=false.
// ClassifyTier 返回第一个闭区间分数范围包含 score 的风险等级。
// 没有匹配时返回等级 1 "Very Low Risk"，不含任何工具，且 matched 为 false。
func ClassifyTier(score int, tiers []models.RiskTier) (tier models.RiskTier, matched bool) {
	for _, t := range tiers {
		if t.Includes(score) {
			return t, true
		}
	}
	return models.RiskTier{
		Level:              constants.FallbackTierLevel,
		Category:           constants.FallbackTierCategory,
		AllowedInstruments: []string{},
	}, false
}
