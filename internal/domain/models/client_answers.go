package models

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"math"
	"strconv"
	"strings"

	"github.com/turtacn/suitability/pkg/constants"
)

// ClientAnswers is the questionnaire response submitted for scoring.
// Every section is optional; missing values fall back to the scoring defaults.
// ClientAnswers 是提交用于评分的问卷答案。
// 每个部分都是可选的；缺失的值将使用评分默认值。
type ClientAnswers struct {
	KnowledgeExperience KnowledgeExperienceAnswers `json:"knowledgeExperience"`
	Objectives          ObjectiveAnswers           `json:"objectives"`
	RiskTolerance       RiskToleranceAnswers       `json:"riskTolerance"`

	// FinancialSituation is accepted but not scored.
	// FinancialSituation 会被接受，但不参与评分。
	FinancialSituation FinancialSituationAnswers `json:"financialSituation"`

	// Sustainability is copied verbatim into the risk profile.
	// Sustainability 会原样复制到风险画像中。
	Sustainability json.RawMessage `json:"sustainability,omitempty"`
}

// KnowledgeExperienceAnswers describes the client's investing background.
// KnowledgeExperienceAnswers 描述客户的投资背景。
type KnowledgeExperienceAnswers struct {
	YearsInvesting      FlexibleNumber        `json:"yearsInvesting"`
	EducationLevel      string                `json:"educationLevel"`
	InstrumentKnowledge []InstrumentKnowledge `json:"instrumentKnowledge"`
}

// InstrumentKnowledge is the client's familiarity with one instrument category.
// InstrumentKnowledge 是客户对某一类金融工具的熟悉程度。
type InstrumentKnowledge struct {
	Instrument string                   `json:"instrument"`
	Knowledge  constants.KnowledgeLevel `json:"knowledge"`
}

// IsWellKnown reports whether the knowledge level counts towards instrument points.
// The comparison is case-sensitive.
func (k InstrumentKnowledge) IsWellKnown() bool {
	return k.Knowledge == constants.KnowledgeExperienced || k.Knowledge == constants.KnowledgeExpert
}

// ObjectiveAnswers holds the investment horizon and primary goal.
type ObjectiveAnswers struct {
	TimeHorizon      string `json:"timeHorizon"`
	PrimaryObjective string `json:"primaryObjective"`
}

// RiskToleranceAnswers holds the declared tolerance level.
type RiskToleranceAnswers struct {
	Level string `json:"level"`
}

// FinancialSituationAnswers holds the income and wealth figures collected by the form.
type FinancialSituationAnswers struct {
	AnnualIncome     FlexibleNumber `json:"annualIncome"`
	NetWorth         FlexibleNumber `json:"netWorth"`
	InvestableAssets FlexibleNumber `json:"investableAssets"`
}

// TimeHorizonOrDefault returns the horizon key, or "medium" when the client gave none.
func (a ObjectiveAnswers) TimeHorizonOrDefault() string {
	if a.TimeHorizon == "" {
		return constants.DefaultTimeHorizon
	}
	return a.TimeHorizon
}

// PrimaryObjectiveOrDefault returns the objective key, or "growth" when the client gave none.
func (a ObjectiveAnswers) PrimaryObjectiveOrDefault() string {
	if a.PrimaryObjective == "" {
		return constants.DefaultPrimaryObjective
	}
	return a.PrimaryObjective
}

// LevelOrDefault returns the tolerance key, or "moderate" when the client gave none.
func (a RiskToleranceAnswers) LevelOrDefault() string {
	if a.Level == "" {
		return constants.DefaultRiskTolerance
	}
	return a.Level
}

// FlexibleNumber is a numeric form field that may arrive as a JSON number, a numeric
// string or a boolean. null, empty and non-numeric input decode to 0 instead of failing.
// "Infinity", "-Infinity" and magnitudes beyond float64 decode to ±Inf, so an absurd
// yearsInvesting still lands in the open-ended top bracket.
// FlexibleNumber 是一个数字表单字段，可以是 JSON 数字、数字字符串或布尔值。
// null、空值和非数字输入会被解码为 0，而不是报错。
// "Infinity"、"-Infinity" 以及超出 float64 范围的数值解码为 ±Inf。
type FlexibleNumber float64

// Float64 returns the value as a float64.
func (n FlexibleNumber) Float64() float64 {
	return float64(n)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *FlexibleNumber) UnmarshalJSON(data []byte) error {
	*n = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*n = FlexibleNumber(parseNumber(strings.TrimSpace(s)))
		return nil
	case 't':
		*n = 1
		return nil
	case 'f':
		return nil
	}

	if data[0] == '-' || (data[0] >= '0' && data[0] <= '9') {
		*n = FlexibleNumber(parseNumber(string(data)))
	}
	return nil
}

// parseNumber converts a numeric literal, returning 0 for anything that is not one.
// Only the exact spellings Infinity, +Infinity and -Infinity are accepted for infinities.
func parseNumber(s string) float64 {
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	lower := strings.ToLower(strings.TrimLeft(s, "+-"))
	if strings.HasPrefix(lower, "inf") || strings.HasPrefix(lower, "nan") || strings.HasPrefix(lower, "0x") {
		return 0
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !stderrors.Is(err, strconv.ErrRange) {
		return 0
	}
	if math.IsNaN(v) {
		return 0
	}
	return v
}
