// Package models defines the domain models for the suitability service.
// This file contains the TenantConfiguration domain model: the per-tenant scoring rules and risk tiers.
package models

// TenantConfiguration holds the scoring rules and risk tiers of one tenant.
// The tenant id is the key under which the configuration is stored and is not part of the body.
// TenantConfiguration 保存一个租户的评分规则和风险等级。
// 租户 ID 是存储该配置的键，不属于配置主体。
type TenantConfiguration struct {
	// ID is the unique tenant key, immutable once created.
	// ID 是唯一的租户键，创建后不可更改。
	ID string `json:"-"`

	// Name is the display name of the tenant.
	// Name 是租户的显示名称。
	Name string `json:"name"`

	// Description is free-form display text.
	// Description 是自由格式的显示文本。
	Description string `json:"description"`

	// ScoringRules is nil when the configuration omitted it.
	// ScoringRules 在配置缺失时为 nil。
	ScoringRules *ScoringRules `json:"scoringRules"`

	// RiskLevels is the ordered tier table. nil means the configuration omitted it; an empty slice is present.
	// RiskLevels 是有序的风险等级表。nil 表示配置缺失；空切片表示存在。
	RiskLevels []RiskTier `json:"riskLevels"`
}

// TenantSummary is the listing view of a tenant, without rule tables.
// TenantSummary 是租户的列表视图，不包含规则表。
type TenantSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ScoringRules groups the rule tables by questionnaire section.
// ScoringRules 按问卷部分对规则表进行分组。
type ScoringRules struct {
	// FinancialSituation is stored and validated but not scored.
	// FinancialSituation 会被存储和校验，但不参与评分。
	FinancialSituation  *FinancialSituationRules  `json:"financialSituation,omitempty"`
	KnowledgeExperience *KnowledgeExperienceRules `json:"knowledgeExperience,omitempty"`
	Objectives          *ObjectiveRules           `json:"objectives,omitempty"`
	RiskTolerance       *RiskToleranceRules       `json:"riskTolerance,omitempty"`
}

// FinancialSituationRules holds the income and wealth bracket tables.
// FinancialSituationRules 保存收入和财富区间表。
type FinancialSituationRules struct {
	AnnualIncome     RangeTable `json:"annualIncome,omitempty"`
	NetWorth         RangeTable `json:"netWorth,omitempty"`
	InvestableAssets RangeTable `json:"investableAssets,omitempty"`
}

// KnowledgeExperienceRules scores experience, education and instrument familiarity.
// KnowledgeExperienceRules 对经验、教育和金融工具熟悉程度进行评分。
type KnowledgeExperienceRules struct {
	YearsInvesting RangeTable `json:"yearsInvesting,omitempty"`
	EducationLevel PointTable `json:"educationLevel,omitempty"`

	// InstrumentKnowledgeMultiplier is the points per well-known instrument; 0 means use the default of 2.
	// InstrumentKnowledgeMultiplier 是每个熟悉工具的分数；0 表示使用默认值 2。
	InstrumentKnowledgeMultiplier int `json:"instrumentKnowledgeMultiplier,omitempty"`

	// MaxInstrumentPoints caps the instrument contribution; 0 means use the default of 10.
	// MaxInstrumentPoints 限制工具得分上限；0 表示使用默认值 10。
	MaxInstrumentPoints int `json:"maxInstrumentPoints,omitempty"`
}

// ObjectiveRules scores the investment horizon and goal.
// ObjectiveRules 对投资期限和目标进行评分。
type ObjectiveRules struct {
	TimeHorizon      PointTable `json:"timeHorizon,omitempty"`
	PrimaryObjective PointTable `json:"primaryObjective,omitempty"`
}

// RiskToleranceRules scores the declared tolerance level.
// RiskToleranceRules 对声明的风险承受水平进行评分。
type RiskToleranceRules struct {
	Level PointTable `json:"level,omitempty"`
}

// RangeBracket is a half-open interval [Min, Max) carrying points. A nil Max is the open-ended top bracket.
// RangeBracket 是带分值的半开区间 [Min, Max)。Max 为 nil 表示无上限的最高区间。
type RangeBracket struct {
	Min    float64  `json:"min"`
	Max    *float64 `json:"max"`
	Points int      `json:"points"`
	Label  string   `json:"label"`
}

// Contains reports whether value falls inside the bracket.
func (b RangeBracket) Contains(value float64) bool {
	return value >= b.Min && (b.Max == nil || value < *b.Max)
}

// RangeTable is an ordered list of brackets.
// RangeTable 是有序的区间列表。
type RangeTable []RangeBracket

// PointRule is the score attached to one category key.
// PointRule 是附加在某个类别键上的分值。
type PointRule struct {
	Points int    `json:"points"`
	Label  string `json:"label"`
}

// PointTable maps category keys to points. Tenants may add their own keys.
// PointTable 将类别键映射到分值。租户可以添加自定义键。
type PointTable map[string]PointRule

// MaxPoints returns the highest points value in the table, or 0 when empty.
func (t PointTable) MaxPoints() int {
	max := 0
	first := true
	for _, rule := range t {
		if first || rule.Points > max {
			max = rule.Points
			first = false
		}
	}
	return max
}

// RiskTier is one band of the score-to-tier mapping. Both score bounds are inclusive.
// RiskTier 是分数到风险等级映射中的一个区段。两个分数边界均为闭区间。
type RiskTier struct {
	Level              int      `json:"level"`
	MinScore           int      `json:"minScore"`
	MaxScore           int      `json:"maxScore"`
	Category           string   `json:"category"`
	AllowedInstruments []string `json:"allowedInstruments"`
}

// Includes reports whether score falls inside the tier.
func (t RiskTier) Includes(score int) bool {
	return score >= t.MinScore && score <= t.MaxScore
}

// Summary returns the listing view of the configuration.
func (c *TenantConfiguration) Summary() TenantSummary {
	return TenantSummary{ID: c.ID, Name: c.Name, Description: c.Description}
}

// Clone returns a deep copy. nil-ness of ScoringRules and RiskLevels is preserved.
// Clone 返回深拷贝，并保留 ScoringRules 和 RiskLevels 的 nil 语义。
func (c *TenantConfiguration) Clone() *TenantConfiguration {
	if c == nil {
		return nil
	}
	out := &TenantConfiguration{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		ScoringRules: c.ScoringRules.Clone(),
	}
	if c.RiskLevels != nil {
		out.RiskLevels = make([]RiskTier, len(c.RiskLevels))
		for i, tier := range c.RiskLevels {
			out.RiskLevels[i] = tier.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the rules.
func (r *ScoringRules) Clone() *ScoringRules {
	if r == nil {
		return nil
	}
	out := &ScoringRules{}
	if r.FinancialSituation != nil {
		out.FinancialSituation = &FinancialSituationRules{
			AnnualIncome:     r.FinancialSituation.AnnualIncome.Clone(),
			NetWorth:         r.FinancialSituation.NetWorth.Clone(),
			InvestableAssets: r.FinancialSituation.InvestableAssets.Clone(),
		}
	}
	if r.KnowledgeExperience != nil {
		out.KnowledgeExperience = &KnowledgeExperienceRules{
			YearsInvesting:                r.KnowledgeExperience.YearsInvesting.Clone(),
			EducationLevel:                r.KnowledgeExperience.EducationLevel.Clone(),
			InstrumentKnowledgeMultiplier: r.KnowledgeExperience.InstrumentKnowledgeMultiplier,
			MaxInstrumentPoints:           r.KnowledgeExperience.MaxInstrumentPoints,
		}
	}
	if r.Objectives != nil {
		out.Objectives = &ObjectiveRules{
			TimeHorizon:      r.Objectives.TimeHorizon.Clone(),
			PrimaryObjective: r.Objectives.PrimaryObjective.Clone(),
		}
	}
	if r.RiskTolerance != nil {
		out.RiskTolerance = &RiskToleranceRules{Level: r.RiskTolerance.Level.Clone()}
	}
	return out
}

// Clone returns a deep copy of the table.
func (t RangeTable) Clone() RangeTable {
	if t == nil {
		return nil
	}
	out := make(RangeTable, len(t))
	for i, b := range t {
		out[i] = b
		if b.Max != nil {
			max := *b.Max
			out[i].Max = &max
		}
	}
	return out
}

// Clone returns a copy of the table.
func (t PointTable) Clone() PointTable {
	if t == nil {
		return nil
	}
	out := make(PointTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Clone returns a copy of the tier with its own instrument slice.
func (t RiskTier) Clone() RiskTier {
	out := t
	if t.AllowedInstruments != nil {
		out.AllowedInstruments = append([]string(nil), t.AllowedInstruments...)
	}
	return out
}
