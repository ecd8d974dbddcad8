package service

import (
	"fmt"
	"sort"

	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/pkg/constants"
)

// IssueSeverity ranks validation findings.
type IssueSeverity string

const (
	// SeverityError marks a configuration that will mis-score clients.
	SeverityError IssueSeverity = "error"
	// SeverityWarning marks a suspicious but usable configuration.
	SeverityWarning IssueSeverity = "warning"
)

// ValidationIssue is a single finding, located by a JSON-style path.
// ValidationIssue 是一条校验结果，通过 JSON 风格的路径定位。
type ValidationIssue struct {
	Path     string        `json:"path"`
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// ValidationReport summarises the completeness checks run against a configuration.
// ValidationReport 汇总针对某个配置运行的完整性检查。
type ValidationReport struct {
	Valid              bool              `json:"valid"`
	MaxAchievableScore int               `json:"maxAchievableScore"`
	Issues             []ValidationIssue `json:"issues"`
}

// Errors returns only the error-severity issues.
func (r *ValidationReport) Errors() []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			out = append(out, issue)
		}
	}
	return out
}

type reportBuilder struct {
	issues []ValidationIssue
}

func (b *reportBuilder) errorf(path, format string, args ...interface{}) {
	b.issues = append(b.issues, ValidationIssue{Path: path, Severity: SeverityError, Message: fmt.Sprintf(format, args...)})
}

func (b *reportBuilder) warnf(path, format string, args ...interface{}) {
	b.issues = append(b.issues, ValidationIssue{Path: path, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)})
}

// ValidateConfiguration checks that the range tables cover [0, ∞) without gaps or
// overlaps and that the tiers partition [0, MaxAchievableScore] in order. Tables are
// inspected on sorted copies; cfg is never modified.
// ValidateConfiguration 检查区间表无间隙、无重叠地覆盖 [0, ∞)，
// 并检查风险等级按顺序划分 [0, MaxAchievableScore]。检查基于排序后的副本，不修改 cfg。
func ValidateConfiguration(cfg *models.TenantConfiguration) ValidationReport {
	b := &reportBuilder{}
	report := ValidationReport{Issues: []ValidationIssue{}}

	if cfg == nil {
		b.errorf("", "configuration is required")
		report.Issues = b.issues
		return report
	}

	if cfg.ScoringRules == nil {
		b.errorf("scoringRules", "scoringRules is required")
	} else {
		validateRules(b, cfg.ScoringRules)
		report.MaxAchievableScore = MaxAchievableScore(cfg.ScoringRules)
	}

	if cfg.RiskLevels == nil {
		b.errorf("riskLevels", "riskLevels is required")
	} else {
		validateTiers(b, cfg.RiskLevels, report.MaxAchievableScore)
	}

	if b.issues != nil {
		report.Issues = b.issues
	}
	report.Valid = len(report.Errors()) == 0
	return report
}

// MaxAchievableScore is the highest score any questionnaire can reach under rules.
// MaxAchievableScore 是在给定规则下任何问卷能够达到的最高分数。
func MaxAchievableScore(rules *models.ScoringRules) int {
	if rules == nil {
		return 0
	}
	total := 0
	if ke := rules.KnowledgeExperience; ke != nil {
		total += maxRangePoints(ke.YearsInvesting)
		total += ke.EducationLevel.MaxPoints()
	}
	total += instrumentCap(rules.KnowledgeExperience)
	if obj := rules.Objectives; obj != nil {
		total += obj.TimeHorizon.MaxPoints()
		total += obj.PrimaryObjective.MaxPoints()
	}
	if tol := rules.RiskTolerance; tol != nil {
		total += tol.Level.MaxPoints()
	}
	return total
}

func instrumentCap(rules *models.KnowledgeExperienceRules) int {
	if rules != nil && rules.MaxInstrumentPoints != 0 {
		return rules.MaxInstrumentPoints
	}
	return constants.DefaultMaxInstrumentPoints
}

func maxRangePoints(table models.RangeTable) int {
	max := 0
	for i, bracket := range table {
		if i == 0 || bracket.Points > max {
			max = bracket.Points
		}
	}
	return max
}

func validateRules(b *reportBuilder, rules *models.ScoringRules) {
	if fs := rules.FinancialSituation; fs != nil {
		validateRangeTable(b, "scoringRules.financialSituation.annualIncome", fs.AnnualIncome)
		validateRangeTable(b, "scoringRules.financialSituation.netWorth", fs.NetWorth)
		validateRangeTable(b, "scoringRules.financialSituation.investableAssets", fs.InvestableAssets)
	}

	if ke := rules.KnowledgeExperience; ke != nil {
		validateRangeTable(b, "scoringRules.knowledgeExperience.yearsInvesting", ke.YearsInvesting)
		validatePointTable(b, "scoringRules.knowledgeExperience.educationLevel", ke.EducationLevel)
		if ke.InstrumentKnowledgeMultiplier < 0 {
			b.warnf("scoringRules.knowledgeExperience.instrumentKnowledgeMultiplier", "multiplier %d is negative", ke.InstrumentKnowledgeMultiplier)
		}
		if ke.MaxInstrumentPoints < 0 {
			b.warnf("scoringRules.knowledgeExperience.maxInstrumentPoints", "cap %d is negative", ke.MaxInstrumentPoints)
		}
	}

	if obj := rules.Objectives; obj != nil {
		validatePointTable(b, "scoringRules.objectives.timeHorizon", obj.TimeHorizon)
		validatePointTable(b, "scoringRules.objectives.primaryObjective", obj.PrimaryObjective)
	}

	if tol := rules.RiskTolerance; tol != nil {
		validatePointTable(b, "scoringRules.riskTolerance.level", tol.Level)
	}
}

func validatePointTable(b *reportBuilder, path string, table models.PointTable) {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if table[k].Points < 0 {
			b.warnf(path+"."+k, "points %d are negative", table[k].Points)
		}
	}
}

// validateRangeTable reports gaps, overlaps and misplaced open brackets. Only the
// sorted view is checked, so the listing order of the table never matters.
func validateRangeTable(b *reportBuilder, path string, table models.RangeTable) {
	if len(table) == 0 {
		return
	}

	sorted := table.Clone()
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	if sorted[0].Min != 0 {
		b.errorf(path, "lowest bracket starts at %g, values below it are not covered", sorted[0].Min)
	}

	last := len(sorted) - 1
	for i, bracket := range sorted {
		label := fmt.Sprintf("%s[%q]", path, bracket.Label)
		if bracket.Points < 0 {
			b.warnf(label, "points %d are negative", bracket.Points)
		}

		if bracket.Max == nil {
			if i != last {
				b.errorf(label, "open-ended bracket starting at %g is not the highest bracket", bracket.Min)
			}
			continue
		}
		if *bracket.Max <= bracket.Min {
			b.errorf(label, "max %g is not above min %g", *bracket.Max, bracket.Min)
		}
		if i == last {
			b.errorf(label, "highest bracket ends at %g, values above it are not covered", *bracket.Max)
			continue
		}

		next := sorted[i+1]
		switch {
		case *bracket.Max < next.Min:
			b.errorf(label, "gap between %g and %g", *bracket.Max, next.Min)
		case *bracket.Max > next.Min:
			b.errorf(label, "overlaps the bracket starting at %g", next.Min)
		}
		if next.Points < bracket.Points {
			b.warnf(label, "points decrease from %d to %d at %g", bracket.Points, next.Points, next.Min)
		}
	}
}

func validateTiers(b *reportBuilder, tiers []models.RiskTier, maxAchievable int) {
	if len(tiers) == 0 {
		b.errorf("riskLevels", "at least one tier is required")
		return
	}
	if len(tiers) != constants.ExpectedTierCount {
		b.warnf("riskLevels", "%d tiers defined, %d expected", len(tiers), constants.ExpectedTierCount)
	}

	if tiers[0].MinScore != 0 {
		b.errorf("riskLevels[0].minScore", "first tier starts at %d, lower scores are not covered", tiers[0].MinScore)
	}

	for i, tier := range tiers {
		path := fmt.Sprintf("riskLevels[%d]", i)
		if tier.Level != i+1 {
			b.errorf(path+".level", "level %d found, %d expected", tier.Level, i+1)
		}
		if tier.MinScore > tier.MaxScore {
			b.errorf(path, "minScore %d is above maxScore %d", tier.MinScore, tier.MaxScore)
		}
		if i == 0 {
			continue
		}
		prev := tiers[i-1]
		switch {
		case tier.MinScore > prev.MaxScore+1:
			b.errorf(path+".minScore", "scores %d to %d are not covered", prev.MaxScore+1, tier.MinScore-1)
		case tier.MinScore <= prev.MaxScore:
			b.errorf(path+".minScore", "overlaps tier %d at score %d", prev.Level, tier.MinScore)
		}
	}

	if top := tiers[len(tiers)-1]; top.MaxScore < maxAchievable {
		b.errorf(fmt.Sprintf("riskLevels[%d].maxScore", len(tiers)-1), "ceiling %d is below the maximum achievable score %d", top.MaxScore, maxAchievable)
	}
}
