package models

import "github.com/turtacn/suitability/pkg/constants"

func bound(v float64) *float64 {
	return &v
}

// sharedKnowledgeExperience is identical for both built-in tenants. yearsInvesting is
// listed from the highest bracket down.
func sharedKnowledgeExperience() *KnowledgeExperienceRules {
	return &KnowledgeExperienceRules{
		YearsInvesting: RangeTable{
			{Min: 10, Max: nil, Points: 20, Label: "Over 10 years"},
			{Min: 5, Max: bound(10), Points: 15, Label: "5-10 years"},
			{Min: 2, Max: bound(5), Points: 8, Label: "2-5 years"},
			{Min: 0, Max: bound(2), Points: 3, Label: "Under 2 years"},
		},
		EducationLevel: PointTable{
			"finance_degree": {Points: 15, Label: "Finance Degree"},
			"professional":   {Points: 15, Label: "Professional"},
			"university":     {Points: 8, Label: "University"},
			"high_school":    {Points: 3, Label: "High School"},
			"other":          {Points: 3, Label: "Other"},
		},
		InstrumentKnowledgeMultiplier: 2,
		MaxInstrumentPoints:           15,
	}
}

func sharedObjectives() *ObjectiveRules {
	return &ObjectiveRules{
		TimeHorizon: PointTable{
			"long":   {Points: 15, Label: "Long-term (10+ years)"},
			"medium": {Points: 10, Label: "Medium-term (5-10 years)"},
			"short":  {Points: 3, Label: "Short-term (< 5 years)"},
		},
		PrimaryObjective: PointTable{
			"aggressive_growth":    {Points: 15, Label: "Aggressive Growth"},
			"growth":               {Points: 10, Label: "Growth"},
			"balanced":             {Points: 5, Label: "Balanced"},
			"income":               {Points: 2, Label: "Income"},
			"capital_preservation": {Points: 2, Label: "Capital Preservation"},
		},
	}
}

func sharedRiskTolerance() *RiskToleranceRules {
	return &RiskToleranceRules{
		Level: PointTable{
			"aggressive":        {Points: 20, Label: "Aggressive"},
			"moderate":          {Points: 12, Label: "Moderate"},
			"conservative":      {Points: 5, Label: "Conservative"},
			"very_conservative": {Points: 2, Label: "Very Conservative"},
		},
	}
}

// brackets builds a four-step 5/10/15/20 table from three upper bounds.
func brackets(b1, b2, b3 float64, labels [4]string) RangeTable {
	return RangeTable{
		{Min: 0, Max: bound(b1), Points: 5, Label: labels[0]},
		{Min: b1, Max: bound(b2), Points: 10, Label: labels[1]},
		{Min: b2, Max: bound(b3), Points: 15, Label: labels[2]},
		{Min: b3, Max: nil, Points: 20, Label: labels[3]},
	}
}

var tierCategories = [constants.ExpectedTierCount]string{
	"Very Low Risk",
	"Low Risk",
	"Low-Moderate Risk",
	"Moderate Risk",
	"Moderate-High Risk",
	"High Risk",
	"Very High Risk",
}

var tierBounds = [constants.ExpectedTierCount][2]int{
	{0, 15}, {16, 25}, {26, 40}, {41, 55}, {56, 70}, {71, 85}, {86, 999},
}

func riskTiers(instruments [constants.ExpectedTierCount][]string) []RiskTier {
	tiers := make([]RiskTier, constants.ExpectedTierCount)
	for i := range tiers {
		tiers[i] = RiskTier{
			Level:              i + 1,
			MinScore:           tierBounds[i][0],
			MaxScore:           tierBounds[i][1],
			Category:           tierCategories[i],
			AllowedInstruments: instruments[i],
		}
	}
	return tiers
}

// RetailConfiguration returns the built-in retail banking tenant.
// RetailConfiguration 返回内置的零售银行租户配置。
func RetailConfiguration() *TenantConfiguration {
	return &TenantConfiguration{
		ID:          constants.TenantRetail,
		Name:        "Retail Banking",
		Description: "Standard retail banking clients",
		ScoringRules: &ScoringRules{
			FinancialSituation: &FinancialSituationRules{
				AnnualIncome:     brackets(300000, 750000, 1500000, [4]string{"Low Income", "Medium Income", "High Income", "Very High Income"}),
				NetWorth:         brackets(500000, 2000000, 5000000, [4]string{"Low Net Worth", "Medium Net Worth", "High Net Worth", "Very High Net Worth"}),
				InvestableAssets: brackets(250000, 1000000, 2500000, [4]string{"Low Assets", "Medium Assets", "High Assets", "Very High Assets"}),
			},
			KnowledgeExperience: sharedKnowledgeExperience(),
			Objectives:          sharedObjectives(),
			RiskTolerance:       sharedRiskTolerance(),
		},
		RiskLevels: riskTiers([constants.ExpectedTierCount][]string{
			{"government_bonds", "money_market", "savings"},
			{"bonds", "bond_funds", "money_market", "government_bonds"},
			{"etfs", "bonds", "mutual_funds", "dividend_stocks"},
			{"stocks", "etfs", "bonds", "mutual_funds", "balanced_funds"},
			{"stocks", "etfs", "bonds", "mutual_funds", "reits"},
			{"stocks", "etfs", "commodities", "high_yield_bonds", "reits"},
			{"stocks", "etfs", "commodities", "reits", "high_yield_bonds"},
		}),
	}
}

// PrivateBankingConfiguration returns the built-in private banking tenant.
// PrivateBankingConfiguration 返回内置的私人银行租户配置。
func PrivateBankingConfiguration() *TenantConfiguration {
	return &TenantConfiguration{
		ID:          constants.TenantPrivateBanking,
		Name:        "Private Banking",
		Description: "High net worth private banking clients",
		ScoringRules: &ScoringRules{
			FinancialSituation: &FinancialSituationRules{
				AnnualIncome:     brackets(500000, 1500000, 3000000, [4]string{"Low Income", "Medium Income", "High Income", "Very High Income"}),
				NetWorth:         brackets(2000000, 5000000, 10000000, [4]string{"Low Net Worth", "Medium Net Worth", "High Net Worth", "Ultra High Net Worth"}),
				InvestableAssets: brackets(1000000, 2500000, 5000000, [4]string{"Low Assets", "Medium Assets", "High Assets", "Very High Assets"}),
			},
			KnowledgeExperience: sharedKnowledgeExperience(),
			Objectives:          sharedObjectives(),
			RiskTolerance:       sharedRiskTolerance(),
		},
		RiskLevels: riskTiers([constants.ExpectedTierCount][]string{
			{"government_bonds", "money_market", "bonds", "bond_funds"},
			{"bonds", "bond_funds", "money_market", "government_bonds", "dividend_stocks"},
			{"etfs", "bonds", "mutual_funds", "dividend_stocks", "stocks", "reits"},
			{"stocks", "etfs", "bonds", "mutual_funds", "balanced_funds", "reits", "commodities"},
			{"stocks", "etfs", "bonds", "mutual_funds", "reits", "commodities", "options", "high_yield_bonds"},
			{"stocks", "options", "etfs", "commodities", "high_yield_bonds", "reits", "futures", "crypto"},
			{"stocks", "options", "futures", "leveraged_etfs", "commodities", "crypto", "bonds", "etfs", "reits", "high_yield_bonds"},
		}),
	}
}

// DefaultTenantConfigurations returns fresh copies of the built-in tenants in listing order.
// DefaultTenantConfigurations 按列表顺序返回内置租户的新副本。
func DefaultTenantConfigurations() []*TenantConfiguration {
	return []*TenantConfiguration{RetailConfiguration(), PrivateBankingConfiguration()}
}
