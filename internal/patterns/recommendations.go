package patterns

import "procwatch/internal/domain"

var patternRecommendations = map[domain.PatternFindingType][]string{
	domain.PatternSpendingTrend: {
		"compare the trend against the organization's approved budget trajectory",
		"check whether the trend coincides with a change in administration or procurement staff",
	},
	domain.PatternOrgDeviationHigh: {
		"benchmark the organization's unit prices against peers buying comparable goods",
		"review the largest contracts driving the elevated average",
	},
	domain.PatternOrgDeviationLow: {
		"verify that unusually low values are not contract splitting below bidding thresholds",
	},
	domain.PatternMultiOrgVendor: {
		"map the vendor's relationships across the involved organizations",
		"check for shared procurement officials among the organizations",
	},
	domain.PatternSeasonalRush: {
		"audit December contracts for shortened bidding windows and emergency justifications",
		"compare year-end spending against the remaining budget balance",
	},
	domain.PatternValueDistribution: {
		"inspect whether the dominant value bracket sits just under a legal bidding threshold",
	},
	domain.PatternCountValueLink: {
		"review the months driving the correlation for batched or split purchases",
	},
	domain.PatternEfficiencyOutlier: {
		"review the organization's vendor rotation and procurement calendar",
	},
}

// RecommendationsFor returns the static recommendation list for a pattern type.
func RecommendationsFor(t domain.PatternFindingType) []string {
	return patternRecommendations[t]
}
