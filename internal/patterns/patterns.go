// Package patterns implements the higher-level pattern and correlation
// analyzers. Like the detectors, every method is a pure function over an
// immutable record slice and safe to run in parallel.
package patterns

import (
	"time"

	"procwatch/internal/domain"
)

// Method is one pattern analyzer over a record collection.
type Method struct {
	Name string
	Run  func(records []*domain.Record, cfg domain.AnalysisConfig) []domain.PatternFinding
}

// All is the closed set of analyzer methods, in a fixed order. The engine
// iterates this slice; there is no name-keyed dispatch.
var All = []Method{
	{Name: "spending_trend", Run: SpendingTrend},
	{Name: "org_deviation", Run: OrgDeviations},
	{Name: "multi_org_vendor", Run: MultiOrgVendors},
	{Name: "seasonal_rush", Run: SeasonalRush},
	{Name: "value_concentration", Run: ValueConcentration},
	{Name: "count_value_correlation", Run: CountValueCorrelation},
	{Name: "efficiency_outlier", Run: EfficiencyOutliers},
}

// monthKey buckets a date by calendar month.
func monthKey(t time.Time) string {
	return t.Format("2006-01")
}
