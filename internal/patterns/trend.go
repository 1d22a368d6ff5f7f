package patterns

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"procwatch/internal/domain"
	"procwatch/internal/idhash"
)

// minTrendMonths is the fewest distinct months a trend can be fitted over.
const minTrendMonths = 3

// trendCorrelation is the |r| above which a monthly trend is reported.
const trendCorrelation = 0.5

// SpendingTrend fits a line through monthly spending totals and reports a
// trend when the month-index/value correlation is strong (|r| > 0.5).
func SpendingTrend(records []*domain.Record, cfg domain.AnalysisConfig) []domain.PatternFinding {
	totals := make(map[string]float64)
	for _, r := range records {
		if !r.HasDate() || !r.HasValue() {
			continue
		}
		totals[monthKey(*r.SignedAt)] += *r.Value
	}
	if len(totals) < minTrendMonths {
		return nil
	}

	months := make([]string, 0, len(totals))
	for m := range totals {
		months = append(months, m)
	}
	sort.Strings(months)

	xs := make([]float64, len(months))
	ys := make([]float64, len(months))
	for i, m := range months {
		xs[i] = float64(i)
		ys[i] = totals[m]
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.Abs(r) <= trendCorrelation {
		return nil
	}

	direction := domain.TrendIncreasing
	verb := "rising"
	if slope < 0 {
		direction = domain.TrendDecreasing
		verb = "falling"
	}
	strength := math.Abs(r)

	return []domain.PatternFinding{{
		ID:           idhash.FindingID(string(domain.PatternSpendingTrend), months[0], months[len(months)-1]),
		Type:         domain.PatternSpendingTrend,
		Significance: strength,
		Confidence:   strength,
		Insights: []string{
			fmt.Sprintf("monthly spending is %s steadily from %s to %s (r=%.2f)",
				verb, months[0], months[len(months)-1], r),
		},
		Evidence: map[string]any{
			"slope":       slope,
			"correlation": r,
			"months":      len(months),
			"first_month": months[0],
			"last_month":  months[len(months)-1],
		},
		Recommendations:     RecommendationsFor(domain.PatternSpendingTrend),
		Trend:               direction,
		CorrelationStrength: &strength,
	}}
}
