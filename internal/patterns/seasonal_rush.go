package patterns

import (
	"fmt"
	"time"

	"procwatch/internal/domain"
	"procwatch/internal/idhash"
)

// rushRatio is the December-to-baseline contract count ratio above which a
// year-end rush is reported.
const rushRatio = 1.5

// SeasonalRush compares December contract counts against the average of the
// other calendar months.
func SeasonalRush(records []*domain.Record, cfg domain.AnalysisConfig) []domain.PatternFinding {
	var counts [13]int // indexed by time.Month
	for _, r := range records {
		if !r.HasDate() {
			continue
		}
		counts[r.SignedAt.Month()]++
	}

	december := counts[time.December]
	otherTotal := 0
	otherMonths := 0
	for m := time.January; m <= time.November; m++ {
		if counts[m] > 0 {
			otherTotal += counts[m]
			otherMonths++
		}
	}
	if december == 0 || otherMonths == 0 {
		return nil
	}

	baseline := float64(otherTotal) / float64(otherMonths)
	ratio := float64(december) / baseline
	if ratio <= rushRatio {
		return nil
	}

	return []domain.PatternFinding{{
		ID:           idhash.FindingID(string(domain.PatternSeasonalRush), "december"),
		Type:         domain.PatternSeasonalRush,
		Significance: domain.Clamp01((ratio - 1) / 2),
		Confidence:   domain.Clamp01(ratio / 3),
		Insights: []string{
			fmt.Sprintf("December holds %d contracts against a %.1f monthly baseline (%.1fx), typical of year-end budget exhaustion",
				december, baseline, ratio),
		},
		Evidence: map[string]any{
			"december_count":   december,
			"monthly_baseline": baseline,
			"ratio":            ratio,
			"active_months":    otherMonths,
		},
		Recommendations: RecommendationsFor(domain.PatternSeasonalRush),
	}}
}
