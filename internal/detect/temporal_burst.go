package detect

import (
	"fmt"
	"math"
	"sort"

	"procwatch/internal/domain"
	"procwatch/internal/idhash"
)

// burstZThreshold is the z-score a monthly record count must exceed
// (strict >) to be reported as a burst.
const burstZThreshold = 2.0

// minBurstBuckets is the minimum number of distinct year-months required;
// below that there is no baseline to deviate from.
const minBurstBuckets = 3

// TemporalBursts flags year-months whose record count is anomalously high
// against the other months in the batch. Records without a resolved date
// are ignored.
func TemporalBursts(records []*domain.Record, _ domain.AnalysisConfig) []domain.AnomalyFinding {
	buckets := make(map[string]int)
	for _, r := range records {
		if !r.HasDate() {
			continue
		}
		month := r.SignedAt.Format("2006-01")
		buckets[month]++
	}
	if len(buckets) < minBurstBuckets {
		return nil
	}

	months := make([]string, 0, len(buckets))
	counts := make([]float64, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		counts = append(counts, float64(buckets[m]))
	}

	mean := computeMean(counts)
	std := computeStddev(counts, mean)
	if std == 0 {
		return nil
	}

	var findings []domain.AnomalyFinding
	for i, m := range months {
		z := (counts[i] - mean) / std
		if z <= burstZThreshold {
			continue
		}

		findings = append(findings, domain.AnomalyFinding{
			ID:         idhash.FindingID(string(domain.AnomalyTemporalBurst), m),
			Type:       domain.AnomalyTemporalBurst,
			Severity:   math.Min(z/5, 1),
			Confidence: math.Min(z/3, 1),
			Description: fmt.Sprintf("%d contracts signed in %s against a monthly average of %.1f",
				buckets[m], m, mean),
			Explanation: "contract signings concentrated in a short window can indicate end-of-budget rushes or fractioned purchases",
			Evidence: map[string]any{
				"month":         m,
				"count":         buckets[m],
				"monthly_mean":  mean,
				"monthly_std":   std,
				"z_score":       z,
				"months_in_set": len(months),
			},
			Recommendations: RecommendationsFor(domain.AnomalyTemporalBurst),
		})
	}
	return findings
}
