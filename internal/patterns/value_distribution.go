package patterns

import (
	"fmt"

	"procwatch/internal/domain"
	"procwatch/internal/idhash"
)

// Value brackets follow the legal bidding-modality thresholds, so a pile-up
// just under a boundary is directly actionable.
var valueBuckets = []struct {
	name string
	max  float64 // exclusive upper bound; the last bucket is open-ended
}{
	{"micro", 8_000},
	{"small", 80_000},
	{"medium", 650_000},
	{"large", 0},
}

// concentrationShare is the contract-count share above which one bracket
// counts as dominating the distribution.
const concentrationShare = 0.7

// ValueConcentration reports when one value bracket holds more than 70% of
// all valued contracts.
func ValueConcentration(records []*domain.Record, cfg domain.AnalysisConfig) []domain.PatternFinding {
	counts := make(map[string]int, len(valueBuckets))
	total := 0
	for _, r := range records {
		if !r.HasValue() {
			continue
		}
		counts[bucketFor(*r.Value)]++
		total++
	}
	if total == 0 {
		return nil
	}

	var findings []domain.PatternFinding
	for _, b := range valueBuckets {
		share := float64(counts[b.name]) / float64(total)
		if share <= concentrationShare {
			continue
		}

		findings = append(findings, domain.PatternFinding{
			ID:           idhash.FindingID(string(domain.PatternValueDistribution), b.name),
			Type:         domain.PatternValueDistribution,
			Significance: share,
			Confidence:   share,
			Insights: []string{
				fmt.Sprintf("%.1f%% of contracts (%d of %d) fall in the %s value bracket",
					share*100, counts[b.name], total, b.name),
			},
			Evidence: map[string]any{
				"bucket":    b.name,
				"share":     share,
				"count":     counts[b.name],
				"total":     total,
				"breakdown": bucketBreakdown(counts),
			},
			Recommendations: RecommendationsFor(domain.PatternValueDistribution),
		})
	}
	return findings
}

func bucketFor(value float64) string {
	for _, b := range valueBuckets[:len(valueBuckets)-1] {
		if value < b.max {
			return b.name
		}
	}
	return valueBuckets[len(valueBuckets)-1].name
}

func bucketBreakdown(counts map[string]int) map[string]int {
	out := make(map[string]int, len(valueBuckets))
	for _, b := range valueBuckets {
		out[b.name] = counts[b.name]
	}
	return out
}
