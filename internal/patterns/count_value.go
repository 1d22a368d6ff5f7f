package patterns

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"procwatch/internal/domain"
	"procwatch/internal/idhash"
)

// minCorrelationPoints is the fewest organization-months a correlation can
// be computed over.
const minCorrelationPoints = 3

// CountValueCorrelation correlates contract counts against average values
// per organization-month and reports |r| above cfg.CorrelationThreshold.
func CountValueCorrelation(records []*domain.Record, cfg domain.AnalysisConfig) []domain.PatternFinding {
	type cell struct {
		total float64
		count int
	}
	cells := make(map[string]*cell)
	for _, r := range records {
		if r.OrgCode == "" || !r.HasDate() || !r.HasValue() {
			continue
		}
		key := r.OrgCode + "|" + monthKey(*r.SignedAt)
		c, ok := cells[key]
		if !ok {
			c = &cell{}
			cells[key] = c
		}
		c.total += *r.Value
		c.count++
	}
	if len(cells) < minCorrelationPoints {
		return nil
	}

	keys := make([]string, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	counts := make([]float64, len(keys))
	averages := make([]float64, len(keys))
	for i, k := range keys {
		c := cells[k]
		counts[i] = float64(c.count)
		averages[i] = c.total / float64(c.count)
	}

	r := stat.Correlation(counts, averages, nil)
	if math.IsNaN(r) {
		return nil
	}
	strength := math.Abs(r)
	if strength <= cfg.CorrelationThreshold {
		return nil
	}

	insight := fmt.Sprintf("busy months also carry higher average contract values (r=%.2f), consistent with batched or end-of-budget purchasing", r)
	if r < 0 {
		insight = fmt.Sprintf("busy months carry lower average contract values (r=%.2f), consistent with splitting purchases below bidding thresholds", r)
	}

	return []domain.PatternFinding{{
		ID:           idhash.FindingID(string(domain.PatternCountValueLink), "org-month"),
		Type:         domain.PatternCountValueLink,
		Significance: strength,
		Confidence:   strength,
		Insights:     []string{insight},
		Evidence: map[string]any{
			"correlation": r,
			"org_months":  len(keys),
		},
		Recommendations:     RecommendationsFor(domain.PatternCountValueLink),
		CorrelationStrength: &strength,
	}}
}
