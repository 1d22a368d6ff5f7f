package patterns

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"procwatch/internal/domain"
	"procwatch/internal/idhash"
)

// efficiencyZ is the |z| above which an organization's composite efficiency
// score counts as an outlier.
const efficiencyZ = 1.0

// Composite weights: vendor rotation matters, but a steady procurement
// calendar matters more.
const (
	diversityWeight   = 0.4
	consistencyWeight = 0.6
)

// EfficiencyOutliers scores each organization on vendor diversity (unique
// vendors per contract) and activity consistency (active months out of 12),
// then flags organizations whose composite deviates by more than one sigma.
func EfficiencyOutliers(records []*domain.Record, cfg domain.AnalysisConfig) []domain.PatternFinding {
	type orgActivity struct {
		vendors   map[string]bool
		months    map[string]bool
		contracts int
	}
	byOrg := make(map[string]*orgActivity)
	for _, r := range records {
		if r.OrgCode == "" {
			continue
		}
		a, ok := byOrg[r.OrgCode]
		if !ok {
			a = &orgActivity{vendors: make(map[string]bool), months: make(map[string]bool)}
			byOrg[r.OrgCode] = a
		}
		a.contracts++
		if key := r.VendorKey(); key != "" {
			a.vendors[key] = true
		}
		if r.HasDate() {
			a.months[monthKey(*r.SignedAt)] = true
		}
	}
	if len(byOrg) < 2 {
		return nil
	}

	orgs := make([]string, 0, len(byOrg))
	for o := range byOrg {
		orgs = append(orgs, o)
	}
	sort.Strings(orgs)

	scores := make([]float64, len(orgs))
	for i, o := range orgs {
		a := byOrg[o]
		diversity := float64(len(a.vendors)) / float64(a.contracts)
		consistency := math.Min(float64(len(a.months))/12, 1)
		scores[i] = diversityWeight*diversity + consistencyWeight*consistency
	}
	mean := stat.Mean(scores, nil)
	std := stat.PopStdDev(scores, nil)
	if std == 0 {
		return nil
	}

	var findings []domain.PatternFinding
	for i, o := range orgs {
		z := (scores[i] - mean) / std
		if math.Abs(z) <= efficiencyZ {
			continue
		}

		direction := "above"
		if z < 0 {
			direction = "below"
		}
		findings = append(findings, domain.PatternFinding{
			ID:           idhash.FindingID(string(domain.PatternEfficiencyOutlier), o),
			Type:         domain.PatternEfficiencyOutlier,
			Significance: domain.Clamp01(math.Abs(z) / 3),
			Confidence:   domain.Clamp01(math.Abs(z) / 2),
			Insights: []string{
				fmt.Sprintf("organization %s scores %.2f on the efficiency composite, %.1f sigma %s the %.2f mean",
					o, scores[i], math.Abs(z), direction, mean),
			},
			Evidence: map[string]any{
				"score":         scores[i],
				"z_score":       z,
				"mean":          mean,
				"std":           std,
				"vendors":       len(byOrg[o].vendors),
				"contracts":     byOrg[o].contracts,
				"active_months": len(byOrg[o].months),
			},
			Recommendations: RecommendationsFor(domain.PatternEfficiencyOutlier),
			Entities: []domain.EntityRef{
				{Kind: "organization", Key: o},
			},
		})
	}
	return findings
}
