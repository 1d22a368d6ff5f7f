package patterns

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"procwatch/internal/domain"
	"procwatch/internal/idhash"
)

// orgDeviationZ is the |z| above which an organization's average contract
// value counts as deviant.
const orgDeviationZ = 1.5

// OrgDeviations compares each organization's average contract value against
// the cross-organization distribution and flags |z| > 1.5 either way.
func OrgDeviations(records []*domain.Record, cfg domain.AnalysisConfig) []domain.PatternFinding {
	type orgStats struct {
		total float64
		count int
	}
	byOrg := make(map[string]*orgStats)
	for _, r := range records {
		if r.OrgCode == "" || !r.HasValue() {
			continue
		}
		s, ok := byOrg[r.OrgCode]
		if !ok {
			s = &orgStats{}
			byOrg[r.OrgCode] = s
		}
		s.total += *r.Value
		s.count++
	}
	if len(byOrg) < 2 {
		return nil
	}

	orgs := make([]string, 0, len(byOrg))
	for o := range byOrg {
		orgs = append(orgs, o)
	}
	sort.Strings(orgs)

	averages := make([]float64, len(orgs))
	for i, o := range orgs {
		s := byOrg[o]
		averages[i] = s.total / float64(s.count)
	}
	mean := stat.Mean(averages, nil)
	std := stat.PopStdDev(averages, nil)
	if std == 0 {
		return nil
	}

	var findings []domain.PatternFinding
	for i, o := range orgs {
		z := (averages[i] - mean) / std
		if math.Abs(z) <= orgDeviationZ {
			continue
		}

		findingType := domain.PatternOrgDeviationHigh
		insight := fmt.Sprintf("organization %s averages %.2f per contract, %.1f sigma above the %.2f cross-organization mean",
			o, averages[i], z, mean)
		if z < 0 {
			findingType = domain.PatternOrgDeviationLow
			insight = fmt.Sprintf("organization %s averages %.2f per contract, %.1f sigma below the %.2f cross-organization mean",
				o, averages[i], -z, mean)
		}

		findings = append(findings, domain.PatternFinding{
			ID:           idhash.FindingID(string(findingType), o),
			Type:         findingType,
			Significance: domain.Clamp01(math.Abs(z) / 3),
			Confidence:   domain.Clamp01(math.Abs(z) / 2),
			Insights:     []string{insight},
			Evidence: map[string]any{
				"z_score":       z,
				"org_average":   averages[i],
				"overall_mean":  mean,
				"overall_std":   std,
				"contracts":     byOrg[o].count,
				"organizations": len(orgs),
			},
			Recommendations: RecommendationsFor(findingType),
			Entities: []domain.EntityRef{
				{Kind: "organization", Key: o},
			},
		})
	}
	return findings
}
