package patterns

import (
	"fmt"
	"sort"

	"procwatch/internal/domain"
	"procwatch/internal/idhash"
)

// Admission floors for the multi-organization vendor finding.
const (
	minVendorOrgs      = 3
	minVendorContracts = 5
)

// MultiOrgVendors flags vendors contracting with three or more organizations
// across five or more contracts.
func MultiOrgVendors(records []*domain.Record, cfg domain.AnalysisConfig) []domain.PatternFinding {
	type vendor struct {
		name      string
		orgs      map[string]bool
		contracts int
		total     float64
	}
	byVendor := make(map[string]*vendor)
	for _, r := range records {
		key := r.VendorKey()
		if key == "" || r.OrgCode == "" {
			continue
		}
		v, ok := byVendor[key]
		if !ok {
			v = &vendor{name: r.SupplierName, orgs: make(map[string]bool)}
			byVendor[key] = v
		}
		v.orgs[r.OrgCode] = true
		v.contracts++
		if r.HasValue() {
			v.total += *r.Value
		}
	}

	keys := make([]string, 0, len(byVendor))
	for k := range byVendor {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var findings []domain.PatternFinding
	for _, k := range keys {
		v := byVendor[k]
		if len(v.orgs) < minVendorOrgs || v.contracts < minVendorContracts {
			continue
		}

		orgs := make([]string, 0, len(v.orgs))
		for o := range v.orgs {
			orgs = append(orgs, o)
		}
		sort.Strings(orgs)

		entities := []domain.EntityRef{{Kind: "supplier", Key: k, Name: v.name}}
		for _, o := range orgs {
			entities = append(entities, domain.EntityRef{Kind: "organization", Key: o})
		}

		findings = append(findings, domain.PatternFinding{
			ID:           idhash.FindingID(string(domain.PatternMultiOrgVendor), k),
			Type:         domain.PatternMultiOrgVendor,
			Significance: domain.Clamp01(0.2 * float64(len(v.orgs))),
			Confidence:   domain.Clamp01(float64(v.contracts) / 10),
			Insights: []string{
				fmt.Sprintf("vendor %s holds %d contracts across %d organizations totaling %.2f",
					v.name, v.contracts, len(v.orgs), v.total),
			},
			Evidence: map[string]any{
				"organizations": orgs,
				"contracts":     v.contracts,
				"total_value":   v.total,
			},
			Recommendations: RecommendationsFor(domain.PatternMultiOrgVendor),
			Entities:        entities,
		})
	}
	return findings
}
