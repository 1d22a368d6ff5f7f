package detect

import (
	"fmt"
	"math"
	"sort"

	"procwatch/internal/domain"
	"procwatch/internal/idhash"
)

// VendorConcentration flags vendors whose share of total contract value
// exceeds cfg.ConcentrationThreshold (strict >). Returns empty when the
// batch has no monetary value at all.
func VendorConcentration(records []*domain.Record, cfg domain.AnalysisConfig) []domain.AnomalyFinding {
	type vendor struct {
		name  string
		taxID string
		total float64
		count int
	}

	// Group by (name, tax id) composite key
	byVendor := make(map[string]*vendor)
	totalValue := 0.0
	for _, r := range records {
		if !r.HasValue() {
			continue
		}
		key := r.SupplierName + "|" + r.SupplierID
		v, ok := byVendor[key]
		if !ok {
			v = &vendor{name: r.SupplierName, taxID: r.SupplierID}
			byVendor[key] = v
		}
		v.total += *r.Value
		v.count++
		totalValue += *r.Value
	}
	if totalValue == 0 {
		return nil
	}

	// Deterministic iteration order
	keys := make([]string, 0, len(byVendor))
	for k := range byVendor {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var findings []domain.AnomalyFinding
	for _, k := range keys {
		v := byVendor[k]
		share := v.total / totalValue
		if share <= cfg.ConcentrationThreshold {
			continue
		}

		vendorKey := v.taxID
		if vendorKey == "" {
			vendorKey = v.name
		}
		findings = append(findings, domain.AnomalyFinding{
			ID:         idhash.FindingID(string(domain.AnomalyVendorConcentration), vendorKey),
			Type:       domain.AnomalyVendorConcentration,
			Severity:   math.Min(share*1.5, 1),
			Confidence: share,
			Description: fmt.Sprintf("vendor %s holds %.1f%% of total contract value across %d contracts",
				displayName(v.name, v.taxID), share*100, v.count),
			Explanation: "a single vendor dominating total spend suggests restricted competition or steering",
			Evidence: map[string]any{
				"share":        share,
				"vendor_total": v.total,
				"batch_total":  totalValue,
				"contracts":    v.count,
			},
			Recommendations: RecommendationsFor(domain.AnomalyVendorConcentration),
			Entities: []domain.EntityRef{
				{Kind: "supplier", Key: vendorKey, Name: v.name},
			},
		})
	}
	return findings
}

// displayName renders a vendor for human-readable descriptions.
func displayName(name, taxID string) string {
	if name != "" {
		return name
	}
	if taxID != "" {
		return taxID
	}
	return "(unidentified)"
}
