package detect

import (
	"fmt"
	"math"

	"procwatch/internal/domain"
	"procwatch/internal/idhash"
)

// minPriceOutlierSample is the minimum number of positively valued records
// before z-scores are meaningful.
const minPriceOutlierSample = 10

// PriceOutliers flags records whose value deviates from the batch mean by
// more than cfg.PriceAnomalyThreshold standard deviations (strict >).
// A zero-variance batch yields no findings.
func PriceOutliers(records []*domain.Record, cfg domain.AnalysisConfig) []domain.AnomalyFinding {
	type valued struct {
		rec   *domain.Record
		value float64
	}

	var priced []valued
	for _, r := range records {
		if r.HasValue() && *r.Value > 0 {
			priced = append(priced, valued{rec: r, value: *r.Value})
		}
	}
	if len(priced) < minPriceOutlierSample {
		return nil
	}

	values := make([]float64, len(priced))
	for i, p := range priced {
		values[i] = p.value
	}

	mean := computeMean(values)
	std := computeStddev(values, mean)
	if std == 0 {
		return nil
	}
	p95 := computePercentile(sortedCopy(values), 0.95)

	var findings []domain.AnomalyFinding
	for _, p := range priced {
		z := math.Abs(p.value-mean) / std
		if z <= cfg.PriceAnomalyThreshold {
			continue
		}

		impact := p.value - mean
		findings = append(findings, domain.AnomalyFinding{
			ID:         idhash.FindingID(string(domain.AnomalyPriceOutlier), p.rec.ID),
			Type:       domain.AnomalyPriceOutlier,
			Severity:   math.Min(z/5, 1),
			Confidence: math.Min(z/3, 1),
			Description: fmt.Sprintf("contract %s value %.2f deviates %.1f standard deviations from the batch mean",
				p.rec.ID, p.value, z),
			Explanation: "the contract value is a statistical outlier against comparable records in the analysis window",
			Evidence: map[string]any{
				"z_score":       z,
				"mean":          mean,
				"std_dev":       std,
				"percentile_95": p95,
				"value":         p.value,
			},
			Recommendations: RecommendationsFor(domain.AnomalyPriceOutlier),
			Entities:        recordEntities(p.rec),
			FinancialImpact: &impact,
		})
	}
	return findings
}

// recordEntities builds the entity references for a single-record finding.
func recordEntities(r *domain.Record) []domain.EntityRef {
	entities := []domain.EntityRef{{Kind: "record", Key: r.ID}}
	if r.OrgCode != "" {
		entities = append(entities, domain.EntityRef{Kind: "organization", Key: r.OrgCode})
	}
	if key := r.VendorKey(); key != "" {
		entities = append(entities, domain.EntityRef{Kind: "supplier", Key: key, Name: r.SupplierName})
	}
	return entities
}
