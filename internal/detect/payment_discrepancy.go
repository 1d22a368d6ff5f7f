package detect

import (
	"fmt"
	"math"

	"procwatch/internal/domain"
	"procwatch/internal/idhash"
)

// paymentDiscrepancyThreshold is the relative difference between initial
// and global contract value that triggers a finding (strict >).
const paymentDiscrepancyThreshold = 0.5

// PaymentDiscrepancies flags records whose initial and global values
// diverge by more than half of the larger value. Records missing either
// field are skipped.
func PaymentDiscrepancies(records []*domain.Record, _ domain.AnalysisConfig) []domain.AnomalyFinding {
	var findings []domain.AnomalyFinding
	for _, r := range records {
		if r.InitialValue == nil || r.GlobalValue == nil {
			continue
		}
		initial, global := *r.InitialValue, *r.GlobalValue
		larger := math.Max(initial, global)
		if larger == 0 {
			continue
		}

		relDiff := math.Abs(initial-global) / larger
		if relDiff <= paymentDiscrepancyThreshold {
			continue
		}

		delta := math.Abs(initial - global)
		findings = append(findings, domain.AnomalyFinding{
			ID:         idhash.FindingID(string(domain.AnomalyPaymentDiscrepancy), r.ID),
			Type:       domain.AnomalyPaymentDiscrepancy,
			Severity:   relDiff,
			Confidence: relDiff,
			Description: fmt.Sprintf("contract %s global value %.2f diverges %.0f%% from its initial value %.2f",
				r.ID, global, relDiff*100, initial),
			Explanation: "large gaps between initial and global values point to unjustified amendments or registration errors",
			Evidence: map[string]any{
				"initial_value": initial,
				"global_value":  global,
				"relative_diff": relDiff,
			},
			Recommendations: RecommendationsFor(domain.AnomalyPaymentDiscrepancy),
			Entities:        recordEntities(r),
			FinancialImpact: &delta,
		})
	}
	return findings
}
