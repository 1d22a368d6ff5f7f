package engine

import (
	"sort"

	"procwatch/internal/domain"
	"procwatch/internal/spectral"
)

// Cross-spectral comparison is pairwise, so the candidate set needs a hard
// bound. Admission requires a minimum record count and enough series points
// for the comparator, then keeps the busiest organizations.
const (
	minCrossRecords  = 30
	maxCrossEntities = 10
)

// admitCrossSpectral selects the organizations eligible for pairwise
// comparison: at least minCrossRecords records, at least
// spectral.MinAlignedPoints series points, capped to the maxCrossEntities
// busiest. Ties break on organization code so admission is deterministic.
func admitCrossSpectral(records []*domain.Record, byOrg map[string]*domain.Series) []string {
	counts := make(map[string]int)
	for _, r := range records {
		if r.OrgCode != "" {
			counts[r.OrgCode]++
		}
	}

	var admitted []string
	for org, series := range byOrg {
		if counts[org] < minCrossRecords {
			continue
		}
		if series.Len() < spectral.MinAlignedPoints {
			continue
		}
		admitted = append(admitted, org)
	}

	sort.Slice(admitted, func(i, j int) bool {
		if counts[admitted[i]] != counts[admitted[j]] {
			return counts[admitted[i]] > counts[admitted[j]]
		}
		return admitted[i] < admitted[j]
	})
	if len(admitted) > maxCrossEntities {
		admitted = admitted[:maxCrossEntities]
	}
	return admitted
}
