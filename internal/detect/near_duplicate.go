package detect

import (
	"fmt"
	"sort"
	"strings"

	"procwatch/internal/domain"
	"procwatch/internal/idhash"
)

// minDescriptionLen is the minimum description length (in bytes) for a
// record to participate in duplicate comparison; shorter texts produce
// meaningless Jaccard scores.
const minDescriptionLen = 20

// nearDuplicatesByOrg runs the pairwise comparison one organization at a
// time, bounding the quadratic cost to the largest bucket. Contracts from
// different organizations are never compared; records without an
// organization form their own bucket. This is the entry registered in All.
func nearDuplicatesByOrg(records []*domain.Record, cfg domain.AnalysisConfig) []domain.AnomalyFinding {
	byOrg := make(map[string][]*domain.Record)
	for _, r := range records {
		byOrg[r.OrgCode] = append(byOrg[r.OrgCode], r)
	}

	orgs := make([]string, 0, len(byOrg))
	for org := range byOrg {
		orgs = append(orgs, org)
	}
	sort.Strings(orgs)

	var findings []domain.AnomalyFinding
	for _, org := range orgs {
		findings = append(findings, NearDuplicates(byOrg[org], cfg)...)
	}
	return findings
}

// NearDuplicates compares description token sets pairwise and flags pairs
// whose Jaccard similarity exceeds cfg.DuplicateSimilarityThreshold
// (strict >). Cost is quadratic in the input, so direct callers cap the
// slice themselves; the engine goes through nearDuplicatesByOrg.
func NearDuplicates(records []*domain.Record, cfg domain.AnalysisConfig) []domain.AnomalyFinding {
	type candidate struct {
		rec    *domain.Record
		tokens map[string]struct{}
	}

	var candidates []candidate
	for _, r := range records {
		if len(r.Description) < minDescriptionLen {
			continue
		}
		candidates = append(candidates, candidate{rec: r, tokens: tokenize(r.Description)})
	}

	var findings []domain.AnomalyFinding
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			a, b := candidates[i], candidates[j]
			sim := jaccard(a.tokens, b.tokens)
			if sim <= cfg.DuplicateSimilarityThreshold {
				continue
			}

			findings = append(findings, domain.AnomalyFinding{
				ID:         idhash.FindingID(string(domain.AnomalyNearDuplicate), a.rec.ID, b.rec.ID),
				Type:       domain.AnomalyNearDuplicate,
				Severity:   sim,
				Confidence: sim,
				Description: fmt.Sprintf("contracts %s and %s have near-identical descriptions (%.0f%% token overlap)",
					a.rec.ID, b.rec.ID, sim*100),
				Explanation: "near-duplicate contract objects can indicate fractioned purchases below bidding thresholds",
				Evidence: map[string]any{
					"similarity": sim,
					"record_a":   a.rec.ID,
					"record_b":   b.rec.ID,
				},
				Recommendations: RecommendationsFor(domain.AnomalyNearDuplicate),
				Entities: []domain.EntityRef{
					{Kind: "record", Key: a.rec.ID},
					{Kind: "record", Key: b.rec.ID},
				},
			})
		}
	}
	return findings
}

// tokenize case-folds and splits a description into its word set.
func tokenize(description string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(description)) {
		tokens[w] = struct{}{}
	}
	return tokens
}

// jaccard computes |intersection| / |union| of two token sets.
// Symmetric by construction; two empty sets score 0.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
