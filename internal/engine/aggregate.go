package engine

import (
	"math"
	"sort"

	"procwatch/internal/domain"
)

// Severity buckets for the summary.
const (
	highSeverityFloor   = 0.7
	mediumSeverityFloor = 0.3
)

// SortAnomalies orders findings by severity descending. The sort is stable,
// so equal severities keep their insertion order.
func SortAnomalies(findings []domain.AnomalyFinding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Severity > findings[j].Severity
	})
}

// SortPatterns orders findings by significance descending, stable.
func SortPatterns(findings []domain.PatternFinding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Significance > findings[j].Significance
	})
}

// BuildSummary computes the aggregate statistics over one analysis run.
// Suspicious value is the sum of absolute financial impact across findings
// that carry one.
func BuildSummary(records []*domain.Record, anomalies []domain.AnomalyFinding, patternFindings []domain.PatternFinding) domain.Summary {
	s := domain.Summary{
		TotalRecords:    len(records),
		AnomaliesByType: make(map[domain.AnomalyType]int),
		PatternsByType:  make(map[domain.PatternFindingType]int),
	}

	for _, r := range records {
		if r.HasValue() {
			s.TotalValue += *r.Value
		}
	}

	for _, f := range anomalies {
		s.AnomaliesByType[f.Type]++
		if f.FinancialImpact != nil {
			s.SuspiciousValue += math.Abs(*f.FinancialImpact)
		}
		switch {
		case f.Severity > highSeverityFloor:
			s.HighSeverity++
		case f.Severity > mediumSeverityFloor:
			s.MediumSeverity++
		default:
			s.LowSeverity++
		}
	}

	for _, f := range patternFindings {
		s.PatternsByType[f.Type]++
	}
	return s
}
