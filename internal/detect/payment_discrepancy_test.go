package detect

import (
	"testing"

	"procwatch/internal/domain"
)

func withContractValues(initial, global float64) func(*domain.Record) {
	return func(r *domain.Record) {
		i, g := initial, global
		r.InitialValue = &i
		r.GlobalValue = &g
	}
}

func TestPaymentDiscrepancies_FlagsLargeDivergence(t *testing.T) {
	records := []*domain.Record{
		rec("c1", 100_000, withContractValues(100_000, 250_000)), // 60% diff
		rec("c2", 100_000, withContractValues(100_000, 120_000)), // 17% diff
	}

	findings := PaymentDiscrepancies(records, domain.DefaultAnalysisConfig())

	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Evidence["relative_diff"].(float64) != 0.6 {
		t.Errorf("expected relative diff 0.6, got %v", f.Evidence["relative_diff"])
	}
	if f.FinancialImpact == nil || *f.FinancialImpact != 150_000 {
		t.Errorf("expected financial impact 150000, got %v", f.FinancialImpact)
	}
}

func TestPaymentDiscrepancies_MissingFieldSkipped(t *testing.T) {
	initial := 100_000.0
	records := []*domain.Record{
		{ID: "c1", InitialValue: &initial}, // no global value
		{ID: "c2"},
	}

	findings := PaymentDiscrepancies(records, domain.DefaultAnalysisConfig())

	if len(findings) != 0 {
		t.Errorf("records missing either value must be skipped, got %d", len(findings))
	}
}

func TestPaymentDiscrepancies_ZeroValuesGuarded(t *testing.T) {
	records := []*domain.Record{
		rec("c1", 0, withContractValues(0, 0)),
	}

	findings := PaymentDiscrepancies(records, domain.DefaultAnalysisConfig())

	if len(findings) != 0 {
		t.Errorf("zero/zero contract must not divide by zero or flag, got %d", len(findings))
	}
}

func TestDetectorScoresInRange(t *testing.T) {
	// Run every detector over a mixed batch and assert the score invariant
	records := []*domain.Record{
		rec("r1", 100, withSupplier("A", "1"), withDescription("aquisição de material de expediente para secretaria municipal")),
		rec("r2", 120, withSupplier("A", "1"), withDescription("aquisição de material de expediente para secretaria municipal de saúde")),
		rec("r3", 9000, withSupplier("B", "2"), withContractValues(1000, 9000)),
		rec("r4", 95), rec("r5", 105), rec("r6", 98), rec("r7", 101),
		rec("r8", 99), rec("r9", 103), rec("r10", 97),
	}

	cfg := domain.DefaultAnalysisConfig()
	for _, d := range All {
		for _, f := range d.Run(records, cfg) {
			if f.Severity < 0 || f.Severity > 1 {
				t.Errorf("%s: severity out of range: %f", d.Name, f.Severity)
			}
			if f.Confidence < 0 || f.Confidence > 1 {
				t.Errorf("%s: confidence out of range: %f", d.Name, f.Confidence)
			}
			if f.ID == "" {
				t.Errorf("%s: finding without ID", d.Name)
			}
		}
	}
}
