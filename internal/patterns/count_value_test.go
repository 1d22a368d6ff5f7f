package patterns

import (
	"fmt"
	"testing"
	"time"

	"procwatch/internal/domain"
)

func TestCountValueCorrelation_Positive(t *testing.T) {
	var records []*domain.Record
	// Month m carries m contracts averaging 100*m
	for month := 1; month <= 4; month++ {
		for i := 0; i < month; i++ {
			id := fmt.Sprintf("c-%d-%d", month, i)
			records = append(records, contract(id, float64(100*month), onDay(2023, time.Month(month), 5), "ORG", "v"))
		}
	}

	findings := CountValueCorrelation(records, domain.DefaultAnalysisConfig())

	if len(findings) != 1 {
		t.Fatalf("expected one correlation finding, got %d", len(findings))
	}
	f := findings[0]
	if f.CorrelationStrength == nil || *f.CorrelationStrength < 0.99 {
		t.Errorf("a perfect ramp must correlate near 1.0, got %v", f.CorrelationStrength)
	}
	if r := f.Evidence["correlation"].(float64); r <= 0 {
		t.Errorf("expected positive correlation, got %f", r)
	}
}

func TestCountValueCorrelation_Negative(t *testing.T) {
	var records []*domain.Record
	for month := 1; month <= 4; month++ {
		for i := 0; i < month; i++ {
			id := fmt.Sprintf("c-%d-%d", month, i)
			records = append(records, contract(id, float64(100*(5-month)), onDay(2023, time.Month(month), 5), "ORG", "v"))
		}
	}

	findings := CountValueCorrelation(records, domain.DefaultAnalysisConfig())

	if len(findings) != 1 {
		t.Fatalf("expected one correlation finding, got %d", len(findings))
	}
	if r := findings[0].Evidence["correlation"].(float64); r >= 0 {
		t.Errorf("expected negative correlation, got %f", r)
	}
}

func TestCountValueCorrelation_TooFewCells(t *testing.T) {
	records := []*domain.Record{
		contract("a", 100, onDay(2023, time.January, 5), "ORG", "v"),
		contract("b", 200, onDay(2023, time.February, 5), "ORG", "v"),
	}

	if got := CountValueCorrelation(records, domain.DefaultAnalysisConfig()); got != nil {
		t.Errorf("two organization-months must not correlate, got %+v", got)
	}
}

func TestCountValueCorrelation_WeakLinkIsQuiet(t *testing.T) {
	// Counts vary, averages stay flat: r is 0 or NaN
	var records []*domain.Record
	for month := 1; month <= 4; month++ {
		for i := 0; i < month; i++ {
			id := fmt.Sprintf("c-%d-%d", month, i)
			records = append(records, contract(id, 500, onDay(2023, time.Month(month), 5), "ORG", "v"))
		}
	}

	if got := CountValueCorrelation(records, domain.DefaultAnalysisConfig()); got != nil {
		t.Errorf("flat averages must not flag, got %+v", got)
	}
}
