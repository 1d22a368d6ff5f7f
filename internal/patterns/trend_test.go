package patterns

import (
	"fmt"
	"testing"
	"time"

	"procwatch/internal/domain"
)

func TestSpendingTrend_Increasing(t *testing.T) {
	var records []*domain.Record
	for month := 1; month <= 6; month++ {
		id := fmt.Sprintf("c-%d", month)
		records = append(records, contract(id, float64(10000*month), onDay(2023, time.Month(month), 15), "ORG", "v"))
	}

	findings := SpendingTrend(records, domain.DefaultAnalysisConfig())

	if len(findings) != 1 {
		t.Fatalf("expected one trend finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Trend != domain.TrendIncreasing {
		t.Errorf("expected increasing trend, got %s", f.Trend)
	}
	if f.CorrelationStrength == nil || *f.CorrelationStrength <= 0.5 {
		t.Errorf("a linear ramp must correlate strongly, got %v", f.CorrelationStrength)
	}
}

func TestSpendingTrend_Decreasing(t *testing.T) {
	var records []*domain.Record
	for month := 1; month <= 6; month++ {
		id := fmt.Sprintf("c-%d", month)
		records = append(records, contract(id, float64(10000*(7-month)), onDay(2023, time.Month(month), 15), "ORG", "v"))
	}

	findings := SpendingTrend(records, domain.DefaultAnalysisConfig())

	if len(findings) != 1 || findings[0].Trend != domain.TrendDecreasing {
		t.Fatalf("expected a decreasing trend, got %+v", findings)
	}
}

func TestSpendingTrend_NeedsThreeMonths(t *testing.T) {
	records := []*domain.Record{
		contract("a", 100, onDay(2023, time.January, 1), "ORG", "v"),
		contract("b", 200, onDay(2023, time.February, 1), "ORG", "v"),
	}

	if got := SpendingTrend(records, domain.DefaultAnalysisConfig()); got != nil {
		t.Errorf("two months must not produce a trend, got %+v", got)
	}
}

func TestSpendingTrend_FlatSpendIsQuiet(t *testing.T) {
	var records []*domain.Record
	for month := 1; month <= 6; month++ {
		id := fmt.Sprintf("c-%d", month)
		records = append(records, contract(id, 10000, onDay(2023, time.Month(month), 15), "ORG", "v"))
	}

	if got := SpendingTrend(records, domain.DefaultAnalysisConfig()); got != nil {
		t.Errorf("constant spending has no trend, got %+v", got)
	}
}
