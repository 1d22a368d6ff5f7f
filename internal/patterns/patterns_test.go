package patterns

import (
	"fmt"
	"testing"
	"time"

	"procwatch/internal/domain"
)

func contract(id string, value float64, signed time.Time, org, supplier string) *domain.Record {
	v := value
	d := signed
	return &domain.Record{
		ID:           id,
		Value:        &v,
		SignedAt:     &d,
		OrgCode:      org,
		SupplierName: supplier,
		SupplierID:   supplier,
	}
}

func onDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMethodScoresInRange(t *testing.T) {
	var records []*domain.Record
	for month := 1; month <= 12; month++ {
		for i := 0; i < 4; i++ {
			org := fmt.Sprintf("ORG-%d", i%3)
			supplier := fmt.Sprintf("vendor-%d", (month+i)%5)
			value := float64(1000 * month * (i + 1))
			id := fmt.Sprintf("c-%d-%d", month, i)
			records = append(records, contract(id, value, onDay(2023, time.Month(month), 10), org, supplier))
		}
	}

	cfg := domain.DefaultAnalysisConfig()
	for _, m := range All {
		for _, f := range m.Run(records, cfg) {
			if f.Significance < 0 || f.Significance > 1 {
				t.Errorf("%s: significance out of range: %f", m.Name, f.Significance)
			}
			if f.Confidence < 0 || f.Confidence > 1 {
				t.Errorf("%s: confidence out of range: %f", m.Name, f.Confidence)
			}
			if f.ID == "" {
				t.Errorf("%s: finding without an id", m.Name)
			}
			if f.CorrelationStrength != nil && (*f.CorrelationStrength < 0 || *f.CorrelationStrength > 1) {
				t.Errorf("%s: correlation strength out of range: %f", m.Name, *f.CorrelationStrength)
			}
		}
	}
}

func TestMethodsAreDeterministic(t *testing.T) {
	var records []*domain.Record
	for month := 1; month <= 6; month++ {
		for i := 0; i < 6; i++ {
			org := fmt.Sprintf("ORG-%d", i%4)
			supplier := fmt.Sprintf("vendor-%d", i%2)
			id := fmt.Sprintf("c-%d-%d", month, i)
			records = append(records, contract(id, float64(5000*(i+1)), onDay(2023, time.Month(month), 5), org, supplier))
		}
	}

	cfg := domain.DefaultAnalysisConfig()
	for _, m := range All {
		first := m.Run(records, cfg)
		second := m.Run(records, cfg)
		if len(first) != len(second) {
			t.Fatalf("%s: run lengths differ: %d vs %d", m.Name, len(first), len(second))
		}
		for i := range first {
			if first[i].ID != second[i].ID {
				t.Errorf("%s: finding order or id differs at %d: %s vs %s",
					m.Name, i, first[i].ID, second[i].ID)
			}
		}
	}
}
