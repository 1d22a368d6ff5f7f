package patterns

import (
	"fmt"
	"testing"
	"time"

	"procwatch/internal/domain"
)

func TestValueConcentration_FlagsDominantBucket(t *testing.T) {
	var records []*domain.Record
	for i := 0; i < 8; i++ {
		records = append(records, contract(fmt.Sprintf("micro-%d", i), 5000, onDay(2023, time.May, 1+i), "ORG", "v"))
	}
	records = append(records,
		contract("small", 50000, onDay(2023, time.May, 20), "ORG", "v"),
		contract("large", 900000, onDay(2023, time.May, 21), "ORG", "v"),
	)

	findings := ValueConcentration(records, domain.DefaultAnalysisConfig())

	if len(findings) != 1 {
		t.Fatalf("expected one concentration finding, got %d", len(findings))
	}
	if findings[0].Evidence["bucket"] != "micro" {
		t.Errorf("expected micro bucket flagged, got %v", findings[0].Evidence["bucket"])
	}
	if findings[0].Significance != 0.8 {
		t.Errorf("expected share 0.8, got %f", findings[0].Significance)
	}
}

func TestValueConcentration_EvenSpreadIsQuiet(t *testing.T) {
	records := []*domain.Record{
		contract("a", 5000, onDay(2023, time.May, 1), "ORG", "v"),
		contract("b", 50000, onDay(2023, time.May, 2), "ORG", "v"),
		contract("c", 300000, onDay(2023, time.May, 3), "ORG", "v"),
		contract("d", 900000, onDay(2023, time.May, 4), "ORG", "v"),
	}

	if got := ValueConcentration(records, domain.DefaultAnalysisConfig()); got != nil {
		t.Errorf("an even spread must not flag, got %+v", got)
	}
}

func TestBucketBoundaries(t *testing.T) {
	cases := []struct {
		value float64
		want  string
	}{
		{7999.99, "micro"},
		{8000, "small"},
		{79999.99, "small"},
		{80000, "medium"},
		{649999.99, "medium"},
		{650000, "large"},
		{2000000, "large"},
	}
	for _, c := range cases {
		if got := bucketFor(c.value); got != c.want {
			t.Errorf("bucketFor(%f) = %s, want %s", c.value, got, c.want)
		}
	}
}
