package engine

import (
	"fmt"
	"testing"
	"time"

	"procwatch/internal/domain"
	"procwatch/internal/timeseries"
)

func busyOrg(org string, days int) []*domain.Record {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	var records []*domain.Record
	for d := 0; d < days; d++ {
		records = append(records, contract(fmt.Sprintf("%s-%d", org, d), 1000, start.AddDate(0, 0, d), org, "v"))
	}
	return records
}

func TestAdmitCrossSpectral_Floors(t *testing.T) {
	var records []*domain.Record
	records = append(records, busyOrg("ORG-BUSY", 40)...)
	records = append(records, busyOrg("ORG-THIN", 10)...)

	byOrg := timeseries.BuildDailyByOrg(records)
	admitted := admitCrossSpectral(records, byOrg)

	if len(admitted) != 1 || admitted[0] != "ORG-BUSY" {
		t.Errorf("only the 40-record org qualifies, got %v", admitted)
	}
}

func TestAdmitCrossSpectral_CapsAndOrders(t *testing.T) {
	var records []*domain.Record
	for i := 0; i < 12; i++ {
		org := fmt.Sprintf("ORG-%02d", i)
		records = append(records, busyOrg(org, 30+i)...)
	}

	byOrg := timeseries.BuildDailyByOrg(records)
	admitted := admitCrossSpectral(records, byOrg)

	if len(admitted) != maxCrossEntities {
		t.Fatalf("expected cap of %d, got %d", maxCrossEntities, len(admitted))
	}
	// Busiest first: ORG-11 has 41 records
	if admitted[0] != "ORG-11" {
		t.Errorf("expected busiest org first, got %s", admitted[0])
	}
	// The two thinnest (30, 31 records) fall off the cap
	for _, org := range admitted {
		if org == "ORG-00" || org == "ORG-01" {
			t.Errorf("org %s should have been capped out", org)
		}
	}
}

func TestAdmitCrossSpectral_TieBreaksOnCode(t *testing.T) {
	var records []*domain.Record
	records = append(records, busyOrg("ORG-B", 35)...)
	records = append(records, busyOrg("ORG-A", 35)...)

	byOrg := timeseries.BuildDailyByOrg(records)
	admitted := admitCrossSpectral(records, byOrg)

	if len(admitted) != 2 || admitted[0] != "ORG-A" || admitted[1] != "ORG-B" {
		t.Errorf("equal counts must order by code, got %v", admitted)
	}
}
