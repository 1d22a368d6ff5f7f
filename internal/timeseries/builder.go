// Package timeseries aggregates procurement records into per-day series
// for the spectral engine.
package timeseries

import (
	"sort"
	"time"

	"procwatch/internal/domain"
)

// BuildDaily sums record values per calendar day and returns the series
// ordered by date. Records without a resolved date are dropped, not
// zero-filled; records without a value still count toward Count.
// Minimum-length requirements are enforced by the caller, not here.
func BuildDaily(entityKey string, records []*domain.Record) *domain.Series {
	type dayAgg struct {
		value     float64
		count     int
		suppliers map[string]struct{}
	}

	byDay := make(map[time.Time]*dayAgg)
	for _, r := range records {
		if !r.HasDate() {
			continue
		}
		day := *r.SignedAt
		agg, ok := byDay[day]
		if !ok {
			agg = &dayAgg{suppliers: make(map[string]struct{})}
			byDay[day] = agg
		}
		if r.HasValue() {
			agg.value += *r.Value
		}
		agg.count++
		if key := r.VendorKey(); key != "" {
			agg.suppliers[key] = struct{}{}
		}
	}

	points := make([]domain.TimeSeriesPoint, 0, len(byDay))
	for day, agg := range byDay {
		points = append(points, domain.TimeSeriesPoint{
			Date:          day,
			Value:         agg.value,
			Count:         agg.count,
			SupplierCount: len(agg.suppliers),
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	return &domain.Series{EntityKey: entityKey, Points: points}
}

// BuildDailyByOrg partitions records by organization code and builds one
// daily series per organization. Records without an organization code are
// skipped: there is no entity to attribute a series to.
func BuildDailyByOrg(records []*domain.Record) map[string]*domain.Series {
	byOrg := make(map[string][]*domain.Record)
	for _, r := range records {
		if r.OrgCode == "" {
			continue
		}
		byOrg[r.OrgCode] = append(byOrg[r.OrgCode], r)
	}

	series := make(map[string]*domain.Series, len(byOrg))
	for org, recs := range byOrg {
		series[org] = BuildDaily(org, recs)
	}
	return series
}

// AlignOnUnion projects two series onto the union of their dates, filling
// missing days with 0. Both output slices share the same date axis, which
// is also returned (sorted ascending).
func AlignOnUnion(a, b *domain.Series) (dates []time.Time, valuesA, valuesB []float64) {
	set := make(map[time.Time]struct{})
	mapA := make(map[time.Time]float64, len(a.Points))
	for _, p := range a.Points {
		set[p.Date] = struct{}{}
		mapA[p.Date] = p.Value
	}
	mapB := make(map[time.Time]float64, len(b.Points))
	for _, p := range b.Points {
		set[p.Date] = struct{}{}
		mapB[p.Date] = p.Value
	}

	dates = make([]time.Time, 0, len(set))
	for d := range set {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	valuesA = make([]float64, len(dates))
	valuesB = make([]float64, len(dates))
	for i, d := range dates {
		valuesA[i] = mapA[d] // zero when missing
		valuesB[i] = mapB[d]
	}
	return dates, valuesA, valuesB
}
