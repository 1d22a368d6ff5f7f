package domain

import "time"

// TimeSeriesPoint is one day of aggregated spend for an entity.
// Invariant: one point per calendar day per entity key; multiple records
// on the same day are summed by the builder.
// Corresponds to daily_series table in ClickHouse.
type TimeSeriesPoint struct {
	Date          time.Time // calendar day, UTC midnight
	Value         float64   // summed record values for the day
	Count         int       // number of records contributing
	SupplierCount int       // distinct suppliers seen that day
}

// Series is an ordered-by-date daily series for one entity.
type Series struct {
	EntityKey string // organization code ("" for the global series)
	Points    []TimeSeriesPoint
}

// Values returns the value column of the series.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Len returns the number of points in the series.
func (s *Series) Len() int {
	return len(s.Points)
}
