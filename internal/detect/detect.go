// Package detect implements the stateless statistical detectors.
// Each detector is a pure function over an immutable record slice and is
// safe to run in parallel with the others.
package detect

import (
	"procwatch/internal/domain"
)

// Detector is one statistical detector over a record collection.
type Detector struct {
	Name string
	Run  func(records []*domain.Record, cfg domain.AnalysisConfig) []domain.AnomalyFinding
}

// All is the closed set of detectors, in a fixed order. The engine iterates
// this slice; there is no name-keyed dispatch.
var All = []Detector{
	{Name: "price_outlier", Run: PriceOutliers},
	{Name: "vendor_concentration", Run: VendorConcentration},
	{Name: "temporal_burst", Run: TemporalBursts},
	{Name: "near_duplicate", Run: nearDuplicatesByOrg},
	{Name: "payment_discrepancy", Run: PaymentDiscrepancies},
}
