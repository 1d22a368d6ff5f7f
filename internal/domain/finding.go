package domain

// AnomalyType tags a statistical anomaly finding.
type AnomalyType string

// Closed set of anomaly types. Detectors are enumerated statically
// (internal/detect); no string-keyed dispatch exists anywhere.
const (
	AnomalyPriceOutlier        AnomalyType = "price_outlier"
	AnomalyVendorConcentration AnomalyType = "vendor_concentration"
	AnomalyTemporalBurst       AnomalyType = "temporal_burst"
	AnomalyNearDuplicate       AnomalyType = "near_duplicate"
	AnomalyPaymentDiscrepancy  AnomalyType = "payment_discrepancy"
	AnomalySpectralPattern     AnomalyType = "spectral_pattern"
	AnomalySynchronizedSpend   AnomalyType = "synchronized_spend"
)

// PatternFindingType tags a higher-level pattern finding.
type PatternFindingType string

// Closed set of pattern finding types.
const (
	PatternSpendingTrend     PatternFindingType = "spending_trend"
	PatternOrgDeviationHigh  PatternFindingType = "org_deviation_high_value"
	PatternOrgDeviationLow   PatternFindingType = "org_deviation_low_value"
	PatternMultiOrgVendor    PatternFindingType = "multi_org_vendor"
	PatternSeasonalRush      PatternFindingType = "seasonal_rush"
	PatternValueDistribution PatternFindingType = "value_concentration"
	PatternCountValueLink    PatternFindingType = "count_value_correlation"
	PatternEfficiencyOutlier PatternFindingType = "efficiency_outlier"
)

// EntityRef is a lightweight reference to an entity implicated in a finding.
type EntityRef struct {
	Kind string `json:"kind"` // "organization" | "supplier" | "record"
	Key  string `json:"key"`  // org code, vendor key, or record id
	Name string `json:"name,omitempty"`
}

// AnomalyFinding is one detector result. Severity and Confidence are
// clamped to [0,1] at the point of computation; consumers must not re-clamp.
type AnomalyFinding struct {
	ID              string         `json:"id"`
	Type            AnomalyType    `json:"type"`
	Severity        float64        `json:"severity"`
	Confidence      float64        `json:"confidence"`
	Description     string         `json:"description"`
	Explanation     string         `json:"explanation,omitempty"`
	Evidence        map[string]any `json:"evidence,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
	Entities        []EntityRef    `json:"entities,omitempty"`
	FinancialImpact *float64       `json:"financial_impact,omitempty"`
}

// TrendDirection classifies a detected linear trend.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// PatternFinding is one analyzer result. Significance and Confidence are
// clamped to [0,1]; CorrelationStrength, when set, is in [0,1].
type PatternFinding struct {
	ID                  string             `json:"id"`
	Type                PatternFindingType `json:"type"`
	Significance        float64            `json:"significance"`
	Confidence          float64            `json:"confidence"`
	Insights            []string           `json:"insights,omitempty"`
	Evidence            map[string]any     `json:"evidence,omitempty"`
	Recommendations     []string           `json:"recommendations,omitempty"`
	Entities            []EntityRef        `json:"entities,omitempty"`
	Trend               TrendDirection     `json:"trend,omitempty"`
	CorrelationStrength *float64           `json:"correlation_strength,omitempty"`
}

// Summary carries aggregate statistics over one analysis run.
type Summary struct {
	TotalRecords    int                        `json:"total_records"`
	TotalValue      float64                    `json:"total_value"`
	SuspiciousValue float64                    `json:"suspicious_value"`
	HighSeverity    int                        `json:"high_severity"`   // severity > 0.7
	MediumSeverity  int                        `json:"medium_severity"` // 0.3 < severity <= 0.7
	LowSeverity     int                        `json:"low_severity"`    // severity <= 0.3
	AnomaliesByType map[AnomalyType]int        `json:"anomalies_by_type"`
	PatternsByType  map[PatternFindingType]int `json:"patterns_by_type"`
}

// Clamp01 clamps v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
