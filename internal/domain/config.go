package domain

// AnalysisConfig carries every detector and spectral threshold explicitly.
// Thresholds are compared with strict > throughout: a value at exactly the
// threshold is not flagged.
type AnalysisConfig struct {
	// PriceAnomalyThreshold is the z-score (sigma) above which a record
	// value is an outlier.
	PriceAnomalyThreshold float64

	// ConcentrationThreshold is the share of total value above which a
	// single vendor is flagged.
	ConcentrationThreshold float64

	// DuplicateSimilarityThreshold is the Jaccard similarity above which
	// two descriptions are near-duplicates.
	DuplicateSimilarityThreshold float64

	// CorrelationThreshold gates the count-vs-value correlation finding.
	CorrelationThreshold float64

	// MinPeriodDays / MaxPeriodDays bound the spectral band of interest.
	// 1/MinPeriodDays is also the single high-frequency cutoff used by the
	// composite anomaly score.
	MinPeriodDays float64
	MaxPeriodDays float64

	// AnomalyScoreThreshold is the sigma used to promote an organization's
	// composite spectral score into a finding: the score must stand out
	// from its peer organizations by more than this many standard
	// deviations, unless it already clears the absolute 0.7 floor.
	// Spectrum peak finding uses a fixed mean + 2*std height threshold.
	AnomalyScoreThreshold float64

	// SamplingFrequency in samples per day. Daily series use 1.0.
	SamplingFrequency float64
}

// DefaultAnalysisConfig returns the documented defaults.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		PriceAnomalyThreshold:        2.5,
		ConcentrationThreshold:       0.7,
		DuplicateSimilarityThreshold: 0.85,
		CorrelationThreshold:         0.3,
		MinPeriodDays:                7,
		MaxPeriodDays:                365,
		AnomalyScoreThreshold:        2.5,
		SamplingFrequency:            1.0,
	}
}
