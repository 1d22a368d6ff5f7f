package domain

// SpectralFeatures holds the frequency-domain decomposition of one entity's
// daily series. Computed fresh per analysis call and never mutated after.
// All frequencies are in cycles per day (daily sampling, Fs = 1.0).
type SpectralFeatures struct {
	EntityKey string

	// DominantFrequencies are spectrum peaks ordered by power descending.
	DominantFrequencies []float64
	// DominantPeriods are the corresponding periods in days (1/f).
	DominantPeriods []float64

	// SpectralEntropy is the normalized Shannon entropy of the power
	// spectrum, in [0,1]. Lower means a more regular, concentrated spectrum.
	SpectralEntropy float64

	// PowerSpectrum is |FFT|^2 per frequency bin; Frequencies is the axis.
	PowerSpectrum []float64
	Frequencies   []float64

	// PeakFrequencies are peaks restricted to the configured
	// [1/MaxPeriodDays, 1/MinPeriodDays] band.
	PeakFrequencies []float64

	// SeasonalComponents maps named bands (weekly, monthly, quarterly,
	// biannual, annual) to relative band power in [0,1].
	SeasonalComponents map[string]float64

	// AnomalyScore is the composite regularity score in [0,1].
	AnomalyScore float64

	// Trend is the moving-average trend component; Residual is signal-trend.
	Trend    []float64
	Residual []float64
}

// PeriodicPatternType classifies a detected periodic pattern.
type PeriodicPatternType string

const (
	PeriodicSeasonal   PeriodicPatternType = "seasonal"
	PeriodicCyclical   PeriodicPatternType = "cyclical"
	PeriodicSuspicious PeriodicPatternType = "suspicious"
	PeriodicIrregular  PeriodicPatternType = "irregular"
)

// PeriodicPattern is one typed periodic pattern found in a series spectrum.
type PeriodicPattern struct {
	EntityKey      string
	Band           string  // band name (daily, weekly, monthly, ...)
	PeriodDays     float64 // period in days
	Frequency      float64 // cycles per day
	Amplitude      float64 // relative amplitude in [0,1]
	Confidence     float64 // in [0,1]
	Type           PeriodicPatternType
	Interpretation string
	// Significance mirrors Confidence; kept separate so consumers can rank
	// patterns and anomalies uniformly.
	Significance float64
}

// CrossSpectralResult measures synchronization between two entities' series.
type CrossSpectralResult struct {
	EntityA string
	EntityB string

	// Correlation is the Pearson coefficient of the aligned series, [-1,1].
	Correlation float64

	// Coherence and Phase are per-frequency spectra over the shared axis.
	Coherence   []float64
	Phase       []float64
	Frequencies []float64

	// CorrelatedPeriods are periods (days) whose coherence exceeds 0.7.
	CorrelatedPeriods []float64

	MaxCoherence  float64 // in [0,1]
	MeanCoherence float64 // in [0,1]

	// SyncScore is coherence averaged under an exponentially decaying
	// low-frequency-favoring window, in [0,1].
	SyncScore float64

	Interpretation string
}
