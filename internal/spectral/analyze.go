package spectral

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"procwatch/internal/domain"
)

// MinSeriesPoints is the shortest regularized series the spectral engine
// accepts; anything shorter short-circuits as insufficient data.
const MinSeriesPoints = 20

// maxDominantFrequencies caps the dominant-frequency list.
const maxDominantFrequencies = 10

// peakHeightSigma is the sigma multiplier for the dominant-peak height
// threshold (mean + sigma*std of the power spectrum).
const peakHeightSigma = 2.0

// seasonalBands maps named seasonal components to their period in days.
var seasonalBands = map[string]float64{
	"weekly":    7,
	"monthly":   30,
	"quarterly": 91,
	"biannual":  182,
	"annual":    365,
}

// seasonalBandNames fixes the iteration order over seasonalBands.
var seasonalBandNames = []string{"weekly", "monthly", "quarterly", "biannual", "annual"}

// Analyzer computes spectral features for daily series.
type Analyzer struct {
	cfg domain.AnalysisConfig
}

// NewAnalyzer creates an Analyzer with the given configuration.
func NewAnalyzer(cfg domain.AnalysisConfig) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze runs the full spectral pipeline on one entity's series.
// Returns (nil, false) when the series is too short for spectral work;
// that is insufficient data, not an error.
func (a *Analyzer) Analyze(s *domain.Series) (*domain.SpectralFeatures, bool) {
	raw := Regularize(s)
	if len(raw) < MinSeriesPoints {
		return nil, false
	}

	prepared := Preprocess(raw)

	fft := fourier.NewFFT(len(prepared))
	coeffs := fft.Coefficients(nil, prepared)

	power := make([]float64, len(coeffs))
	freqs := make([]float64, len(coeffs))
	totalPower := 0.0
	for i, c := range coeffs {
		power[i] = real(c)*real(c) + imag(c)*imag(c)
		freqs[i] = fft.Freq(i) * a.cfg.SamplingFrequency
		totalPower += power[i]
	}

	features := &domain.SpectralFeatures{
		EntityKey:     s.EntityKey,
		PowerSpectrum: power,
		Frequencies:   freqs,
	}

	// Dominant peaks: height over mean + 2*std, 5 bins apart, top 10
	mean, std := meanStd(power)
	peakIdx := findPeaks(power, mean+peakHeightSigma*std, minPeakSeparation)
	if len(peakIdx) > maxDominantFrequencies {
		peakIdx = peakIdx[:maxDominantFrequencies]
	}
	for _, i := range peakIdx {
		if freqs[i] <= 0 {
			continue
		}
		features.DominantFrequencies = append(features.DominantFrequencies, freqs[i])
		features.DominantPeriods = append(features.DominantPeriods, 1/freqs[i])
	}

	// Peaks restricted to the configured band range
	lo, hi := 1/a.cfg.MaxPeriodDays, 1/a.cfg.MinPeriodDays
	for _, i := range peakIdx {
		if freqs[i] >= lo && freqs[i] <= hi {
			features.PeakFrequencies = append(features.PeakFrequencies, freqs[i])
		}
	}

	features.SpectralEntropy = spectralEntropy(power)
	features.SeasonalComponents = seasonalComponents(power, freqs, totalPower)

	// Trend and residual on the regularized (gap-filled, unwindowed) signal
	filled := make([]float64, len(raw))
	copy(filled, raw)
	interpolateGaps(filled)
	fillWithMedian(filled)

	window := len(filled) / 4
	if window > 30 {
		window = 30
	}
	features.Trend = MovingAverage(filled, window)
	features.Residual = make([]float64, len(filled))
	for i := range filled {
		features.Residual[i] = filled[i] - features.Trend[i]
	}

	features.AnomalyScore = a.anomalyScore(features.SpectralEntropy, power, freqs, totalPower)

	return features, true
}

// anomalyScore is the composite regularity score:
// 0.4*(1-entropy) + 0.3*highFreqRatio + 0.3*peakRatio, clamped to [0,1].
// "High frequency" uniformly means above 1/MinPeriodDays.
func (a *Analyzer) anomalyScore(entropy float64, power, freqs []float64, totalPower float64) float64 {
	if totalPower == 0 {
		return 0
	}

	cutoff := 1 / a.cfg.MinPeriodDays
	highFreqPower := 0.0
	peakPower := 0.0
	for i, p := range power {
		if freqs[i] > cutoff {
			highFreqPower += p
		}
		if i > 0 && p > peakPower {
			peakPower = p
		}
	}

	score := 0.4*(1-entropy) + 0.3*(highFreqPower/totalPower) + 0.3*(peakPower/totalPower)
	return domain.Clamp01(score)
}

// spectralEntropy is the Shannon entropy (bits) of the power spectrum
// normalized to a probability distribution, divided by log2 of the number
// of nonzero bins. Degenerate spectra (<=1 nonzero bin) score 0.
func spectralEntropy(power []float64) float64 {
	total := 0.0
	nonzero := 0
	for _, p := range power {
		if p > 0 {
			total += p
			nonzero++
		}
	}
	if nonzero <= 1 || total == 0 {
		return 0
	}

	entropy := 0.0
	for _, p := range power {
		if p <= 0 {
			continue
		}
		prob := p / total
		entropy -= prob * math.Log2(prob)
	}
	return domain.Clamp01(entropy / math.Log2(float64(nonzero)))
}

// seasonalComponents measures relative power around each named seasonal
// frequency: the mean power in a +-2 bin window around the closest bin,
// divided by the mean total power.
func seasonalComponents(power, freqs []float64, totalPower float64) map[string]float64 {
	components := make(map[string]float64, len(seasonalBandNames))
	if totalPower == 0 || len(power) == 0 {
		for _, name := range seasonalBandNames {
			components[name] = 0
		}
		return components
	}

	meanPower := totalPower / float64(len(power))
	for _, name := range seasonalBandNames {
		target := 1 / seasonalBands[name]
		idx := closestBin(freqs, target)

		lo, hi := idx-2, idx+2
		if lo < 0 {
			lo = 0
		}
		if hi >= len(power) {
			hi = len(power) - 1
		}
		sum := 0.0
		for i := lo; i <= hi; i++ {
			sum += power[i]
		}
		band := sum / float64(hi-lo+1)

		if meanPower == 0 {
			components[name] = 0
			continue
		}
		components[name] = domain.Clamp01(band / meanPower)
	}
	return components
}

// closestBin returns the index of the frequency bin nearest to target.
func closestBin(freqs []float64, target float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, f := range freqs {
		if d := math.Abs(f - target); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// meanStd computes mean and population standard deviation.
func meanStd(values []float64) (float64, float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return mean, math.Sqrt(sumSq / float64(n))
}
