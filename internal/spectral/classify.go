package spectral

import (
	"fmt"
	"sort"

	"procwatch/internal/domain"
)

// minPatternAmplitude is the relative amplitude below which a band peak is
// not reported.
const minPatternAmplitude = 0.05

// seasonalAmplitude is the relative amplitude above which a seasonal-band
// peak is classified "seasonal" rather than "cyclical".
const seasonalAmplitude = 0.2

// band is one fixed period range scanned by the classifier.
type band struct {
	name           string
	minPeriod      float64 // days
	maxPeriod      float64 // days
	interpretation string
}

// bands is the closed scan list. The "suspicious" very-high-frequency band
// covers 2-5 day cycles, too fast for any legitimate procurement calendar.
var bands = []band{
	{"daily", 1, 2, "day-to-day repetition in spending"},
	{"suspicious", 2, 5, "repetition every %d days, faster than any routine procurement calendar"},
	{"weekly", 6, 8, "weekly spending cycle, consistent with payment batching"},
	{"biweekly", 13, 16, "biweekly spending cycle"},
	{"monthly", 28, 32, "monthly spending cycle, consistent with payroll or recurring supply"},
	{"quarterly", 85, 97, "quarterly spending cycle, consistent with budget releases"},
	{"semester", 175, 190, "semester spending cycle"},
	{"annual", 350, 380, "annual spending cycle, consistent with fiscal-year planning"},
}

// seasonalSet names the bands eligible for the "seasonal" classification.
var seasonalSet = map[string]bool{
	"weekly": true, "monthly": true, "quarterly": true, "annual": true,
}

// ClassifyPatterns scans the fixed bands over computed spectral features
// and returns typed periodic patterns sorted by amplitude descending.
func ClassifyPatterns(f *domain.SpectralFeatures) []domain.PeriodicPattern {
	power, freqs := f.PowerSpectrum, f.Frequencies
	totalPower := 0.0
	for _, p := range power {
		totalPower += p
	}
	if totalPower == 0 {
		return nil
	}

	var patterns []domain.PeriodicPattern
	for _, b := range bands {
		loFreq, hiFreq := 1/b.maxPeriod, 1/b.minPeriod

		peakIdx := -1
		peakPower := 0.0
		bandSum := 0.0
		bandCount := 0
		for i, fr := range freqs {
			if fr < loFreq || fr > hiFreq || fr == 0 {
				continue
			}
			bandSum += power[i]
			bandCount++
			if power[i] > peakPower {
				peakPower = power[i]
				peakIdx = i
			}
		}
		if peakIdx < 0 {
			continue
		}

		amplitude := peakPower / totalPower
		if amplitude < minPatternAmplitude {
			continue
		}

		meanBand := bandSum / float64(bandCount)
		confidence := 0.0
		if meanBand > 0 {
			confidence = domain.Clamp01((peakPower - meanBand) / meanBand / 3)
		}

		period := 1 / freqs[peakIdx]
		patterns = append(patterns, domain.PeriodicPattern{
			EntityKey:      f.EntityKey,
			Band:           b.name,
			PeriodDays:     period,
			Frequency:      freqs[peakIdx],
			Amplitude:      domain.Clamp01(amplitude),
			Confidence:     confidence,
			Significance:   confidence,
			Type:           classifyBand(b.name, period, amplitude),
			Interpretation: interpret(b, period),
		})
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Amplitude > patterns[j].Amplitude
	})
	return patterns
}

// classifyBand applies the typing rules: the suspicious band (or any
// period under 3 days) is "suspicious"; seasonal-set bands are "seasonal"
// above the amplitude floor, else "cyclical"; everything else "irregular".
func classifyBand(name string, period, amplitude float64) domain.PeriodicPatternType {
	if name == "suspicious" || period < 3 {
		return domain.PeriodicSuspicious
	}
	if seasonalSet[name] {
		if amplitude > seasonalAmplitude {
			return domain.PeriodicSeasonal
		}
		return domain.PeriodicCyclical
	}
	return domain.PeriodicIrregular
}

// interpret renders the band's interpretation template.
func interpret(b band, period float64) string {
	if b.name == "suspicious" {
		return fmt.Sprintf(b.interpretation, int(period+0.5))
	}
	return b.interpretation
}
