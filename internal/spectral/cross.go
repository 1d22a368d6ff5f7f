package spectral

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"procwatch/internal/domain"
)

// MinAlignedPoints is the shortest aligned pair of series the cross-spectral
// comparison accepts.
const MinAlignedPoints = 20

// coherenceThreshold marks a frequency bin as correlated between entities.
const coherenceThreshold = 0.7

// syncDecayFreq sets the e-folding frequency of the low-frequency weighting
// used by the synchronization score.
const syncDecayFreq = 0.1

// CrossAnalyze measures synchronization between two entities' aligned daily
// value series. The inputs must share one date axis (zero-filled where an
// entity had no spending). Returns (nil, false) when the aligned series are
// too short.
func (a *Analyzer) CrossAnalyze(entityA, entityB string, valuesA, valuesB []float64) (*domain.CrossSpectralResult, bool) {
	n := len(valuesA)
	if n != len(valuesB) || n < MinAlignedPoints {
		return nil, false
	}

	correlation := stat.Correlation(valuesA, valuesB, nil)
	if math.IsNaN(correlation) {
		correlation = 0
	}

	fft := fourier.NewFFT(n)
	coeffsA := fft.Coefficients(nil, append([]float64(nil), valuesA...))
	coeffsB := fft.Coefficients(nil, append([]float64(nil), valuesB...))

	bins := len(coeffsA)
	coherence := make([]float64, bins)
	phase := make([]float64, bins)
	freqs := make([]float64, bins)
	for i := range coeffsA {
		freqs[i] = fft.Freq(i) * a.cfg.SamplingFrequency

		cross := coeffsA[i] * cmplx.Conj(coeffsB[i])
		phase[i] = cmplx.Phase(cross)

		powA := real(coeffsA[i])*real(coeffsA[i]) + imag(coeffsA[i])*imag(coeffsA[i])
		powB := real(coeffsB[i])*real(coeffsB[i]) + imag(coeffsB[i])*imag(coeffsB[i])
		denom := powA * powB
		if denom == 0 {
			coherence[i] = 0
			continue
		}
		crossPow := real(cross)*real(cross) + imag(cross)*imag(cross)
		coherence[i] = domain.Clamp01(crossPow / denom)
	}
	// The zero-frequency bin reflects totals, not shared timing
	coherence[0] = 0

	result := &domain.CrossSpectralResult{
		EntityA:     entityA,
		EntityB:     entityB,
		Correlation: correlation,
		Coherence:   coherence,
		Phase:       phase,
		Frequencies: freqs,
	}

	sum := 0.0
	for i := 1; i < bins; i++ {
		sum += coherence[i]
		if coherence[i] > result.MaxCoherence {
			result.MaxCoherence = coherence[i]
		}
		if coherence[i] > coherenceThreshold && freqs[i] > 0 {
			result.CorrelatedPeriods = append(result.CorrelatedPeriods, 1/freqs[i])
		}
	}
	if bins > 1 {
		result.MeanCoherence = sum / float64(bins-1)
	}
	result.SyncScore = syncScore(coherence, freqs)
	result.Interpretation = interpretSync(result)

	return result, true
}

// syncScore averages coherence under an exponentially decaying weight that
// favors low frequencies, where shared long cycles indicate coordinated
// spending rather than chance alignment. The DC bin is excluded.
func syncScore(coherence, freqs []float64) float64 {
	weightSum := 0.0
	weighted := 0.0
	for i := 1; i < len(coherence); i++ {
		w := math.Exp(-freqs[i] / syncDecayFreq)
		weighted += w * coherence[i]
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	return domain.Clamp01(weighted / weightSum)
}

func interpretSync(r *domain.CrossSpectralResult) string {
	switch {
	case r.SyncScore > 0.7:
		return fmt.Sprintf("spending of %s and %s is strongly synchronized across %d shared cycles", r.EntityA, r.EntityB, len(r.CorrelatedPeriods))
	case r.SyncScore > 0.4:
		return fmt.Sprintf("spending of %s and %s shows moderate synchronization", r.EntityA, r.EntityB)
	default:
		return fmt.Sprintf("spending of %s and %s shows no notable synchronization", r.EntityA, r.EntityB)
	}
}
