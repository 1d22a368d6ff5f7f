// Package spectral implements the frequency-domain analysis subsystem:
// series preprocessing, power-spectrum features, periodic pattern
// classification, and cross-entity coherence.
package spectral

import (
	"math"
	"sort"

	"procwatch/internal/domain"
)

// detrendWindow is the centered rolling-mean window used to remove the
// slow trend before the transform.
const detrendWindow = 30

// Regularize projects a daily series onto a contiguous calendar grid.
// Days absent from the series become NaN for the interpolation step.
func Regularize(s *domain.Series) []float64 {
	if s.Len() == 0 {
		return nil
	}

	first := s.Points[0].Date
	last := s.Points[s.Len()-1].Date
	n := int(last.Sub(first).Hours()/24) + 1

	values := make([]float64, n)
	for i := range values {
		values[i] = math.NaN()
	}
	for _, p := range s.Points {
		idx := int(p.Date.Sub(first).Hours() / 24)
		if idx >= 0 && idx < n {
			values[idx] = p.Value
		}
	}
	return values
}

// Preprocess runs the full preprocessing pipeline: interpolate internal
// gaps, median-fill what remains, subtract a centered rolling mean, and
// apply a Hann window against spectral leakage. The input slice is not
// modified.
func Preprocess(values []float64) []float64 {
	x := make([]float64, len(values))
	copy(x, values)

	interpolateGaps(x)
	fillWithMedian(x)
	x = detrend(x, detrendWindow)
	applyHann(x)
	return x
}

// interpolateGaps linearly interpolates internal NaN runs in place.
// Leading and trailing NaNs are left for the median fill.
func interpolateGaps(x []float64) {
	prev := -1 // index of last known value
	for i := 0; i < len(x); i++ {
		if math.IsNaN(x[i]) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			step := (x[i] - x[prev]) / float64(i-prev)
			for j := prev + 1; j < i; j++ {
				x[j] = x[prev] + step*float64(j-prev)
			}
		}
		prev = i
	}
}

// fillWithMedian replaces any remaining NaN with the median of the known
// values. An all-NaN input becomes all zeros.
func fillWithMedian(x []float64) {
	known := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			known = append(known, v)
		}
	}

	med := 0.0
	if len(known) > 0 {
		sort.Float64s(known)
		mid := len(known) / 2
		if len(known)%2 == 1 {
			med = known[mid]
		} else {
			med = (known[mid-1] + known[mid]) / 2
		}
	}

	for i, v := range x {
		if math.IsNaN(v) {
			x[i] = med
		}
	}
}

// detrend subtracts a centered rolling mean of the given window. Edge
// positions, where the window would run off the series, subtract the
// global mean instead.
func detrend(x []float64, window int) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	global := 0.0
	for _, v := range x {
		global += v
	}
	global /= float64(n)

	half := window / 2
	for i := range x {
		lo, hi := i-half, i+half
		if lo < 0 || hi >= n {
			out[i] = x[i] - global
			continue
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += x[j]
		}
		out[i] = x[i] - sum/float64(hi-lo+1)
	}
	return out
}

// applyHann multiplies the series by a Hann window in place.
func applyHann(x []float64) {
	n := len(x)
	if n < 2 {
		return
	}
	for i := range x {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		x[i] *= w
	}
}

// MovingAverage computes the trend component: a centered moving average
// with the given window (edges use the partial window).
func MovingAverage(x []float64, window int) []float64 {
	n := len(x)
	out := make([]float64, n)
	if window < 1 {
		window = 1
	}
	half := window / 2
	for i := range x {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi >= n {
			hi = n - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += x[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}
