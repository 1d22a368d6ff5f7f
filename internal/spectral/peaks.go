package spectral

import "sort"

// minPeakSeparation is the minimum distance in bins between reported peaks.
const minPeakSeparation = 5

// findPeaks returns indices of local maxima in power whose height exceeds
// threshold, at least minSep bins apart, ordered by power descending.
// The zero-frequency bin never qualifies.
func findPeaks(power []float64, threshold float64, minSep int) []int {
	var candidates []int
	for i := 1; i < len(power)-1; i++ {
		if power[i] <= threshold {
			continue
		}
		if power[i] >= power[i-1] && power[i] >= power[i+1] {
			candidates = append(candidates, i)
		}
	}

	// Strongest first; index ascending breaks power ties deterministically
	sort.Slice(candidates, func(a, b int) bool {
		if power[candidates[a]] != power[candidates[b]] {
			return power[candidates[a]] > power[candidates[b]]
		}
		return candidates[a] < candidates[b]
	})

	var peaks []int
	for _, c := range candidates {
		tooClose := false
		for _, p := range peaks {
			if abs(c-p) < minSep {
				tooClose = true
				break
			}
		}
		if !tooClose {
			peaks = append(peaks, c)
		}
	}
	return peaks
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
