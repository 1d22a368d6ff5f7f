// Package engine runs the full irregularity analysis: parallel fan-out of
// detectors and pattern analyzers, per-organization spectral analysis,
// cross-organization synchronization, then a single merge and rank.
package engine

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/phuslu/log"

	"procwatch/internal/detect"
	"procwatch/internal/domain"
	"procwatch/internal/idhash"
	"procwatch/internal/observability"
	"procwatch/internal/patterns"
	"procwatch/internal/spectral"
	"procwatch/internal/timeseries"
)

// spectralPromotionScore is the composite anomaly score above which an
// organization's spectrum is promoted to a standalone finding.
const spectralPromotionScore = 0.7

// syncFindingScore is the synchronization score above which an organization
// pair is reported.
const syncFindingScore = 0.7

// Engine orchestrates one analysis run. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	cfg     domain.AnalysisConfig
	workers int
}

// New creates an Engine. Spectral work is bounded to the available cores.
func New(cfg domain.AnalysisConfig) *Engine {
	return &Engine{cfg: cfg, workers: runtime.GOMAXPROCS(0)}
}

// WithWorkers overrides the spectral worker bound.
func (e *Engine) WithWorkers(n int) *Engine {
	if n > 0 {
		e.workers = n
	}
	return e
}

// Result is the merged output of one analysis run.
type Result struct {
	Anomalies     []domain.AnomalyFinding       `json:"anomalies"`
	Patterns      []domain.PatternFinding       `json:"patterns"`
	Spectral      []*domain.SpectralFeatures    `json:"spectral,omitempty"`
	Periodic      []domain.PeriodicPattern      `json:"periodic_patterns,omitempty"`
	CrossSpectral []*domain.CrossSpectralResult `json:"cross_spectral,omitempty"`
	Summary       domain.Summary                `json:"summary"`
}

// Analyze runs every detector, analyzer, and spectral stage over an
// immutable record slice. A failing detector or analyzer contributes zero
// findings and never aborts its siblings. Output ordering is deterministic
// for identical input.
func (e *Engine) Analyze(records []*domain.Record) *Result {
	anomalySlots := make([][]domain.AnomalyFinding, len(detect.All))
	patternSlots := make([][]domain.PatternFinding, len(patterns.All))

	var wg sync.WaitGroup
	for i := range detect.All {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d := detect.All[i]
			defer logRecover("detector", d.Name)
			anomalySlots[i] = d.Run(records, e.cfg)
		}(i)
	}
	for i := range patterns.All {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := patterns.All[i]
			defer logRecover("analyzer", m.Name)
			patternSlots[i] = m.Run(records, e.cfg)
		}(i)
	}
	wg.Wait()

	result := &Result{}
	for _, findings := range anomalySlots {
		result.Anomalies = append(result.Anomalies, findings...)
	}
	for _, findings := range patternSlots {
		result.Patterns = append(result.Patterns, findings...)
	}

	byOrg := timeseries.BuildDailyByOrg(records)
	orgs := make([]string, 0, len(byOrg))
	for o := range byOrg {
		orgs = append(orgs, o)
	}
	sort.Strings(orgs)

	features := e.runSpectral(orgs, byOrg)
	for _, f := range features {
		if f == nil {
			continue
		}
		result.Spectral = append(result.Spectral, f)
		result.Periodic = append(result.Periodic, spectral.ClassifyPatterns(f)...)
	}
	result.Anomalies = append(result.Anomalies, e.promoteSpectral(result.Spectral)...)

	admitted := admitCrossSpectral(records, byOrg)
	cross, syncFindings := e.runCrossSpectral(admitted, byOrg)
	result.CrossSpectral = cross
	result.Anomalies = append(result.Anomalies, syncFindings...)

	SortAnomalies(result.Anomalies)
	SortPatterns(result.Patterns)
	sort.SliceStable(result.Periodic, func(i, j int) bool {
		return result.Periodic[i].Significance > result.Periodic[j].Significance
	})
	result.Summary = BuildSummary(records, result.Anomalies, result.Patterns)

	return result
}

// runSpectral analyzes each organization's series on a bounded worker pool.
// Results land in indexed slots so output order follows the sorted org list.
func (e *Engine) runSpectral(orgs []string, byOrg map[string]*domain.Series) []*domain.SpectralFeatures {
	features := make([]*domain.SpectralFeatures, len(orgs))
	analyzer := spectral.NewAnalyzer(e.cfg)

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i, org := range orgs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, org string) {
			defer wg.Done()
			defer func() { <-sem }()
			defer logRecover("spectral", org)
			if f, ok := analyzer.Analyze(byOrg[org]); ok {
				features[i] = f
			}
		}(i, org)
	}
	wg.Wait()
	return features
}

// promoteSpectral turns strongly periodic spectra into anomaly findings.
// An organization is promoted when its composite score clears the absolute
// bar, or stands out from its peers by more than the configured sigma.
func (e *Engine) promoteSpectral(features []*domain.SpectralFeatures) []domain.AnomalyFinding {
	if len(features) == 0 {
		return nil
	}

	scores := make([]float64, len(features))
	for i, f := range features {
		scores[i] = f.AnomalyScore
	}
	mean, std := meanStd(scores)

	var findings []domain.AnomalyFinding
	for i, f := range features {
		z := 0.0
		if std > 0 {
			z = (scores[i] - mean) / std
		}
		if scores[i] <= spectralPromotionScore && z <= e.cfg.AnomalyScoreThreshold {
			continue
		}

		severity := domain.Clamp01(scores[i])
		confidence := domain.Clamp01(math.Max(scores[i], z/3))
		findings = append(findings, domain.AnomalyFinding{
			ID:         idhash.FindingID(string(domain.AnomalySpectralPattern), f.EntityKey),
			Type:       domain.AnomalySpectralPattern,
			Severity:   severity,
			Confidence: confidence,
			Description: fmt.Sprintf("organization %s shows highly regular spending cycles (score %.2f, entropy %.2f)",
				f.EntityKey, f.AnomalyScore, f.SpectralEntropy),
			Explanation: "spending that repeats on a fixed clock suggests scheduled contract rotation rather than demand-driven procurement",
			Evidence: map[string]any{
				"anomaly_score":    f.AnomalyScore,
				"spectral_entropy": f.SpectralEntropy,
				"z_score":          z,
				"dominant_periods": f.DominantPeriods,
			},
			Recommendations: detect.RecommendationsFor(domain.AnomalySpectralPattern),
			Entities: []domain.EntityRef{
				{Kind: "organization", Key: f.EntityKey},
			},
		})
	}
	return findings
}

// runCrossSpectral compares every admitted organization pair and reports
// synchronized pairs as findings.
func (e *Engine) runCrossSpectral(admitted []string, byOrg map[string]*domain.Series) ([]*domain.CrossSpectralResult, []domain.AnomalyFinding) {
	analyzer := spectral.NewAnalyzer(e.cfg)

	var results []*domain.CrossSpectralResult
	var findings []domain.AnomalyFinding
	for i := 0; i < len(admitted); i++ {
		for j := i + 1; j < len(admitted); j++ {
			a, b := admitted[i], admitted[j]
			_, valuesA, valuesB := timeseries.AlignOnUnion(byOrg[a], byOrg[b])

			r, ok := analyzer.CrossAnalyze(a, b, valuesA, valuesB)
			if !ok {
				continue
			}
			results = append(results, r)

			if r.SyncScore <= syncFindingScore {
				continue
			}
			findings = append(findings, domain.AnomalyFinding{
				ID:         idhash.FindingID(string(domain.AnomalySynchronizedSpend), a, b),
				Type:       domain.AnomalySynchronizedSpend,
				Severity:   domain.Clamp01(r.SyncScore),
				Confidence: domain.Clamp01(math.Abs(r.Correlation)),
				Description: fmt.Sprintf("organizations %s and %s spend in lockstep (sync %.2f, correlation %.2f)",
					a, b, r.SyncScore, r.Correlation),
				Explanation: "independent organizations rarely share spending rhythms; synchronization suggests a common coordinator or shared vendor influence",
				Evidence: map[string]any{
					"sync_score":         r.SyncScore,
					"correlation":        r.Correlation,
					"max_coherence":      r.MaxCoherence,
					"correlated_periods": r.CorrelatedPeriods,
				},
				Recommendations: detect.RecommendationsFor(domain.AnomalySynchronizedSpend),
				Entities: []domain.EntityRef{
					{Kind: "organization", Key: a},
					{Kind: "organization", Key: b},
				},
			})
		}
	}
	return results, findings
}

// logRecover absorbs a panic at a task boundary. The failing task
// contributes zero findings; siblings are unaffected.
func logRecover(kind, name string) {
	if r := recover(); r != nil {
		observability.RecordTaskPanic()
		log.Error().Str(kind, name).Str("panic", fmt.Sprint(r)).Msg("analysis task failed, contributing no findings")
	}
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
