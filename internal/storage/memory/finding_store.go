package memory

import (
	"context"
	"sort"
	"sync"

	"procwatch/internal/domain"
	"procwatch/internal/storage"
)

// FindingStore is an in-memory implementation of storage.FindingStore.
type FindingStore struct {
	mu        sync.RWMutex
	anomalies map[string][]domain.AnomalyFinding // keyed by run id
	patterns  map[string][]domain.PatternFinding
}

// NewFindingStore creates a new in-memory finding store.
func NewFindingStore() *FindingStore {
	return &FindingStore{
		anomalies: make(map[string][]domain.AnomalyFinding),
		patterns:  make(map[string][]domain.PatternFinding),
	}
}

// Compile-time interface check.
var _ storage.FindingStore = (*FindingStore)(nil)

// InsertAnomalies stores one run's anomaly findings. Returns ErrDuplicateKey
// if the run already has anomalies stored.
func (s *FindingStore) InsertAnomalies(_ context.Context, runID string, findings []domain.AnomalyFinding) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.anomalies[runID]; exists {
		return storage.ErrDuplicateKey
	}
	s.anomalies[runID] = append([]domain.AnomalyFinding(nil), findings...)
	return nil
}

// InsertPatterns stores one run's pattern findings. Returns ErrDuplicateKey
// if the run already has patterns stored.
func (s *FindingStore) InsertPatterns(_ context.Context, runID string, findings []domain.PatternFinding) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.patterns[runID]; exists {
		return storage.ErrDuplicateKey
	}
	s.patterns[runID] = append([]domain.PatternFinding(nil), findings...)
	return nil
}

// GetAnomalies retrieves a run's anomaly findings, ordered by severity DESC
// then id ASC.
func (s *FindingStore) GetAnomalies(_ context.Context, runID string) ([]domain.AnomalyFinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]domain.AnomalyFinding(nil), s.anomalies[runID]...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity > out[j].Severity
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetPatterns retrieves a run's pattern findings, ordered by significance
// DESC then id ASC.
func (s *FindingStore) GetPatterns(_ context.Context, runID string) ([]domain.PatternFinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]domain.PatternFinding(nil), s.patterns[runID]...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Significance != out[j].Significance {
			return out[i].Significance > out[j].Significance
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
