// Package memory provides in-memory store implementations, used by the CLI
// for single-shot analyses and by tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"procwatch/internal/domain"
	"procwatch/internal/storage"
)

// RecordStore is an in-memory implementation of storage.RecordStore.
type RecordStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Record // keyed by record id
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{data: make(map[string]*domain.Record)}
}

// Compile-time interface check.
var _ storage.RecordStore = (*RecordStore)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if the id exists.
func (s *RecordStore) Insert(_ context.Context, r *domain.Record) error {
	if r == nil || r.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.ID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	recordCopy := *r
	s.data[r.ID] = &recordCopy
	return nil
}

// InsertBulk adds multiple records atomically. Fails the entire batch on
// any duplicate.
func (s *RecordStore) InsertBulk(_ context.Context, records []*domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.ID == "" {
			return storage.ErrInvalidInput
		}
		if _, dup := seen[r.ID]; dup {
			return storage.ErrDuplicateKey
		}
		if _, exists := s.data[r.ID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[r.ID] = struct{}{}
	}

	for _, r := range records {
		recordCopy := *r
		s.data[r.ID] = &recordCopy
	}
	return nil
}

// GetByID retrieves a record by id. Returns ErrNotFound if not exists.
func (s *RecordStore) GetByID(_ context.Context, id string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	recordCopy := *r
	return &recordCopy, nil
}

// GetByOrg retrieves all records for an organization, ordered by signing
// date ASC then id ASC.
func (s *RecordStore) GetByOrg(_ context.Context, orgCode string) ([]*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Record
	for _, r := range s.data {
		if r.OrgCode == orgCode {
			recordCopy := *r
			out = append(out, &recordCopy)
		}
	}
	sortRecords(out)
	return out, nil
}

// GetBySource retrieves all records of a given source.
func (s *RecordStore) GetBySource(_ context.Context, source domain.Source) ([]*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Record
	for _, r := range s.data {
		if r.Source == source {
			recordCopy := *r
			out = append(out, &recordCopy)
		}
	}
	sortRecords(out)
	return out, nil
}

// GetByDateRange retrieves records signed within [start, end] (inclusive).
// Records without a resolved date never match.
func (s *RecordStore) GetByDateRange(_ context.Context, start, end time.Time) ([]*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Record
	for _, r := range s.data {
		if !r.HasDate() {
			continue
		}
		if r.SignedAt.Before(start) || r.SignedAt.After(end) {
			continue
		}
		recordCopy := *r
		out = append(out, &recordCopy)
	}
	sortRecords(out)
	return out, nil
}

// GetAll retrieves every record, ordered by id ASC.
func (s *RecordStore) GetAll(_ context.Context) ([]*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Record, 0, len(s.data))
	for _, r := range s.data {
		recordCopy := *r
		out = append(out, &recordCopy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// sortRecords orders by signing date ASC then id ASC; undated records sort
// first.
func sortRecords(records []*domain.Record) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		switch {
		case !a.HasDate() && b.HasDate():
			return true
		case a.HasDate() && !b.HasDate():
			return false
		case a.HasDate() && b.HasDate() && !a.SignedAt.Equal(*b.SignedAt):
			return a.SignedAt.Before(*b.SignedAt)
		}
		return a.ID < b.ID
	})
}
