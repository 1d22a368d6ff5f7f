package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"procwatch/internal/domain"
	"procwatch/internal/storage"
)

// DailySeriesStore is an in-memory implementation of storage.DailySeriesStore.
type DailySeriesStore struct {
	mu   sync.RWMutex
	data map[string]map[time.Time]domain.TimeSeriesPoint // org -> date -> point
}

// NewDailySeriesStore creates a new in-memory daily series store.
func NewDailySeriesStore() *DailySeriesStore {
	return &DailySeriesStore{data: make(map[string]map[time.Time]domain.TimeSeriesPoint)}
}

// Compile-time interface check.
var _ storage.DailySeriesStore = (*DailySeriesStore)(nil)

// InsertBulk adds multiple points for one organization. Fails the entire
// batch on duplicate (org_code, date).
func (s *DailySeriesStore) InsertBulk(_ context.Context, orgCode string, points []domain.TimeSeriesPoint) error {
	if orgCode == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.data[orgCode]
	seen := make(map[time.Time]struct{}, len(points))
	for _, p := range points {
		day := p.Date.UTC().Truncate(24 * time.Hour)
		if _, dup := seen[day]; dup {
			return storage.ErrDuplicateKey
		}
		if _, exists := existing[day]; exists {
			return storage.ErrDuplicateKey
		}
		seen[day] = struct{}{}
	}

	if existing == nil {
		existing = make(map[time.Time]domain.TimeSeriesPoint)
		s.data[orgCode] = existing
	}
	for _, p := range points {
		day := p.Date.UTC().Truncate(24 * time.Hour)
		p.Date = day
		existing[day] = p
	}
	return nil
}

// GetByOrg retrieves the full series for an organization, ordered by date ASC.
func (s *DailySeriesStore) GetByOrg(_ context.Context, orgCode string) (*domain.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(orgCode, func(time.Time) bool { return true }), nil
}

// GetByDateRange retrieves points within [start, end] (inclusive).
func (s *DailySeriesStore) GetByDateRange(_ context.Context, orgCode string, start, end time.Time) (*domain.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(orgCode, func(d time.Time) bool {
		return !d.Before(start) && !d.After(end)
	}), nil
}

func (s *DailySeriesStore) collect(orgCode string, match func(time.Time) bool) *domain.Series {
	series := &domain.Series{EntityKey: orgCode}
	for day, p := range s.data[orgCode] {
		if match(day) {
			series.Points = append(series.Points, p)
		}
	}
	sort.Slice(series.Points, func(i, j int) bool {
		return series.Points[i].Date.Before(series.Points[j].Date)
	})
	return series
}
