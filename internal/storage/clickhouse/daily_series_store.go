package clickhouse

import (
	"context"
	"fmt"
	"time"

	"procwatch/internal/domain"
	"procwatch/internal/storage"
)

// DailySeriesStore implements storage.DailySeriesStore using ClickHouse.
type DailySeriesStore struct {
	conn *Conn
}

// NewDailySeriesStore creates a new DailySeriesStore.
func NewDailySeriesStore(conn *Conn) *DailySeriesStore {
	return &DailySeriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DailySeriesStore = (*DailySeriesStore)(nil)

// InsertBulk adds multiple points for one organization. Fails the entire
// batch on duplicate (org_code, date). MergeTree does not enforce
// uniqueness, so duplicates are checked explicitly before the batch send.
func (s *DailySeriesStore) InsertBulk(ctx context.Context, orgCode string, points []domain.TimeSeriesPoint) error {
	if orgCode == "" {
		return storage.ErrInvalidInput
	}
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[time.Time]struct{}, len(points))
	for _, p := range points {
		day := p.Date.UTC().Truncate(24 * time.Hour)
		if _, exists := seen[day]; exists {
			return storage.ErrDuplicateKey
		}
		seen[day] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, p := range points {
		exists, err := s.exists(ctx, orgCode, p.Date)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO daily_series (
			org_code, date, value, record_count, supplier_count
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			orgCode, p.Date.UTC().Truncate(24*time.Hour),
			p.Value, uint32(p.Count), uint32(p.SupplierCount),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByOrg retrieves the full series for an organization, ordered by date ASC.
func (s *DailySeriesStore) GetByOrg(ctx context.Context, orgCode string) (*domain.Series, error) {
	query := `
		SELECT date, value, record_count, supplier_count
		FROM daily_series
		WHERE org_code = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, orgCode)
	if err != nil {
		return nil, fmt.Errorf("query by org: %w", err)
	}
	defer rows.Close()

	return scanSeries(orgCode, rows)
}

// GetByDateRange retrieves points within [start, end] (inclusive).
func (s *DailySeriesStore) GetByDateRange(ctx context.Context, orgCode string, start, end time.Time) (*domain.Series, error) {
	query := `
		SELECT date, value, record_count, supplier_count
		FROM daily_series
		WHERE org_code = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, orgCode, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("query by date range: %w", err)
	}
	defer rows.Close()

	return scanSeries(orgCode, rows)
}

// exists checks if a point with the given key exists.
func (s *DailySeriesStore) exists(ctx context.Context, orgCode string, date time.Time) (bool, error) {
	query := `
		SELECT count(*) FROM daily_series
		WHERE org_code = ? AND date = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, orgCode, date.UTC().Truncate(24*time.Hour)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanSeries scans multiple rows into a Series.
func scanSeries(orgCode string, rows chRows) (*domain.Series, error) {
	series := &domain.Series{EntityKey: orgCode}

	for rows.Next() {
		var p domain.TimeSeriesPoint
		var count, supplierCount uint32

		err := rows.Scan(&p.Date, &p.Value, &count, &supplierCount)
		if err != nil {
			return nil, fmt.Errorf("scan daily series row: %w", err)
		}

		p.Date = p.Date.UTC()
		p.Count = int(count)
		p.SupplierCount = int(supplierCount)
		series.Points = append(series.Points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily series rows: %w", err)
	}

	return series, nil
}
