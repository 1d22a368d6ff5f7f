package storage

import (
	"context"
	"time"

	"procwatch/internal/domain"
)

// RecordStore provides access to normalized procurement records.
type RecordStore interface {
	// Insert adds a new record. Returns ErrDuplicateKey if the id exists.
	Insert(ctx context.Context, r *domain.Record) error

	// InsertBulk adds multiple records atomically. Fails the entire batch
	// on any duplicate.
	InsertBulk(ctx context.Context, records []*domain.Record) error

	// GetByID retrieves a record by id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Record, error)

	// GetByOrg retrieves all records for an organization, ordered by
	// signing date ASC then id ASC.
	GetByOrg(ctx context.Context, orgCode string) ([]*domain.Record, error)

	// GetBySource retrieves all records of a given source.
	GetBySource(ctx context.Context, source domain.Source) ([]*domain.Record, error)

	// GetByDateRange retrieves records signed within [start, end] (inclusive).
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Record, error)

	// GetAll retrieves every record, ordered by id ASC.
	GetAll(ctx context.Context) ([]*domain.Record, error)
}

// DailySeriesStore provides access to per-organization daily aggregates.
type DailySeriesStore interface {
	// InsertBulk adds multiple points for one organization. Fails the
	// entire batch on duplicate (org_code, date).
	InsertBulk(ctx context.Context, orgCode string, points []domain.TimeSeriesPoint) error

	// GetByOrg retrieves the full series for an organization, ordered by
	// date ASC. An organization with no points yields an empty series.
	GetByOrg(ctx context.Context, orgCode string) (*domain.Series, error)

	// GetByDateRange retrieves points within [start, end] (inclusive).
	GetByDateRange(ctx context.Context, orgCode string, start, end time.Time) (*domain.Series, error)
}

// FindingStore provides access to persisted analysis findings, keyed by
// analysis run.
type FindingStore interface {
	// InsertAnomalies stores one run's anomaly findings. Returns
	// ErrDuplicateKey if the run already has anomalies stored.
	InsertAnomalies(ctx context.Context, runID string, findings []domain.AnomalyFinding) error

	// InsertPatterns stores one run's pattern findings. Returns
	// ErrDuplicateKey if the run already has patterns stored.
	InsertPatterns(ctx context.Context, runID string, findings []domain.PatternFinding) error

	// GetAnomalies retrieves a run's anomaly findings, ordered by severity
	// DESC then id ASC.
	GetAnomalies(ctx context.Context, runID string) ([]domain.AnomalyFinding, error)

	// GetPatterns retrieves a run's pattern findings, ordered by
	// significance DESC then id ASC.
	GetPatterns(ctx context.Context, runID string) ([]domain.PatternFinding, error)
}
