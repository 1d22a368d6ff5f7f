package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"procwatch/internal/domain"
	"procwatch/internal/storage"
)

const recordColumns = `
	id, value, initial_value, global_value, signed_at,
	supplier_name, supplier_id, org_code, description, source
`

// RecordStore implements storage.RecordStore using PostgreSQL.
type RecordStore struct {
	pool *Pool
}

// NewRecordStore creates a new RecordStore.
func NewRecordStore(pool *Pool) *RecordStore {
	return &RecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RecordStore = (*RecordStore)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if the id exists.
func (s *RecordStore) Insert(ctx context.Context, r *domain.Record) error {
	if r == nil || r.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO procurement_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		r.ID,
		r.Value,
		r.InitialValue,
		r.GlobalValue,
		r.SignedAt,
		r.SupplierName,
		r.SupplierID,
		r.OrgCode,
		r.Description,
		string(r.Source),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// InsertBulk adds multiple records in one transaction. Fails the entire
// batch on any duplicate.
func (s *RecordStore) InsertBulk(ctx context.Context, records []*domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin bulk insert: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO procurement_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for _, r := range records {
		if r == nil || r.ID == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query,
			r.ID, r.Value, r.InitialValue, r.GlobalValue, r.SignedAt,
			r.SupplierName, r.SupplierID, r.OrgCode, r.Description, string(r.Source),
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit bulk insert: %w", err)
	}
	return nil
}

// GetByID retrieves a record by id. Returns ErrNotFound if not exists.
func (s *RecordStore) GetByID(ctx context.Context, id string) (*domain.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM procurement_records
		WHERE id = $1
	`

	row := s.pool.QueryRow(ctx, query, id)
	r, err := scanRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get record by id: %w", err)
	}
	return r, nil
}

// GetByOrg retrieves all records for an organization, ordered by signing
// date ASC then id ASC.
func (s *RecordStore) GetByOrg(ctx context.Context, orgCode string) ([]*domain.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM procurement_records
		WHERE org_code = $1
		ORDER BY signed_at ASC NULLS FIRST, id ASC
	`

	rows, err := s.pool.Query(ctx, query, orgCode)
	if err != nil {
		return nil, fmt.Errorf("get records by org: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetBySource retrieves all records of a given source.
func (s *RecordStore) GetBySource(ctx context.Context, source domain.Source) ([]*domain.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM procurement_records
		WHERE source = $1
		ORDER BY signed_at ASC NULLS FIRST, id ASC
	`

	rows, err := s.pool.Query(ctx, query, string(source))
	if err != nil {
		return nil, fmt.Errorf("get records by source: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetByDateRange retrieves records signed within [start, end] (inclusive).
// Undated records never match.
func (s *RecordStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM procurement_records
		WHERE signed_at >= $1 AND signed_at <= $2
		ORDER BY signed_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get records by date range: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetAll retrieves every record, ordered by id ASC.
func (s *RecordStore) GetAll(ctx context.Context) ([]*domain.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM procurement_records
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// scanRecord scans a single row into a Record.
func scanRecord(row pgx.Row) (*domain.Record, error) {
	var r domain.Record
	var sourceStr string

	err := row.Scan(
		&r.ID,
		&r.Value,
		&r.InitialValue,
		&r.GlobalValue,
		&r.SignedAt,
		&r.SupplierName,
		&r.SupplierID,
		&r.OrgCode,
		&r.Description,
		&sourceStr,
	)
	if err != nil {
		return nil, err
	}

	r.Source = domain.Source(sourceStr)
	normalizeDate(&r)
	return &r, nil
}

// scanRecords scans multiple rows into a slice of Record.
func scanRecords(rows pgx.Rows) ([]*domain.Record, error) {
	var records []*domain.Record

	for rows.Next() {
		var r domain.Record
		var sourceStr string

		err := rows.Scan(
			&r.ID,
			&r.Value,
			&r.InitialValue,
			&r.GlobalValue,
			&r.SignedAt,
			&r.SupplierName,
			&r.SupplierID,
			&r.OrgCode,
			&r.Description,
			&sourceStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}

		r.Source = domain.Source(sourceStr)
		normalizeDate(&r)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record rows: %w", err)
	}

	return records, nil
}

// normalizeDate keeps dates in UTC, matching what ingestion produced.
func normalizeDate(r *domain.Record) {
	if r.SignedAt != nil {
		utc := r.SignedAt.UTC()
		r.SignedAt = &utc
	}
}
