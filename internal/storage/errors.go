package storage

import "errors"

// Sentinel errors shared by every store. Procurement records, daily series
// points and analysis runs are append-only: rows are written once and never
// updated, so a key collision is always an error, not an upsert.
var (
	// ErrNotFound is returned when no row matches the requested key.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when an insert collides with an existing
	// record id, (org_code, date) point, or analysis run.
	ErrDuplicateKey = errors.New("duplicate key: procurement stores are append-only")

	// ErrInvalidInput is returned when the input fails validation before
	// it reaches the database.
	ErrInvalidInput = errors.New("invalid input")
)
