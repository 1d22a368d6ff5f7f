// Package postgres implements the procurement record store on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the PostgreSQL error code raised when an insert hits
// the primary key on procurement_records.
const uniqueViolation = "23505"

// Pool wraps pgxpool.Pool so stores receive an already-verified connection.
type Pool struct {
	*pgxpool.Pool
}

// NewPool connects to PostgreSQL and pings it before handing the pool out;
// a bad DSN or unreachable server fails here rather than on the first
// record insert.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

// isDuplicateKeyError reports whether err is a unique-constraint violation,
// which the record store maps to storage.ErrDuplicateKey.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// isNotFoundError reports whether err means no matching row.
func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
