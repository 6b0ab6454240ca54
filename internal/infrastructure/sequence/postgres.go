// Package sequence provides durable implementations of the document
// number allocator: a PostgreSQL upsert-based store and a locked JSON
// file store for single-host deployments.
package sequence

import (
	"context"

	"github.com/jackc/pgx/v5"

	"fabriq/internal/core/apperror"
	coreseq "fabriq/internal/core/sequence"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore allocates numbers with a single UPSERT + RETURNING
// statement on sys_sequences. The row lock taken by the upsert serializes
// concurrent allocations; every committed statement consumed exactly one
// value.
type PostgresStore struct {
	querier Querier
}

// Ensure compile-time interface compliance.
var _ coreseq.Allocator = (*PostgresStore)(nil)

// NewPostgresStore creates an allocator on top of a pgx pool or conn.
func NewPostgresStore(querier Querier) *PostgresStore {
	return &PostgresStore{querier: querier}
}

// Allocate implements sequence.Allocator.
func (s *PostgresStore) Allocate(ctx context.Context, kind coreseq.Kind, year int) (int64, error) {
	if !kind.Valid() {
		return 0, apperror.NewValidation("unknown document kind").
			WithDetail("kind", int(kind))
	}

	var num int64
	err := s.querier.QueryRow(ctx, `
        INSERT INTO sys_sequences (kind, year, current_val)
        VALUES ($1, $2, 1)
        ON CONFLICT (kind, year) DO UPDATE SET current_val = sys_sequences.current_val + 1
        RETURNING current_val
	`, kind.String(), year).Scan(&num)
	if err != nil {
		// Failure before RETURNING means nothing was committed: the
		// counter is untouched and no number was consumed.
		return 0, apperror.NewAllocationFailed(err).
			WithDetail("kind", kind.String()).
			WithDetail("year", year)
	}

	return num, nil
}

// Current implements sequence.Allocator.
func (s *PostgresStore) Current(ctx context.Context, kind coreseq.Kind, year int) (int64, error) {
	var num int64
	err := s.querier.QueryRow(ctx, `
        SELECT current_val FROM sys_sequences WHERE kind = $1 AND year = $2
	`, kind.String(), year).Scan(&num)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, apperror.NewAllocationFailed(err).
			WithDetail("kind", kind.String()).
			WithDetail("year", year)
	}
	return num, nil
}
