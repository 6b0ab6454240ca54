package sequence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fabriq/internal/core/apperror"
	coreseq "fabriq/internal/core/sequence"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences upsert per (kind, year).
type mockQuerier struct {
	mu       sync.Mutex
	counters map[string]int64
	failWith error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{counters: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return &mockRow{err: m.failWith}
	}

	key := fmt.Sprintf("%v:%v", args[0], args[1])
	if strings.Contains(sql, "SELECT") {
		val, ok := m.counters[key]
		if !ok {
			return &mockRow{err: pgx.ErrNoRows}
		}
		return &mockRow{val: val}
	}

	m.counters[key]++
	return &mockRow{val: m.counters[key]}
}

func TestPostgresStore_Allocate(t *testing.T) {
	q := newMockQuerier()
	store := NewPostgresStore(q)
	ctx := context.Background()

	n, err := store.Allocate(ctx, coreseq.KindQuotation, 2025)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = store.Allocate(ctx, coreseq.KindQuotation, 2025)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	// Other kind and other year start their own counters.
	n, err = store.Allocate(ctx, coreseq.KindInvoice, 2025)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = store.Allocate(ctx, coreseq.KindQuotation, 2026)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestPostgresStore_AllocateFailure(t *testing.T) {
	q := newMockQuerier()
	q.failWith = errors.New("connection reset")
	store := NewPostgresStore(q)

	_, err := store.Allocate(context.Background(), coreseq.KindInvoice, 2025)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeAllocationFailed))
}

func TestPostgresStore_Current(t *testing.T) {
	q := newMockQuerier()
	store := NewPostgresStore(q)
	ctx := context.Background()

	// Never used: zero, not an error.
	cur, err := store.Current(ctx, coreseq.KindQuotation, 2025)
	require.NoError(t, err)
	assert.EqualValues(t, 0, cur)

	_, err = store.Allocate(ctx, coreseq.KindQuotation, 2025)
	require.NoError(t, err)

	cur, err = store.Current(ctx, coreseq.KindQuotation, 2025)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cur)
}

func TestPostgresStore_UnknownKind(t *testing.T) {
	store := NewPostgresStore(newMockQuerier())
	_, err := store.Allocate(context.Background(), coreseq.Kind(42), 2025)
	require.Error(t, err)
}
