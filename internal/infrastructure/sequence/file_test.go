package sequence

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fabriq/internal/core/apperror"
	coreseq "fabriq/internal/core/sequence"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "sequences.json"))
	require.NoError(t, err)
	return store
}

func TestFileStore_FirstAllocationIsOne(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n, err := store.Allocate(ctx, coreseq.KindQuotation, 2025)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = store.Allocate(ctx, coreseq.KindQuotation, 2025)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestFileStore_IndependentCounters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Same year, different kinds.
	n, err := store.Allocate(ctx, coreseq.KindQuotation, 2025)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = store.Allocate(ctx, coreseq.KindInvoice, 2025)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// Same kind, different year: a fresh counter, the old one untouched.
	n, err = store.Allocate(ctx, coreseq.KindQuotation, 2026)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	cur, err := store.Current(ctx, coreseq.KindQuotation, 2025)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cur)
}

func TestFileStore_ConcurrentAllocations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const workers = 20
	const perWorker = 5

	results := make(chan int64, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				n, err := store.Allocate(ctx, coreseq.KindQuotation, 2025)
				assert.NoError(t, err)
				results <- n
			}
		}()
	}
	wg.Wait()
	close(results)

	// Exactly the set {1..workers*perWorker}: no duplicates, no gaps.
	var got []int64
	for n := range results {
		got = append(got, n)
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	require.Len(t, got, workers*perWorker)
	for i, n := range got {
		assert.EqualValues(t, i+1, n)
	}
}

func TestFileStore_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequences.json")
	ctx := context.Background()

	store, err := NewFileStore(path)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := store.Allocate(ctx, coreseq.KindInvoice, 2025)
		require.NoError(t, err)
	}

	// A new store over the same file continues, never restarts.
	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	n, err := reopened.Allocate(ctx, coreseq.KindInvoice, 2025)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}

func TestFileStore_StateKeyedByPrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Allocate(ctx, coreseq.KindQuotation, 2025)
	require.NoError(t, err)
	_, err = store.Allocate(ctx, coreseq.KindInvoice, 2025)
	require.NoError(t, err)

	// The on-disk layout uses the document prefixes, same as the numbers
	// the counters feed into.
	data, err := os.ReadFile(store.path)
	require.NoError(t, err)
	state := make(map[string]map[string]int64)
	require.NoError(t, json.Unmarshal(data, &state))
	assert.EqualValues(t, 1, state["DEV"]["2025"])
	assert.EqualValues(t, 1, state["INV"]["2025"])
}

func TestFileStore_CorruptFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequences.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path)
	require.Error(t, err)
}

func TestFileStore_CorruptionFailsAllocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sequences.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Allocate(ctx, coreseq.KindQuotation, 2025)
	require.NoError(t, err)

	// Corrupted after open: allocation reports failure, consumes nothing.
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err = store.Allocate(ctx, coreseq.KindQuotation, 2025)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeAllocationFailed))
}

func TestFileStore_StaleLockTakenOver(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Simulate a crashed process: lock file exists, long untouched.
	lockPath := store.path + ".lock"
	require.NoError(t, os.WriteFile(lockPath, []byte("999999\n"), 0o644))
	old := time.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(lockPath, old, old))

	n, err := store.Allocate(ctx, coreseq.KindQuotation, 2025)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestFileStore_StaleLockSingleWinner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	lockPath := store.path + ".lock"
	require.NoError(t, os.WriteFile(lockPath, []byte("999999\n"), 0o644))
	old := time.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(lockPath, old, old))

	// Several waiters race to take over the same abandoned lock. The
	// rename handoff must keep the lock exclusive throughout: at no
	// point may two waiters believe they hold it.
	var holders int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := store.acquireLock(ctx)
			if !assert.NoError(t, err) {
				return
			}
			assert.EqualValues(t, 1, atomic.AddInt32(&holders, 1))
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&holders, -1)
			unlock()
		}()
	}
	wg.Wait()
}

func TestFileStore_UnknownKind(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Allocate(context.Background(), coreseq.Kind(99), 2025)
	require.Error(t, err)
}
