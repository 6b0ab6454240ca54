package sequence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"fabriq/internal/core/apperror"
	coreseq "fabriq/internal/core/sequence"
)

const (
	lockRetryInterval = 25 * time.Millisecond
	lockStaleAfter    = 10 * time.Second
	lockWaitMax       = 5 * time.Second
)

// FileStore keeps counters in a single JSON file, keyed by kind then
// year. A sibling lock file guards against concurrent processes; an
// in-process mutex guards concurrent goroutines. Writes go through a
// temp file, fsync and rename, so a crash leaves either the old or the
// new state, never a torn file.
//
// Suited for single-host deployments without a database.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// Ensure compile-time interface compliance.
var _ coreseq.Allocator = (*FileStore)(nil)

// NewFileStore creates a file-backed allocator. The state file is created
// empty if missing; an unreadable or corrupt existing file is rejected
// here rather than on the first allocation.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.write(map[string]map[string]int64{}); err != nil {
			return nil, fmt.Errorf("init state file: %w", err)
		}
		return s, nil
	}

	if _, err := s.read(); err != nil {
		return nil, fmt.Errorf("verify state file: %w", err)
	}
	return s, nil
}

// Allocate implements sequence.Allocator.
//
// The cross-process protocol mirrors the in-process one: take the lock,
// re-read the file (another process may have advanced it), increment,
// persist, release. The counter only moves when the rename succeeded, so
// a failed persist consumes nothing.
func (s *FileStore) Allocate(ctx context.Context, kind coreseq.Kind, year int) (int64, error) {
	if !kind.Valid() {
		return 0, apperror.NewValidation("unknown document kind").
			WithDetail("kind", int(kind))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return 0, apperror.NewAllocationFailed(err).
			WithDetail("kind", kind.String()).
			WithDetail("year", year)
	}
	defer unlock()

	state, err := s.read()
	if err != nil {
		return 0, apperror.NewAllocationFailed(err).
			WithDetail("kind", kind.String()).
			WithDetail("year", year)
	}

	kindKey := kind.Prefix()
	yearKey := strconv.Itoa(year)
	if state[kindKey] == nil {
		state[kindKey] = make(map[string]int64)
	}
	next := state[kindKey][yearKey] + 1
	state[kindKey][yearKey] = next

	if err := s.write(state); err != nil {
		return 0, apperror.NewAllocationFailed(err).
			WithDetail("kind", kind.String()).
			WithDetail("year", year)
	}

	return next, nil
}

// Current implements sequence.Allocator.
func (s *FileStore) Current(ctx context.Context, kind coreseq.Kind, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read()
	if err != nil {
		return 0, apperror.NewAllocationFailed(err).
			WithDetail("kind", kind.String()).
			WithDetail("year", year)
	}
	return state[kind.Prefix()][strconv.Itoa(year)], nil
}

func (s *FileStore) lockPath() string {
	return s.path + ".lock"
}

// acquireLock takes the cross-process lock file. A lock older than
// lockStaleAfter is treated as abandoned by a crashed process. Takeover
// renames the lock to a waiter-unique name before deleting it: the
// rename is atomic, so when several waiters spot the same stale lock
// only one of them gets it, and the identity check afterwards hands a
// freshly created lock back instead of destroying it.
func (s *FileStore) acquireLock(ctx context.Context) (func(), error) {
	deadline := time.Now().Add(lockWaitMax)

	for {
		f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return func() { os.Remove(s.lockPath()) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}

		if info, statErr := os.Stat(s.lockPath()); statErr == nil {
			if time.Since(info.ModTime()) > lockStaleAfter {
				grab := fmt.Sprintf("%s.stale-%d-%d", s.lockPath(), os.Getpid(), time.Now().UnixNano())
				if os.Rename(s.lockPath(), grab) == nil {
					if taken, err := os.Stat(grab); err == nil && !os.SameFile(info, taken) {
						// Another waiter already cleaned the stale lock and a
						// new holder appeared in between; give its lock back.
						os.Rename(grab, s.lockPath())
					} else {
						os.Remove(grab)
					}
				}
				continue
			}
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("lock file held too long: %s", s.lockPath())
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func (s *FileStore) read() (map[string]map[string]int64, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	state := make(map[string]map[string]int64)
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}
	return state, nil
}

func (s *FileStore) write(state map[string]map[string]int64) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".seq-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
