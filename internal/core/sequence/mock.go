// Package sequence provides domain contracts for document number allocation.
package sequence

import (
	"context"
	"sync"
)

// MockAllocator is a test implementation of Allocator backed by an
// in-memory map. Use in unit tests to avoid database or filesystem
// dependencies.
type MockAllocator struct {
	// AllocateFunc overrides Allocate when set (for failure injection).
	AllocateFunc func(ctx context.Context, kind Kind, year int) (int64, error)

	mu       sync.Mutex
	counters map[Kind]map[int]int64
}

// NewMockAllocator creates an empty in-memory allocator.
func NewMockAllocator() *MockAllocator {
	return &MockAllocator{
		counters: make(map[Kind]map[int]int64),
	}
}

// Allocate implements Allocator.
func (m *MockAllocator) Allocate(ctx context.Context, kind Kind, year int) (int64, error) {
	if m.AllocateFunc != nil {
		return m.AllocateFunc(ctx, kind, year)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	byYear, ok := m.counters[kind]
	if !ok {
		byYear = make(map[int]int64)
		m.counters[kind] = byYear
	}
	byYear[year]++
	return byYear[year], nil
}

// Current implements Allocator.
func (m *MockAllocator) Current(ctx context.Context, kind Kind, year int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[kind][year], nil
}

// Ensure compile-time interface compliance.
var _ Allocator = (*MockAllocator)(nil)
