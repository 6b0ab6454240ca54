// Package sequence provides domain contracts for document number allocation.
// Implementations live in the infrastructure layer.
package sequence

import (
	"context"
	"fmt"
)

// Kind identifies the document kind a counter belongs to.
// Counters are independent per (kind, year) pair.
type Kind int

const (
	// KindQuotation numbers priced proposals (prefix DEV).
	KindQuotation Kind = iota

	// KindInvoice numbers billing documents (prefix INV).
	KindInvoice
)

// Prefix returns the identifier prefix for the kind.
func (k Kind) Prefix() string {
	switch k {
	case KindQuotation:
		return "DEV"
	case KindInvoice:
		return "INV"
	default:
		return "UNK"
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindQuotation:
		return "quotation"
	case KindInvoice:
		return "invoice"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Valid reports whether k is a known document kind.
func (k Kind) Valid() bool {
	return k == KindQuotation || k == KindInvoice
}

// Allocator hands out year-scoped sequential numbers, durably and exactly
// once per call. This is the domain contract - implementations live in the
// infrastructure layer (PostgreSQL upsert or locked JSON file).
type Allocator interface {
	// Allocate atomically increments and persists the counter for
	// (kind, year) and returns the new value. The first call for a pair
	// returns 1. Concurrent callers each observe a distinct, strictly
	// increasing value; no number is ever issued twice.
	//
	// If the durable write does not complete, Allocate returns an
	// AllocationFailed error and no number is consumed.
	Allocate(ctx context.Context, kind Kind, year int) (int64, error)

	// Current returns the last issued value for (kind, year) without
	// consuming a number. Returns 0 if the pair was never used.
	Current(ctx context.Context, kind Kind, year int) (int64, error)
}
