// Package quotation provides the Quotation document repository contract.
package quotation

import (
	"context"
	"time"

	"fabriq/internal/core/id"
	"fabriq/internal/domain"
)

// Repository defines persistence operations for quotations.
// The postgres implementation lives in infrastructure/storage.
type Repository interface {
	Create(ctx context.Context, q *Quotation) error
	GetByID(ctx context.Context, quotationID id.ID) (*Quotation, error)
	GetByNumber(ctx context.Context, number string) (*Quotation, error)

	// Update persists status, invoice number and cost changes with
	// optimistic locking.
	Update(ctx context.Context, q *Quotation) error

	// Delete sets the deletion mark (soft delete).
	Delete(ctx context.Context, quotationID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Quotation], error)
}

// ListFilter narrows quotation listings.
type ListFilter struct {
	domain.ListFilter

	ClientID *id.ID
	Status   *Status
	DateFrom *time.Time
	DateTo   *time.Time
}
