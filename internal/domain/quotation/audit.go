package quotation

import (
	"context"

	"fabriq/internal/core/id"
)

// AuditRecorder receives lifecycle events worth keeping outside the
// quotation record itself. Implementations must not fail the business
// operation: errors are logged by the service and swallowed.
type AuditRecorder interface {
	// RecordTransition is called after a successful status change.
	RecordTransition(ctx context.Context, quotationID id.ID, number string, from, to Status)

	// RecordBurnedNumber is called when an allocated invoice number was
	// consumed but the document generation failed. The number will never
	// be reused; the record keeps the resulting gap explainable.
	RecordBurnedNumber(ctx context.Context, quotationID id.ID, number string, reason error)
}
