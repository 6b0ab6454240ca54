// Package quotation provides the Quotation document and its lifecycle.
package quotation

import (
	"context"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/entity"
	"fabriq/internal/core/id"
	"fabriq/internal/core/types"
)

// Quotation represents a priced proposal issued to a client.
//
// The record owns its lifecycle state; the presentation layer only reads
// and requests transitions through the Service. Number is assigned once at
// creation, InvoiceNumber exactly once on the transition to invoiced.
type Quotation struct {
	entity.Document

	// Client reference plus a name snapshot. The snapshot is what the
	// identifier initials were derived from, so it is immutable together
	// with Number.
	ClientID   id.ID  `db:"client_id" json:"clientId"`
	ClientName string `db:"client_name" json:"clientName"`

	// MaterialID references the catalog entry the material cost was
	// computed from (optional for hand-entered breakdowns).
	MaterialID id.ID `db:"material_id" json:"materialId,omitempty"`

	CostBreakdown

	// Total is the cash-rounded grand total.
	Total types.Money `db:"total" json:"total"`

	Status Status `db:"status" json:"status"`

	// InvoiceNumber is empty until the record reaches invoiced state.
	// Once set it never changes.
	InvoiceNumber string `db:"invoice_number" json:"invoiceNumber,omitempty"`
}

// CostBreakdown holds the line-item costs a quotation is built from.
// All values are decimal Money; Margin is a flat amount already applied
// to Total, Discount is subtracted from it.
type CostBreakdown struct {
	PrintingCost types.Money `db:"printing_cost" json:"printingCost"`
	DesignCost   types.Money `db:"design_cost" json:"designCost"`
	HandlingCost types.Money `db:"handling_cost" json:"handlingCost"`
	MaterialCost types.Money `db:"material_cost" json:"materialCost"`
	Margin       types.Money `db:"margin" json:"margin"`
	Discount     types.Money `db:"discount" json:"discount"`
}

// Complete reports whether the breakdown is filled in enough to invoice:
// every component non-negative and at least one cost component positive.
func (c CostBreakdown) Complete() bool {
	components := []types.Money{c.PrintingCost, c.DesignCost, c.HandlingCost, c.MaterialCost}
	anyPositive := false
	for _, m := range components {
		if m.IsNegative() {
			return false
		}
		if m.IsPositive() {
			anyPositive = true
		}
	}
	return anyPositive && !c.Margin.IsNegative() && !c.Discount.IsNegative()
}

// Subtotal sums the cost components plus margin, before discount.
func (c CostBreakdown) Subtotal() types.Money {
	return c.PrintingCost.
		Add(c.DesignCost).
		Add(c.HandlingCost).
		Add(c.MaterialCost).
		Add(c.Margin)
}

// New creates a quotation in its initial state for the given client.
// Number is left empty; the Service assigns it at creation time.
func New(clientID id.ID, clientName string) *Quotation {
	return &Quotation{
		Document:   entity.NewDocument(),
		ClientID:   clientID,
		ClientName: clientName,
		Status:     StatusIssued,
	}
}

// Validate implements entity.Validatable.
func (q *Quotation) Validate(ctx context.Context) error {
	if err := q.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(q.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}

	if q.ClientName == "" {
		return apperror.NewValidation("client name is required").
			WithDetail("field", "clientName")
	}

	if !q.Status.Valid() {
		return apperror.NewValidation("unknown status").
			WithDetail("status", string(q.Status))
	}

	// InvoiceNumber is set if and only if the record reached invoiced
	// state. Both directions are invariants of the lifecycle.
	invoiced := q.Status == StatusInvoiced || q.Status == StatusPaymentReceived
	if invoiced && q.InvoiceNumber == "" {
		return apperror.NewValidation("invoiced quotation must carry an invoice number").
			WithDetail("status", string(q.Status))
	}
	if !invoiced && q.InvoiceNumber != "" {
		return apperror.NewValidation("invoice number set on a non-invoiced quotation").
			WithDetail("status", string(q.Status))
	}

	return nil
}

// CanInvoice checks the precondition of the transition to invoiced:
// a complete cost breakdown.
func (q *Quotation) CanInvoice() error {
	if !q.CostBreakdown.Complete() {
		return apperror.NewValidation("cost breakdown is incomplete").
			WithDetail("field", "costs")
	}
	return nil
}

// RecalculateTotal recomputes the cash-rounded grand total from the
// cost breakdown.
func (q *Quotation) RecalculateTotal() {
	q.Total = types.RoundCash(q.Subtotal().Sub(q.Discount))
}
