package quotation

import (
	"fabriq/internal/core/apperror"
)

// Status is the lifecycle state of a quotation. The set is closed: exactly
// five states, driven by the transition table below.
type Status string

const (
	// StatusIssued is the initial state of every quotation.
	StatusIssued Status = "issued"

	// StatusAccepted marks a quotation the client agreed to.
	StatusAccepted Status = "accepted"

	// StatusCancelled is terminal; the quotation will never be billed.
	StatusCancelled Status = "cancelled"

	// StatusInvoiced means an invoice document was generated and its
	// number attached to the record.
	StatusInvoiced Status = "invoiced"

	// StatusPaymentReceived is terminal; the invoice was paid.
	StatusPaymentReceived Status = "payment_received"
)

// transitions is the closed transition table. Any (from, to) pair not
// listed here is rejected with InvalidTransition.
var transitions = map[Status][]Status{
	StatusIssued:          {StatusAccepted, StatusCancelled, StatusInvoiced},
	StatusAccepted:        {StatusCancelled, StatusInvoiced},
	StatusInvoiced:        {StatusPaymentReceived},
	StatusCancelled:       {},
	StatusPaymentReceived: {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0 && s.Valid()
}

// Editable reports whether costs and comment may still change. Once a
// quotation is cancelled or billed the record is frozen: only the
// lifecycle transitions may touch it.
func (s Status) Editable() bool {
	return s == StatusIssued || s == StatusAccepted
}

// CanTransitionTo reports whether the table allows moving from s to target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ParseStatus converts a string into a Status, rejecting unknown labels.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", apperror.NewValidation("unknown status").WithDetail("status", v)
	}
	return s, nil
}
