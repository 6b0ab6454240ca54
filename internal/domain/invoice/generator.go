// Package invoice provides the domain contract for invoice document
// generation. Implementations live in the infrastructure layer; the
// lifecycle controller treats them as a black box.
package invoice

import (
	"context"

	"fabriq/internal/core/types"
)

// Party is one side of the invoice (creditor or debtor).
type Party struct {
	Name    string `json:"name"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2"`
	Country string `json:"country"`
}

// Profile holds the creditor and payment details printed on every invoice.
type Profile struct {
	Creditor     Party
	IBAN         string
	Currency     string
	PaymentTerms string
}

// Line is one billed position.
type Line struct {
	Description string
	Quantity    types.Money
	Unit        string
	UnitPrice   types.Money
	Discount    types.Money
}

// Request carries everything a generator needs to produce the document.
// The quotation data is a snapshot: the generator never reads stores.
type Request struct {
	InvoiceNumber   string
	QuotationNumber string
	Debtor          Party
	Lines           []Line
	Total           types.Money
	Profile         Profile
}

// Generator produces an invoice document artifact for a finalized invoice
// identifier. On success the artifact exists at the returned location,
// keyed by the invoice number. A timeout is treated by callers exactly
// like a failure: the consumed number is burned, the record untouched.
type Generator interface {
	Generate(ctx context.Context, req Request) (artifactPath string, err error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
