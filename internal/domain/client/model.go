// Package client provides the client catalog. A client is whoever
// quotations are issued to; its name feeds the identifier initials.
package client

import (
	"context"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/entity"
	"fabriq/internal/domain/numbering"
)

// Client is a person or company quotations are issued to.
type Client struct {
	entity.Catalog

	// Postal address, printed on invoices.
	AddressLine1 string `db:"address_line1" json:"addressLine1,omitempty"`
	AddressLine2 string `db:"address_line2" json:"addressLine2,omitempty"`
	Country      string `db:"country" json:"country,omitempty"`

	Email string `db:"email" json:"email,omitempty"`
	Phone string `db:"phone" json:"phone,omitempty"`
}

// New creates a client catalog entry.
func New(code, name string) *Client {
	return &Client{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable. A client name must yield
// identifier initials, so "at least two name components" is enforced
// here, at the catalog boundary, not first at quotation time.
func (c *Client) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if _, err := numbering.Initials(c.Name); err != nil {
		return err
	}

	if c.Country != "" && len(c.Country) != 2 {
		return apperror.NewValidation("country must be an ISO 3166-1 alpha-2 code").
			WithDetail("field", "country")
	}

	return nil
}
