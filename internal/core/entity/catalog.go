package entity

import (
	"context"

	"fabriq/internal/core/apperror"
)

// Catalog is the base type for reference-data entities (materials,
// clients). Catalogs are flat: no hierarchy, no folders.
type Catalog struct {
	BaseCatalog

	// Code is a short human-readable identifier, unique per catalog.
	Code string `db:"code" json:"code"`

	// Name is the display name.
	Name string `db:"name" json:"name"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		BaseCatalog: NewBaseCatalog(),
		Code:        code,
		Name:        name,
	}
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// GetName returns the display name.
func (c *Catalog) GetName() string {
	return c.Name
}
