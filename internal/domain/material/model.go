// Package material provides the printing-material catalog.
package material

import (
	"context"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/entity"
	"fabriq/internal/core/types"
)

// Material is one spool or resin the shop prints with. Name carries the
// commercial label; the rest describes what is actually on the shelf.
type Material struct {
	entity.Catalog

	// Type is the material family (PLA, PETG, ABS, resin...).
	Type string `db:"type" json:"type"`

	Color string `db:"color" json:"color"`
	Brand string `db:"brand" json:"brand,omitempty"`

	// Reference is the manufacturer reference printed on the spool.
	Reference string `db:"reference" json:"reference,omitempty"`

	Supplier string `db:"supplier" json:"supplier,omitempty"`

	// PricePerKg is the purchase price used in cost calculations.
	PricePerKg types.Money `db:"price_per_kg" json:"pricePerKg"`

	// EmptySpoolWeight in grams, subtracted when weighing leftovers.
	EmptySpoolWeight int `db:"empty_spool_weight" json:"emptySpoolWeight"`
}

// New creates a material catalog entry.
func New(code, name string) *Material {
	return &Material{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable.
func (m *Material) Validate(ctx context.Context) error {
	if err := m.Catalog.Validate(ctx); err != nil {
		return err
	}

	if m.Type == "" {
		return apperror.NewValidation("material type is required").
			WithDetail("field", "type")
	}

	if m.PricePerKg.IsNegative() {
		return apperror.NewValidation("price per kg cannot be negative").
			WithDetail("field", "pricePerKg")
	}

	if m.EmptySpoolWeight < 0 {
		return apperror.NewValidation("empty spool weight cannot be negative").
			WithDetail("field", "emptySpoolWeight")
	}

	return nil
}

// CostOfGrams prices the given weight of this material.
func (m *Material) CostOfGrams(grams types.Money) types.Money {
	kg := grams.Div(types.NewMoney(1000))
	return m.PricePerKg.Mul(kg)
}
