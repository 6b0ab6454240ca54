package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fabriq/internal/core/entity"
	"fabriq/internal/core/id"
	"fabriq/internal/core/types"
	"fabriq/internal/domain/quotation"
)

type testCatalog struct {
	entity.Catalog
	Color string `db:"color" json:"color"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[testCatalog]()

	expected := []string{"id", "deletion_mark", "version", "code", "name", "color"}
	for _, col := range expected {
		assert.Contains(t, cols, col)
	}
}

func TestExtractDBColumns_FlattensCostBreakdown(t *testing.T) {
	cols := ExtractDBColumns[quotation.Quotation]()

	// The anonymous CostBreakdown embed must land in the same column set.
	for _, col := range []string{
		"number", "status", "invoice_number",
		"printing_cost", "design_cost", "handling_cost", "material_cost",
		"margin", "discount", "total",
	} {
		assert.Contains(t, cols, col)
	}
}

func TestStructToMap(t *testing.T) {
	cat := testCatalog{
		Catalog: entity.Catalog{
			BaseCatalog: entity.BaseCatalog{
				BaseEntity: entity.BaseEntity{
					ID:           id.New(),
					DeletionMark: true,
					Version:      5,
				},
			},
			Code: "PLA-RED",
			Name: "PLA Red",
		},
		Color: "red",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "PLA-RED", m["code"])
	assert.Equal(t, "PLA Red", m["name"])
	assert.Equal(t, "red", m["color"])
}

func TestStructToMap_Quotation(t *testing.T) {
	q := quotation.New(id.New(), "Jean Castel")
	q.PrintingCost = types.MustMoney("42.50")
	q.RecalculateTotal()

	m := StructToMap(q)

	assert.Equal(t, "Jean Castel", m["client_name"])
	assert.Equal(t, q.PrintingCost, m["printing_cost"])
	assert.Equal(t, q.Total, m["total"])
	assert.Equal(t, q.Status, m["status"])
}
