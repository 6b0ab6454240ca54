package quotation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fabriq/internal/core/id"
	"fabriq/internal/core/types"
)

func validQuotation() *Quotation {
	q := New(id.New(), "Jean Castel")
	q.CostBreakdown = CostBreakdown{
		PrintingCost: types.MustMoney("42.50"),
		DesignCost:   types.MustMoney("80.00"),
		HandlingCost: types.MustMoney("15.00"),
		MaterialCost: types.MustMoney("12.30"),
		Margin:       types.MustMoney("10.00"),
	}
	q.RecalculateTotal()
	return q
}

func TestQuotation_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, validQuotation().Validate(ctx))
	})

	t.Run("missing client", func(t *testing.T) {
		q := validQuotation()
		q.ClientID = id.Nil()
		assert.Error(t, q.Validate(ctx))
	})

	t.Run("missing client name", func(t *testing.T) {
		q := validQuotation()
		q.ClientName = ""
		assert.Error(t, q.Validate(ctx))
	})

	t.Run("unknown status", func(t *testing.T) {
		q := validQuotation()
		q.Status = Status("draft")
		assert.Error(t, q.Validate(ctx))
	})

	t.Run("invoiced without invoice number", func(t *testing.T) {
		q := validQuotation()
		q.Status = StatusInvoiced
		assert.Error(t, q.Validate(ctx))
	})

	t.Run("invoice number on issued record", func(t *testing.T) {
		q := validQuotation()
		q.InvoiceNumber = "INV-2025-0103-000001-JC"
		assert.Error(t, q.Validate(ctx))
	})

	t.Run("invoiced with invoice number", func(t *testing.T) {
		q := validQuotation()
		q.Status = StatusInvoiced
		q.InvoiceNumber = "INV-2025-0103-000001-JC"
		require.NoError(t, q.Validate(ctx))
	})
}

func TestCostBreakdown_Complete(t *testing.T) {
	t.Run("complete", func(t *testing.T) {
		assert.True(t, validQuotation().CostBreakdown.Complete())
	})

	t.Run("all zero", func(t *testing.T) {
		assert.False(t, CostBreakdown{}.Complete())
	})

	t.Run("single positive component", func(t *testing.T) {
		c := CostBreakdown{PrintingCost: types.MustMoney("5.00")}
		assert.True(t, c.Complete())
	})

	t.Run("negative component", func(t *testing.T) {
		c := validQuotation().CostBreakdown
		c.HandlingCost = types.MustMoney("-1.00")
		assert.False(t, c.Complete())
	})

	t.Run("negative discount", func(t *testing.T) {
		c := validQuotation().CostBreakdown
		c.Discount = types.MustMoney("-0.05")
		assert.False(t, c.Complete())
	})
}

func TestQuotation_RecalculateTotal(t *testing.T) {
	q := validQuotation()

	// 42.50 + 80 + 15 + 12.30 + 10 = 159.80, already on a 0.05 step.
	assert.True(t, q.Total.Equal(types.MustMoney("159.80")), "got %s", q.Total)

	q.Discount = types.MustMoney("0.02")
	q.RecalculateTotal()

	// 159.78 rounds to the nearest 0.05.
	assert.True(t, q.Total.Equal(types.MustMoney("159.80")), "got %s", q.Total)

	q.Discount = types.MustMoney("0.03")
	q.RecalculateTotal()
	assert.True(t, q.Total.Equal(types.MustMoney("159.75")), "got %s", q.Total)
}

func TestQuotation_CanInvoice(t *testing.T) {
	require.NoError(t, validQuotation().CanInvoice())

	empty := New(id.New(), "Jean Castel")
	assert.Error(t, empty.CanInvoice())
}
