package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fabriq/internal/core/types"
)

func shopRates() Rates {
	return Rates{
		DesignPerHour:   types.MustMoney("80.00"),
		PrintingPerHour: types.MustMoney("12.00"),
		HandlingPerHour: types.MustMoney("60.00"),
		MarginPercent:   types.MustMoney("30"),
	}
}

func TestCompute(t *testing.T) {
	in := Input{
		DesignHours:        types.MustMoney("1.5"),
		PrintingHours:      types.MustMoney("8"),
		HandlingHours:      types.MustMoney("0.5"),
		MaterialGrams:      types.MustMoney("250"),
		MaterialPricePerKg: types.MustMoney("28.00"),
	}

	costs, err := Compute(shopRates(), in)
	require.NoError(t, err)

	assert.True(t, costs.DesignCost.Equal(types.MustMoney("120.00")), "design %s", costs.DesignCost)
	assert.True(t, costs.PrintingCost.Equal(types.MustMoney("96.00")), "printing %s", costs.PrintingCost)
	assert.True(t, costs.HandlingCost.Equal(types.MustMoney("30.00")), "handling %s", costs.HandlingCost)

	// 250g at 28.00/kg = 7.00, 30% margin = 2.10
	assert.True(t, costs.MaterialCost.Equal(types.MustMoney("7.00")), "material %s", costs.MaterialCost)
	assert.True(t, costs.Margin.Equal(types.MustMoney("2.10")), "margin %s", costs.Margin)

	assert.True(t, costs.Complete())
}

func TestCompute_KeepsPrecision(t *testing.T) {
	// Component costs are not rounded: 333g at 29.90/kg is 9.9567...
	in := Input{
		PrintingHours:      types.MustMoney("1"),
		MaterialGrams:      types.MustMoney("333"),
		MaterialPricePerKg: types.MustMoney("29.90"),
	}

	costs, err := Compute(shopRates(), in)
	require.NoError(t, err)
	assert.True(t, costs.MaterialCost.Equal(types.MustMoney("9.9567")), "material %s", costs.MaterialCost)
}

func TestCompute_NegativeInput(t *testing.T) {
	in := Input{DesignHours: types.MustMoney("-1")}
	_, err := Compute(shopRates(), in)
	require.Error(t, err)
}

func TestRoundCash(t *testing.T) {
	cases := []struct{ in, want string }{
		{"159.78", "159.80"},
		{"159.77", "159.75"},
		{"159.775", "159.80"},
		{"0.01", "0.00"},
		{"0.03", "0.05"},
		{"100.00", "100.00"},
	}
	for _, c := range cases {
		got := types.RoundCash(types.MustMoney(c.in))
		assert.True(t, got.Equal(types.MustMoney(c.want)), "%s -> %s, want %s", c.in, got, c.want)
	}
}
