// Package pricing computes quotation cost breakdowns from shop rates
// and job parameters.
package pricing

import (
	"fabriq/internal/core/apperror"
	"fabriq/internal/core/types"
	"fabriq/internal/domain/quotation"
)

// Rates are the shop's hourly rates and markup.
type Rates struct {
	// DesignPerHour is billed for CAD and preparation time.
	DesignPerHour types.Money `json:"designPerHour"`

	// PrintingPerHour covers machine time, power and wear.
	PrintingPerHour types.Money `json:"printingPerHour"`

	// HandlingPerHour covers post-processing and finishing.
	HandlingPerHour types.Money `json:"handlingPerHour"`

	// MarginPercent is applied on top of the material cost.
	MarginPercent types.Money `json:"marginPercent"`
}

// Input describes one job to price.
type Input struct {
	DesignHours   types.Money `json:"designHours"`
	PrintingHours types.Money `json:"printingHours"`
	HandlingHours types.Money `json:"handlingHours"`

	// MaterialGrams of material at MaterialPricePerKg.
	MaterialGrams      types.Money `json:"materialGrams"`
	MaterialPricePerKg types.Money `json:"materialPricePerKg"`

	// Discount is a flat amount subtracted from the total.
	Discount types.Money `json:"discount"`
}

// Validate rejects negative quantities.
func (in Input) Validate() error {
	fields := map[string]types.Money{
		"designHours":        in.DesignHours,
		"printingHours":      in.PrintingHours,
		"handlingHours":      in.HandlingHours,
		"materialGrams":      in.MaterialGrams,
		"materialPricePerKg": in.MaterialPricePerKg,
		"discount":           in.Discount,
	}
	for name, v := range fields {
		if v.IsNegative() {
			return apperror.NewValidation("quantity cannot be negative").
				WithDetail("field", name)
		}
	}
	return nil
}

// Compute turns rates and job input into a cost breakdown. Components
// keep full decimal precision; only the grand total is cash-rounded,
// by Quotation.RecalculateTotal.
func Compute(rates Rates, in Input) (quotation.CostBreakdown, error) {
	if err := in.Validate(); err != nil {
		return quotation.CostBreakdown{}, err
	}

	materialCost := in.MaterialPricePerKg.Mul(in.MaterialGrams.Div(types.NewMoney(1000)))

	return quotation.CostBreakdown{
		DesignCost:   rates.DesignPerHour.Mul(in.DesignHours),
		PrintingCost: rates.PrintingPerHour.Mul(in.PrintingHours),
		HandlingCost: rates.HandlingPerHour.Mul(in.HandlingHours),
		MaterialCost: materialCost,
		Margin:       types.Percent(materialCost, rates.MarginPercent),
		Discount:     in.Discount,
	}, nil
}
