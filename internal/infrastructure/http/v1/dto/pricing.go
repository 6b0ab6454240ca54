package dto

import (
	"fabriq/internal/domain/pricing"
	"fabriq/internal/domain/quotation"
)

// ComputePricingRequest prices one job. MaterialID resolves the price
// per kg from the catalog when MaterialPricePerKg is not given directly.
type ComputePricingRequest struct {
	pricing.Input

	MaterialID string `json:"materialId"`
}

// PricingResponse is a computed cost breakdown with its rounded total.
type PricingResponse struct {
	Costs CostBreakdownDTO `json:"costs"`
	Total string           `json:"total"`
}

// FromBreakdown builds the response from a computed breakdown.
func FromBreakdown(costs quotation.CostBreakdown) PricingResponse {
	q := quotation.Quotation{CostBreakdown: costs}
	q.RecalculateTotal()

	return PricingResponse{
		Costs: CostBreakdownDTO{
			PrintingCost: costs.PrintingCost,
			DesignCost:   costs.DesignCost,
			HandlingCost: costs.HandlingCost,
			MaterialCost: costs.MaterialCost,
			Margin:       costs.Margin,
			Discount:     costs.Discount,
		},
		Total: q.Total.StringFixed(2),
	}
}
