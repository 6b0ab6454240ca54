package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/id"
	"fabriq/internal/domain"
	"fabriq/internal/domain/material"
	"fabriq/internal/domain/pricing"
	"fabriq/internal/infrastructure/http/v1/dto"
)

// PricingHandler computes cost breakdowns from shop rates.
type PricingHandler struct {
	*BaseHandler
	rates     pricing.Rates
	materials *domain.CatalogService[*material.Material]
}

// NewPricingHandler creates the pricing handler.
func NewPricingHandler(base *BaseHandler, rates pricing.Rates, materials *domain.CatalogService[*material.Material]) *PricingHandler {
	return &PricingHandler{
		BaseHandler: base,
		rates:       rates,
		materials:   materials,
	}
}

// Compute handles POST /pricing/compute.
func (h *PricingHandler) Compute(c *gin.Context) {
	var req dto.ComputePricingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	// A material reference wins over a hand-entered price.
	if req.MaterialID != "" {
		materialID, err := id.Parse(req.MaterialID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid materialId format"))
			return
		}

		m, err := h.materials.GetByID(c.Request.Context(), materialID)
		if err != nil {
			h.Error(c, err)
			return
		}
		req.MaterialPricePerKg = m.PricePerKg
	}

	costs, err := pricing.Compute(h.rates, req.Input)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromBreakdown(costs))
}

// RegisterRoutes attaches the pricing routes to a router group.
func (h *PricingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/compute", h.Compute)
}
