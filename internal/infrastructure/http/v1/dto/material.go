package dto

import (
	"fabriq/internal/core/types"
	"fabriq/internal/domain/material"
)

// CreateMaterialRequest is the payload for creating a material.
type CreateMaterialRequest struct {
	Code             string      `json:"code" binding:"required"`
	Name             string      `json:"name" binding:"required"`
	Type             string      `json:"type" binding:"required"`
	Color            string      `json:"color"`
	Brand            string      `json:"brand"`
	Reference        string      `json:"reference"`
	Supplier         string      `json:"supplier"`
	PricePerKg       types.Money `json:"pricePerKg"`
	EmptySpoolWeight int         `json:"emptySpoolWeight"`
}

// ToEntity converts the request into a domain entity.
func (r CreateMaterialRequest) ToEntity() *material.Material {
	m := material.New(r.Code, r.Name)
	m.Type = r.Type
	m.Color = r.Color
	m.Brand = r.Brand
	m.Reference = r.Reference
	m.Supplier = r.Supplier
	m.PricePerKg = r.PricePerKg
	m.EmptySpoolWeight = r.EmptySpoolWeight
	return m
}

// UpdateMaterialRequest is the payload for updating a material.
type UpdateMaterialRequest struct {
	Name             *string      `json:"name"`
	Type             *string      `json:"type"`
	Color            *string      `json:"color"`
	Brand            *string      `json:"brand"`
	Reference        *string      `json:"reference"`
	Supplier         *string      `json:"supplier"`
	PricePerKg       *types.Money `json:"pricePerKg"`
	EmptySpoolWeight *int         `json:"emptySpoolWeight"`
}

// ApplyTo applies non-nil fields onto the existing entity.
func (r UpdateMaterialRequest) ApplyTo(m *material.Material) {
	if r.Name != nil {
		m.Name = *r.Name
	}
	if r.Type != nil {
		m.Type = *r.Type
	}
	if r.Color != nil {
		m.Color = *r.Color
	}
	if r.Brand != nil {
		m.Brand = *r.Brand
	}
	if r.Reference != nil {
		m.Reference = *r.Reference
	}
	if r.Supplier != nil {
		m.Supplier = *r.Supplier
	}
	if r.PricePerKg != nil {
		m.PricePerKg = *r.PricePerKg
	}
	if r.EmptySpoolWeight != nil {
		m.EmptySpoolWeight = *r.EmptySpoolWeight
	}
}

// MaterialResponse is the API representation of a material.
type MaterialResponse struct {
	ID               string `json:"id"`
	Code             string `json:"code"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	Color            string `json:"color,omitempty"`
	Brand            string `json:"brand,omitempty"`
	Reference        string `json:"reference,omitempty"`
	Supplier         string `json:"supplier,omitempty"`
	PricePerKg       string `json:"pricePerKg"`
	EmptySpoolWeight int    `json:"emptySpoolWeight"`
	DeletionMark     bool   `json:"deletionMark"`
	Version          int    `json:"version"`
}

// FromMaterial converts a domain entity into a response DTO.
func FromMaterial(m *material.Material) MaterialResponse {
	return MaterialResponse{
		ID:               m.ID.String(),
		Code:             m.Code,
		Name:             m.Name,
		Type:             m.Type,
		Color:            m.Color,
		Brand:            m.Brand,
		Reference:        m.Reference,
		Supplier:         m.Supplier,
		PricePerKg:       m.PricePerKg.StringFixed(2),
		EmptySpoolWeight: m.EmptySpoolWeight,
		DeletionMark:     m.DeletionMark,
		Version:          m.Version,
	}
}
