package handlers

import (
	"fabriq/internal/domain"
	"fabriq/internal/domain/material"
	"fabriq/internal/infrastructure/http/v1/dto"
)

// MaterialHandler serves the materials catalog endpoints.
type MaterialHandler = CatalogHandler[*material.Material, dto.CreateMaterialRequest, dto.UpdateMaterialRequest]

// NewMaterialHandler wires the generic catalog handler for materials.
func NewMaterialHandler(base *BaseHandler, service *domain.CatalogService[*material.Material]) *MaterialHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*material.Material, dto.CreateMaterialRequest, dto.UpdateMaterialRequest]{
		Service:    service,
		EntityName: "material",
		MapCreateDTO: func(req dto.CreateMaterialRequest) *material.Material {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateMaterialRequest, existing *material.Material) *material.Material {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(m *material.Material) any {
			return dto.FromMaterial(m)
		},
	})
}
