package handlers

import (
	"fabriq/internal/domain"
	"fabriq/internal/domain/client"
	"fabriq/internal/infrastructure/http/v1/dto"
)

// ClientHandler serves the clients catalog endpoints.
type ClientHandler = CatalogHandler[*client.Client, dto.CreateClientRequest, dto.UpdateClientRequest]

// NewClientHandler wires the generic catalog handler for clients.
func NewClientHandler(base *BaseHandler, service *domain.CatalogService[*client.Client]) *ClientHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*client.Client, dto.CreateClientRequest, dto.UpdateClientRequest]{
		Service:    service,
		EntityName: "client",
		MapCreateDTO: func(req dto.CreateClientRequest) *client.Client {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateClientRequest, existing *client.Client) *client.Client {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(c *client.Client) any {
			return dto.FromClient(c)
		},
	})
}
