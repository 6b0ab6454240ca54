package dto

import (
	"fabriq/internal/domain/client"
)

// CreateClientRequest is the payload for creating a client.
type CreateClientRequest struct {
	Code         string `json:"code" binding:"required"`
	Name         string `json:"name" binding:"required"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	Country      string `json:"country"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
}

// ToEntity converts the request into a domain entity.
func (r CreateClientRequest) ToEntity() *client.Client {
	c := client.New(r.Code, r.Name)
	c.AddressLine1 = r.AddressLine1
	c.AddressLine2 = r.AddressLine2
	c.Country = r.Country
	c.Email = r.Email
	c.Phone = r.Phone
	return c
}

// UpdateClientRequest is the payload for updating a client.
// Name is intentionally absent: the name snapshot on issued quotations
// must stay consistent with the catalog, so renames go through support.
type UpdateClientRequest struct {
	AddressLine1 *string `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2"`
	Country      *string `json:"country"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
}

// ApplyTo applies non-nil fields onto the existing entity.
func (r UpdateClientRequest) ApplyTo(c *client.Client) {
	if r.AddressLine1 != nil {
		c.AddressLine1 = *r.AddressLine1
	}
	if r.AddressLine2 != nil {
		c.AddressLine2 = *r.AddressLine2
	}
	if r.Country != nil {
		c.Country = *r.Country
	}
	if r.Email != nil {
		c.Email = *r.Email
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
}

// ClientResponse is the API representation of a client.
type ClientResponse struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	AddressLine1 string `json:"addressLine1,omitempty"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	Country      string `json:"country,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	DeletionMark bool   `json:"deletionMark"`
	Version      int    `json:"version"`
}

// FromClient converts a domain entity into a response DTO.
func FromClient(c *client.Client) ClientResponse {
	return ClientResponse{
		ID:           c.ID.String(),
		Code:         c.Code,
		Name:         c.Name,
		AddressLine1: c.AddressLine1,
		AddressLine2: c.AddressLine2,
		Country:      c.Country,
		Email:        c.Email,
		Phone:        c.Phone,
		DeletionMark: c.DeletionMark,
		Version:      c.Version,
	}
}
