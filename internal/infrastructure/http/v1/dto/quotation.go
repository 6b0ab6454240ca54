package dto

import (
	"time"

	"fabriq/internal/core/id"
	"fabriq/internal/core/types"
	"fabriq/internal/domain/quotation"
)

// CostBreakdownDTO mirrors the quotation cost components.
type CostBreakdownDTO struct {
	PrintingCost types.Money `json:"printingCost"`
	DesignCost   types.Money `json:"designCost"`
	HandlingCost types.Money `json:"handlingCost"`
	MaterialCost types.Money `json:"materialCost"`
	Margin       types.Money `json:"margin"`
	Discount     types.Money `json:"discount"`
}

func (d CostBreakdownDTO) toDomain() quotation.CostBreakdown {
	return quotation.CostBreakdown{
		PrintingCost: d.PrintingCost,
		DesignCost:   d.DesignCost,
		HandlingCost: d.HandlingCost,
		MaterialCost: d.MaterialCost,
		Margin:       d.Margin,
		Discount:     d.Discount,
	}
}

// CreateQuotationRequest is the payload for creating a quotation.
type CreateQuotationRequest struct {
	ClientID   string            `json:"clientId" binding:"required"`
	ClientName string            `json:"clientName" binding:"required"`
	MaterialID string            `json:"materialId"`
	Date       *time.Time        `json:"date"`
	Comment    string            `json:"comment"`
	Costs      *CostBreakdownDTO `json:"costs"`
}

// ToEntity converts the request into a domain entity.
func (r CreateQuotationRequest) ToEntity() (*quotation.Quotation, error) {
	clientID, err := id.Parse(r.ClientID)
	if err != nil {
		return nil, err
	}

	q := quotation.New(clientID, r.ClientName)
	q.Comment = r.Comment

	if r.MaterialID != "" {
		materialID, err := id.Parse(r.MaterialID)
		if err != nil {
			return nil, err
		}
		q.MaterialID = materialID
	}

	if r.Date != nil {
		q.Date = r.Date.UTC()
	}

	if r.Costs != nil {
		q.CostBreakdown = r.Costs.toDomain()
	}

	return q, nil
}

// UpdateQuotationRequest is the payload for updating an editable quotation.
type UpdateQuotationRequest struct {
	Comment *string           `json:"comment"`
	Costs   *CostBreakdownDTO `json:"costs"`
}

// ApplyTo applies non-nil fields onto the existing record.
func (r UpdateQuotationRequest) ApplyTo(q *quotation.Quotation) {
	if r.Comment != nil {
		q.Comment = *r.Comment
	}
	if r.Costs != nil {
		q.CostBreakdown = r.Costs.toDomain()
	}
}

// QuotationResponse is the API representation of a quotation.
type QuotationResponse struct {
	ID            string           `json:"id"`
	Number        string           `json:"number"`
	Date          time.Time        `json:"date"`
	ClientID      string           `json:"clientId"`
	ClientName    string           `json:"clientName"`
	MaterialID    string           `json:"materialId,omitempty"`
	Costs         CostBreakdownDTO `json:"costs"`
	Total         string           `json:"total"`
	Status        string           `json:"status"`
	InvoiceNumber string           `json:"invoiceNumber,omitempty"`
	Comment       string           `json:"comment,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	Version       int              `json:"version"`
}

// FromQuotation converts a domain record into a response DTO.
func FromQuotation(q *quotation.Quotation) QuotationResponse {
	resp := QuotationResponse{
		ID:         q.ID.String(),
		Number:     q.Number,
		Date:       q.Date,
		ClientID:   q.ClientID.String(),
		ClientName: q.ClientName,
		Costs: CostBreakdownDTO{
			PrintingCost: q.PrintingCost,
			DesignCost:   q.DesignCost,
			HandlingCost: q.HandlingCost,
			MaterialCost: q.MaterialCost,
			Margin:       q.Margin,
			Discount:     q.Discount,
		},
		Total:         q.Total.StringFixed(2),
		Status:        string(q.Status),
		InvoiceNumber: q.InvoiceNumber,
		Comment:       q.Comment,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
		Version:       q.Version,
	}

	if !id.IsNil(q.MaterialID) {
		resp.MaterialID = q.MaterialID.String()
	}

	return resp
}
