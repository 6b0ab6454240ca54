// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"encoding/json"
	"time"
)

// IDResponse returns the identifier of a created resource.
type IDResponse struct {
	ID string `json:"id"`
}

// AuditEntryResponse is one row of a quotation's audit trail.
type AuditEntryResponse struct {
	ID        string          `json:"id"`
	Number    string          `json:"number"`
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}
