package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fabriq/internal/core/apperror"
	"fabriq/internal/core/id"
	"fabriq/internal/domain"
	"fabriq/internal/domain/quotation"
	"fabriq/internal/infrastructure/http/v1/dto"
	"fabriq/internal/infrastructure/storage/postgres"
)

// QuotationHandler serves the quotation endpoints, including the
// lifecycle actions that move a record through its states.
type QuotationHandler struct {
	*BaseHandler
	service *quotation.Service
	audit   *postgres.AuditService // optional
}

// NewQuotationHandler creates the quotation handler.
func NewQuotationHandler(base *BaseHandler, service *quotation.Service) *QuotationHandler {
	return &QuotationHandler{
		BaseHandler: base,
		service:     service,
	}
}

// SetAuditService enables the history endpoint.
func (h *QuotationHandler) SetAuditService(audit *postgres.AuditService) {
	h.audit = audit
}

// List handles GET /quotations.
func (h *QuotationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := quotation.ListFilter{ListFilter: domain.DefaultListFilter()}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if v := c.Query("status"); v != "" {
		status, err := quotation.ParseStatus(v)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.Status = &status
	}

	if v := c.Query("clientId"); v != "" {
		clientID, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid clientId format"))
			return
		}
		filter.ClientID = &clientID
	}

	if v := c.Query("dateFrom"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateFrom, expected RFC3339"))
			return
		}
		filter.DateFrom = &t
	}
	if v := c.Query("dateTo"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateTo, expected RFC3339"))
			return
		}
		filter.DateTo = &t
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.QuotationResponse, len(result.Items))
	for i, q := range result.Items {
		items[i] = dto.FromQuotation(q)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /quotations/:id.
func (h *QuotationHandler) Get(c *gin.Context) {
	quotationID, ok := h.pathID(c)
	if !ok {
		return
	}

	q, err := h.service.GetByID(c.Request.Context(), quotationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromQuotation(q))
}

// GetByNumber handles GET /quotations/by-number/:number.
func (h *QuotationHandler) GetByNumber(c *gin.Context) {
	q, err := h.service.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromQuotation(q))
}

// Create handles POST /quotations.
func (h *QuotationHandler) Create(c *gin.Context) {
	var req dto.CreateQuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	q, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithCause(err))
		return
	}

	if err := h.service.Create(c.Request.Context(), q); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromQuotation(q))
}

// Update handles PUT /quotations/:id.
func (h *QuotationHandler) Update(c *gin.Context) {
	quotationID, ok := h.pathID(c)
	if !ok {
		return
	}

	var req dto.UpdateQuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	q, err := h.service.GetByID(ctx, quotationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(q)
	if err := h.service.Update(ctx, q); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromQuotation(q))
}

// Delete handles DELETE /quotations/:id.
func (h *QuotationHandler) Delete(c *gin.Context) {
	quotationID, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), quotationID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Accept handles POST /quotations/:id/accept.
func (h *QuotationHandler) Accept(c *gin.Context) {
	h.action(c, h.service.Accept)
}

// Cancel handles POST /quotations/:id/cancel.
func (h *QuotationHandler) Cancel(c *gin.Context) {
	h.action(c, h.service.Cancel)
}

// Invoice handles POST /quotations/:id/invoice.
func (h *QuotationHandler) Invoice(c *gin.Context) {
	h.action(c, h.service.Invoice)
}

// Pay handles POST /quotations/:id/pay.
func (h *QuotationHandler) Pay(c *gin.Context) {
	h.action(c, h.service.MarkPaid)
}

// History handles GET /quotations/:id/history.
func (h *QuotationHandler) History(c *gin.Context) {
	if h.audit == nil {
		h.Error(c, apperror.NewNotFound("audit history", c.Param("id")))
		return
	}

	quotationID, ok := h.pathID(c)
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 100)
	entries, err := h.audit.History(c.Request.Context(), quotationID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.AuditEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = dto.AuditEntryResponse{
			ID:        e.ID.String(),
			Number:    e.Number,
			Event:     string(e.Event),
			Payload:   e.Payload,
			UserID:    e.UserID,
			CreatedAt: e.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: int64(len(items)),
		Limit:      limit,
	})
}

// action runs a lifecycle transition and renders the updated record.
func (h *QuotationHandler) action(c *gin.Context, fn func(ctx context.Context, quotationID id.ID) (*quotation.Quotation, error)) {
	quotationID, ok := h.pathID(c)
	if !ok {
		return
	}

	q, err := fn(c.Request.Context(), quotationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromQuotation(q))
}

// RegisterRoutes attaches the quotation routes to a router group.
func (h *QuotationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/by-number/:number", h.GetByNumber)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)

	rg.POST("/:id/accept", h.Accept)
	rg.POST("/:id/cancel", h.Cancel)
	rg.POST("/:id/invoice", h.Invoice)
	rg.POST("/:id/pay", h.Pay)
	rg.GET("/:id/history", h.History)
}

func (h *QuotationHandler) pathID(c *gin.Context) (id.ID, bool) {
	quotationID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return id.Nil(), false
	}
	return quotationID, true
}
