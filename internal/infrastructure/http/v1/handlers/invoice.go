package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/id"
	"saleflow/internal/domain/documents/invoice"
	"saleflow/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler handles invoice endpoints. Invoices are created by the
// workflow runner, not over HTTP; these endpoints read and transition.
type InvoiceHandler struct {
	*BaseHandler
	invoices *invoice.Service
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, invoices *invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler: base,
		invoices:    invoices,
	}
}

// Get handles GET /invoices/:id.
func (h *InvoiceHandler) Get(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.invoices.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromInvoice(doc))
}

// List handles GET /invoices.
func (h *InvoiceHandler) List(c *gin.Context) {
	filter := invoice.ListFilter{}
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.Search = c.Query("search")
	filter.OrderBy = c.DefaultQuery("orderBy", "date")

	if v := c.Query("partnerId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid partnerId format"))
			return
		}
		filter.PartnerID = &parsed
	}
	if v := c.Query("orderId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid orderId format"))
			return
		}
		filter.OrderID = &parsed
	}
	if v := c.Query("state"); v != "" {
		state := invoice.State(v)
		filter.State = &state
	}
	if v := c.Query("dateFrom"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateFrom format (YYYY-MM-DD expected)"))
			return
		}
		filter.DateFrom = &t
	}
	if v := c.Query("dateTo"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateTo format (YYYY-MM-DD expected)"))
			return
		}
		filter.DateTo = &t
	}

	result, err := h.invoices.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromInvoice(doc)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Validate handles POST /invoices/:id/validate.
func (h *InvoiceHandler) Validate(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.invoices.Validate(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.invoices.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoice(doc))
}

// Cancel handles POST /invoices/:id/cancel.
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.invoices.Cancel(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "invoice cancelled")
}
