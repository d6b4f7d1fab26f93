package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/id"
	"saleflow/internal/core/security"
	"saleflow/internal/core/types"
	"saleflow/internal/domain/audit"
	"saleflow/internal/domain/catalogs/company"
	"saleflow/internal/domain/catalogs/partner"
	"saleflow/internal/domain/catalogs/warehouse"
	"saleflow/internal/domain/coupon"
	"saleflow/internal/domain/documents"
	"saleflow/internal/domain/documents/saleorder"
	"saleflow/internal/infrastructure/http/v1/dto"
)

// OrderHandler handles sale order endpoints.
type OrderHandler struct {
	*BaseHandler
	orders     *saleorder.Service
	coupons    *coupon.Service
	companies  *company.Service
	warehouses *warehouse.Service
	partners   *partner.Service
	currencies *documents.CurrencyResolver
	flags      security.FeatureFlagProvider
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(
	base *BaseHandler,
	orders *saleorder.Service,
	coupons *coupon.Service,
	companies *company.Service,
	warehouses *warehouse.Service,
	partners *partner.Service,
	currencies *documents.CurrencyResolver,
	flags security.FeatureFlagProvider,
) *OrderHandler {
	return &OrderHandler{
		BaseHandler: NewBaseHandler(),
		orders:      orders,
		coupons:     coupons,
		companies:   companies,
		warehouses:  warehouses,
		partners:    partners,
		currencies:  currencies,
		flags:       flags,
	}
}

// Create handles POST /orders.
//
// Company, warehouse, pricelist and currency fall back to defaults when
// not given: the default company, the company's warehouse (or the
// default warehouse), the partner's pricelist, and the company's base
// currency.
func (h *OrderHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ordPartner, err := h.partners.GetByID(ctx, req.PartnerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	companyID, defaultWarehouse, err := h.resolveCompany(c, req.CompanyID)
	if err != nil {
		h.Error(c, err)
		return
	}

	warehouseID, err := h.resolveWarehouse(c, req.WarehouseID, defaultWarehouse)
	if err != nil {
		h.Error(c, err)
		return
	}

	var pricelistID id.ID
	switch {
	case req.PricelistID != nil:
		pricelistID = *req.PricelistID
	case ordPartner.PricelistID != nil:
		pricelistID = *ordPartner.PricelistID
	default:
		h.Error(c, apperror.NewValidation("pricelist is required: not given and the partner has no default").
			WithDetail("field", "pricelistId"))
		return
	}

	doc := saleorder.NewSaleOrder(req.PartnerID, warehouseID, companyID, pricelistID)
	doc.ShippingPartnerID = req.ShippingPartnerID
	doc.CommitmentDate = req.CommitmentDate
	doc.WorkflowProcessID = req.WorkflowProcessID
	doc.Comment = req.Comment
	if req.Date != nil {
		doc.Date = *req.Date
	}

	var explicitCurrency id.ID
	if req.CurrencyID != nil {
		explicitCurrency = *req.CurrencyID
	}
	currencyID, err := h.currencies.ResolveForDocument(ctx, explicitCurrency, companyID)
	if err != nil {
		h.Error(c, err)
		return
	}
	doc.CurrencyID = currencyID

	for _, line := range req.Lines {
		doc.AddLine(line.ProductID, types.NewQuantityFromFloat64(line.Quantity), line.UnitPrice)
	}

	audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)

	if err := h.orders.Create(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromOrder(doc)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

func (h *OrderHandler) resolveCompany(c *gin.Context, explicit *id.ID) (id.ID, *id.ID, error) {
	ctx := c.Request.Context()

	if explicit != nil {
		co, err := h.companies.GetByID(ctx, *explicit)
		if err != nil {
			return id.Nil(), nil, err
		}
		return co.ID, co.DefaultWarehouseID, nil
	}

	co, err := h.companies.GetDefault(ctx)
	if err != nil {
		return id.Nil(), nil, err
	}
	return co.ID, co.DefaultWarehouseID, nil
}

func (h *OrderHandler) resolveWarehouse(c *gin.Context, explicit, companyDefault *id.ID) (id.ID, error) {
	ctx := c.Request.Context()

	if explicit != nil {
		return *explicit, nil
	}
	if companyDefault != nil {
		return *companyDefault, nil
	}

	wh, err := h.warehouses.GetDefault(ctx)
	if err != nil {
		return id.Nil(), err
	}
	return wh.ID, nil
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.orders.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromOrder(doc))
}

// List handles GET /orders.
func (h *OrderHandler) List(c *gin.Context) {
	filter := saleorder.ListFilter{}
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
	if v := c.Query("warehouseId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid warehouseId format"))
			return
		}
		filter.WarehouseID = &parsed
	}
	if v := c.Query("state"); v != "" {
		state := saleorder.State(v)
		filter.State = &state
	}
	if v := c.Query("invoiced"); v != "" {
		invoiced := v == "true"
		filter.Invoiced = &invoiced
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

	result, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromOrder(doc)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Delete handles DELETE /orders/:id.
func (h *OrderHandler) Delete(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.orders.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Confirm handles POST /orders/:id/confirm. Confirmation prices the
// lines from the pricelist cache and computes the delivery dates.
func (h *OrderHandler) Confirm(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.orders.Confirm(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(doc))
}

// Done handles POST /orders/:id/done.
func (h *OrderHandler) Done(c *gin.Context) {
	h.transition(c, h.orders.Done)
}

// Cancel handles POST /orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	h.transition(c, h.orders.Cancel)
}

func (h *OrderHandler) transition(c *gin.Context, step func(ctx context.Context, docID id.ID) error) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := step(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.orders.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOrder(doc))
}

// ApplyCoupon handles POST /orders/:id/apply-coupon.
func (h *OrderHandler) ApplyCoupon(c *gin.Context) {
	ctx := c.Request.Context()

	if !h.flags.IsEnabled(ctx, security.FlagCouponRedemption) {
		h.Error(c, apperror.NewBusinessRule("COUPONS_DISABLED",
			"coupon redemption is currently disabled"))
		return
	}

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.ApplyCouponRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.orders.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	application, err := h.coupons.Apply(ctx, doc, req.Code)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromApplication(application))
}

// BlockInvoicing handles POST /orders/:id/block-invoicing.
func (h *OrderHandler) BlockInvoicing(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.BlockInvoicingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.orders.BlockInvoicing(c.Request.Context(), docID, req.Reason); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "invoicing blocked")
}

// UnblockInvoicing handles POST /orders/:id/unblock-invoicing.
func (h *OrderHandler) UnblockInvoicing(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.orders.UnblockInvoicing(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "invoicing unblocked")
}

// AddActivity handles POST /orders/:id/activities.
func (h *OrderHandler) AddActivity(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.AddActivityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	activity, err := h.orders.AddActivity(c.Request.Context(), docID, req.Title)
	if err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromActivity(activity)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// ListActivities handles GET /orders/:id/activities.
func (h *OrderHandler) ListActivities(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	activities, err := h.orders.ListActivities(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.ActivityResponse, len(activities))
	for i, a := range activities {
		items[i] = dto.FromActivity(a)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CompleteActivity handles POST /activities/:id/complete.
func (h *OrderHandler) CompleteActivity(c *gin.Context) {
	activityID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.CompleteActivityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doneBy := h.GetUserID(c)
	if err := h.orders.CompleteActivity(c.Request.Context(), activityID, doneBy, req.Note); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "activity completed")
}
