package dto

import (
	"time"

	"saleflow/internal/core/id"
	"saleflow/internal/core/types"
	"saleflow/internal/domain/coupon"
	"saleflow/internal/domain/documents/saleorder"
)

// --- Request DTOs ---

// OrderLineRequest is one line of a new order. A zero unit price means
// the price is resolved from the pricelist cache on confirmation.
type OrderLineRequest struct {
	ProductID id.ID       `json:"productId" binding:"required"`
	Quantity  float64     `json:"quantity" binding:"required,gt=0"`
	UnitPrice types.Money `json:"unitPrice"`
}

// CreateOrderRequest is the request body for creating a sale order.
type CreateOrderRequest struct {
	PartnerID         id.ID              `json:"partnerId" binding:"required"`
	ShippingPartnerID *id.ID             `json:"shippingPartnerId"`
	WarehouseID       *id.ID             `json:"warehouseId"`
	CompanyID         *id.ID             `json:"companyId"`
	PricelistID       *id.ID             `json:"pricelistId"`
	CurrencyID        *id.ID             `json:"currencyId"`
	Date              *time.Time         `json:"date"`
	CommitmentDate    *time.Time         `json:"commitmentDate"`
	WorkflowProcessID *id.ID             `json:"workflowProcessId"`
	Comment           string             `json:"comment"`
	Lines             []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// --- Order sub-resources ---

// ApplyCouponRequest redeems a coupon against an order.
type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// ApplyCouponResponse reports the redemption outcome.
type ApplyCouponResponse struct {
	CouponCode  string      `json:"couponCode"`
	OrderID     id.ID       `json:"orderId"`
	Consumed    types.Money `json:"consumed"`
	Discount    types.Money `json:"discount"`
	Remaining   types.Money `json:"remaining"`
	CouponState string      `json:"couponState"`
}

// FromApplication converts the domain coupon application.
func FromApplication(a *coupon.Application) *ApplyCouponResponse {
	return &ApplyCouponResponse{
		CouponCode:  a.CouponCode,
		OrderID:     a.OrderID,
		Consumed:    a.Consumed,
		Discount:    a.Discount,
		Remaining:   a.Remaining,
		CouponState: string(a.CouponState),
	}
}

// BlockInvoicingRequest sets the invoice blocking reason on an order.
type BlockInvoicingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AddActivityRequest opens a validation activity on an order.
type AddActivityRequest struct {
	Title string `json:"title" binding:"required"`
}

// CompleteActivityRequest marks an activity done.
type CompleteActivityRequest struct {
	Note string `json:"note"`
}

// ActivityResponse is the API representation of a validation activity.
type ActivityResponse struct {
	ID        id.ID      `json:"id"`
	OrderID   id.ID      `json:"orderId"`
	Title     string     `json:"title"`
	Note      string     `json:"note,omitempty"`
	Done      bool       `json:"done"`
	DoneAt    *time.Time `json:"doneAt,omitempty"`
	DoneBy    string     `json:"doneBy,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// FromActivity converts a domain activity.
func FromActivity(a *saleorder.ValidationActivity) *ActivityResponse {
	return &ActivityResponse{
		ID:        a.ID,
		OrderID:   a.OrderID,
		Title:     a.Title,
		Note:      a.Note,
		Done:      a.Done,
		DoneAt:    a.DoneAt,
		DoneBy:    a.DoneBy,
		CreatedAt: a.CreatedAt,
	}
}

// --- Response DTOs ---

// OrderLineResponse is the API representation of an order line.
type OrderLineResponse struct {
	LineID           id.ID       `json:"lineId"`
	LineNo           int         `json:"lineNo"`
	ProductID        id.ID       `json:"productId"`
	Quantity         float64     `json:"quantity"`
	UnitPrice        types.Money `json:"unitPrice"`
	Amount           types.Money `json:"amount"`
	CustomerLeadDays float64     `json:"customerLeadDays"`
	ExpectedDate     *time.Time  `json:"expectedDate,omitempty"`
}

// OrderResponse is the API representation of a sale order.
type OrderResponse struct {
	DocumentResponse
	PartnerID          id.ID               `json:"partnerId"`
	ShippingPartnerID  *id.ID              `json:"shippingPartnerId,omitempty"`
	WarehouseID        id.ID               `json:"warehouseId"`
	CompanyID          id.ID               `json:"companyId"`
	PricelistID        id.ID               `json:"pricelistId"`
	CurrencyID         id.ID               `json:"currencyId"`
	State              string              `json:"state"`
	CommitmentDate     *time.Time          `json:"commitmentDate,omitempty"`
	ExpectedDate       *time.Time          `json:"expectedDate,omitempty"`
	DatePlanned        *time.Time          `json:"datePlanned,omitempty"`
	DateDeadline       *time.Time          `json:"dateDeadline,omitempty"`
	WorkflowProcessID  *id.ID              `json:"workflowProcessId,omitempty"`
	InvoiceBlockReason *string             `json:"invoiceBlockReason,omitempty"`
	InvoiceID          *id.ID              `json:"invoiceId,omitempty"`
	TotalQuantity      float64             `json:"totalQuantity"`
	TotalAmount        types.Money         `json:"totalAmount"`
	Lines              []OrderLineResponse `json:"lines"`
}

// FromOrder converts a domain sale order.
func FromOrder(o *saleorder.SaleOrder) *OrderResponse {
	lines := make([]OrderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineResponse{
			LineID:           l.LineID,
			LineNo:           l.LineNo,
			ProductID:        l.ProductID,
			Quantity:         l.Quantity.Float64(),
			UnitPrice:        l.UnitPrice,
			Amount:           l.Amount,
			CustomerLeadDays: l.CustomerLeadDays,
			ExpectedDate:     l.ExpectedDate,
		}
	}

	return &OrderResponse{
		DocumentResponse:   FromDocument(o.Document),
		PartnerID:          o.PartnerID,
		ShippingPartnerID:  o.ShippingPartnerID,
		WarehouseID:        o.WarehouseID,
		CompanyID:          o.CompanyID,
		PricelistID:        o.PricelistID,
		CurrencyID:         o.CurrencyID,
		State:              string(o.State),
		CommitmentDate:     o.CommitmentDate,
		ExpectedDate:       o.ExpectedDate,
		DatePlanned:        o.DatePlanned,
		DateDeadline:       o.DateDeadline,
		WorkflowProcessID:  o.WorkflowProcessID,
		InvoiceBlockReason: o.InvoiceBlockReason,
		InvoiceID:          o.InvoiceID,
		TotalQuantity:      o.TotalQuantity.Float64(),
		TotalAmount:        o.TotalAmount,
		Lines:              lines,
	}
}
