// Package saleorder provides the SaleOrder document.
package saleorder

import (
	"context"
	"time"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/entity"
	"saleflow/internal/core/id"
	"saleflow/internal/core/types"
	"saleflow/internal/domain/schedule"
)

// State is the lifecycle state of a sale order.
type State string

const (
	StateDraft     State = "draft"
	StateConfirmed State = "confirmed"
	StateDone      State = "done"
	StateCancelled State = "cancelled"
)

func (s State) Valid() bool {
	switch s {
	case StateDraft, StateConfirmed, StateDone, StateCancelled:
		return true
	}
	return false
}

// SaleOrder represents a customer order.
// Delivery dates and line prices are computed on confirmation.
type SaleOrder struct {
	entity.Document

	// PartnerID is the ordering customer
	PartnerID id.ID `db:"partner_id" json:"partnerId"`

	// ShippingPartnerID is the delivery address; nil means ship to the
	// ordering partner
	ShippingPartnerID *id.ID `db:"shipping_partner_id" json:"shippingPartnerId,omitempty"`

	// WarehouseID is the warehouse the order ships from
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// CompanyID is the selling company
	CompanyID id.ID `db:"company_id" json:"companyId"`

	// PricelistID selects the price cache used for line pricing
	PricelistID id.ID `db:"pricelist_id" json:"pricelistId"`

	// Currency support trait
	entity.CurrencyAware

	// State is the lifecycle state
	State State `db:"state" json:"state"`

	// CommitmentDate is the delivery promise given to the customer;
	// when set, date computation works backward from it
	CommitmentDate *time.Time `db:"commitment_date" json:"commitmentDate,omitempty"`

	// ExpectedDate is the computed delivery moment shown to the customer
	ExpectedDate *time.Time `db:"expected_date" json:"expectedDate,omitempty"`

	// DatePlanned is when warehouse preparation must start
	DatePlanned *time.Time `db:"date_planned" json:"datePlanned,omitempty"`

	// DateDeadline is the promised delivery moment for procurement
	DateDeadline *time.Time `db:"date_deadline" json:"dateDeadline,omitempty"`

	// WorkflowProcessID links the order to an automatic workflow process
	WorkflowProcessID *id.ID `db:"workflow_process_id" json:"workflowProcessId,omitempty"`

	// InvoiceBlockReason, when set, prevents automatic invoicing
	InvoiceBlockReason *string `db:"invoice_block_reason" json:"invoiceBlockReason,omitempty"`

	// InvoiceID is set once the order has been invoiced
	InvoiceID *id.ID `db:"invoice_id" json:"invoiceId,omitempty"`

	// Totals (calculated from lines)
	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   types.Money    `db:"total_amount" json:"totalAmount"`

	// Table part: ordered goods
	Lines []SaleOrderLine `db:"-" json:"lines"`
}

// SaleOrderLine represents a line of a sale order.
type SaleOrderLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`

	// UnitPrice comes from the pricelist cache at confirmation; a price
	// set by hand before confirmation is kept
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	Amount    types.Money `db:"amount" json:"amount"`

	// CustomerLeadDays is the promised delay for this line, copied from
	// the product on confirmation
	CustomerLeadDays float64 `db:"customer_lead_days" json:"customerLeadDays"`

	// ExpectedDate is the computed delivery moment for this line
	ExpectedDate *time.Time `db:"expected_date" json:"expectedDate,omitempty"`
}

// NewSaleOrder creates a new draft order.
func NewSaleOrder(partnerID, warehouseID, companyID, pricelistID id.ID) *SaleOrder {
	return &SaleOrder{
		Document:    entity.NewDocument(),
		PartnerID:   partnerID,
		WarehouseID: warehouseID,
		CompanyID:   companyID,
		PricelistID: pricelistID,
		State:       StateDraft,
		TotalAmount: types.Zero(),
		Lines:       make([]SaleOrderLine, 0),
	}
}

// AddLine adds a line and recalculates totals. A zero unitPrice means
// the price will be resolved from the pricelist cache on confirmation.
func (o *SaleOrder) AddLine(productID id.ID, quantity types.Quantity, unitPrice types.Money) {
	line := SaleOrderLine{
		LineID:    id.New(),
		LineNo:    len(o.Lines) + 1,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    lineAmount(unitPrice, quantity),
	}

	o.Lines = append(o.Lines, line)
	o.RecalculateTotals()
}

func lineAmount(unitPrice types.Money, quantity types.Quantity) types.Money {
	return unitPrice.Mul(decimalQuantity(quantity))
}

func decimalQuantity(q types.Quantity) types.Money {
	return types.NewMoney(q.Float64())
}

// RecalculateTotals recomputes line amounts and document totals.
func (o *SaleOrder) RecalculateTotals() {
	o.TotalQuantity = types.Quantity(0)
	o.TotalAmount = types.Zero()

	for i := range o.Lines {
		o.Lines[i].Amount = lineAmount(o.Lines[i].UnitPrice, o.Lines[i].Quantity)
		o.TotalQuantity += o.Lines[i].Quantity
		o.TotalAmount = o.TotalAmount.Add(o.Lines[i].Amount)
	}
}

// ShippingPartner returns the effective delivery address partner ID.
func (o *SaleOrder) ShippingPartner() id.ID {
	if o.ShippingPartnerID != nil {
		return *o.ShippingPartnerID
	}
	return o.PartnerID
}

// IsInvoiceBlocked reports whether automatic invoicing is held back.
func (o *SaleOrder) IsInvoiceBlocked() bool {
	return o.InvoiceBlockReason != nil && *o.InvoiceBlockReason != ""
}

// BlockInvoicing sets the invoice blocking reason.
func (o *SaleOrder) BlockInvoicing(reason string) {
	o.InvoiceBlockReason = &reason
}

// UnblockInvoicing clears the invoice blocking reason.
func (o *SaleOrder) UnblockInvoicing() {
	o.InvoiceBlockReason = nil
}

// IsInvoiced reports whether an invoice has been created for the order.
func (o *SaleOrder) IsInvoiced() bool {
	return o.InvoiceID != nil
}

// CanModify returns nil if the order can still be edited.
func (o *SaleOrder) CanModify() error {
	if o.State != StateDraft {
		return apperror.NewBusinessRule("ORDER_NOT_DRAFT",
			"only draft orders can be modified").
			WithDetail("number", o.Number).
			WithDetail("state", string(o.State))
	}
	return nil
}

// MarkConfirmed transitions draft -> confirmed.
func (o *SaleOrder) MarkConfirmed() error {
	if o.State != StateDraft {
		return apperror.NewBusinessRule("ORDER_NOT_DRAFT",
			"only draft orders can be confirmed").
			WithDetail("number", o.Number).
			WithDetail("state", string(o.State))
	}
	o.State = StateConfirmed
	return nil
}

// MarkDone transitions confirmed -> done.
func (o *SaleOrder) MarkDone() error {
	if o.State != StateConfirmed {
		return apperror.NewBusinessRule("ORDER_NOT_CONFIRMED",
			"only confirmed orders can be closed").
			WithDetail("number", o.Number).
			WithDetail("state", string(o.State))
	}
	o.State = StateDone
	return nil
}

// MarkCancelled transitions draft or confirmed -> cancelled.
func (o *SaleOrder) MarkCancelled() error {
	if o.State != StateDraft && o.State != StateConfirmed {
		return apperror.NewBusinessRule("ORDER_NOT_CANCELLABLE",
			"done orders cannot be cancelled").
			WithDetail("number", o.Number).
			WithDetail("state", string(o.State))
	}
	o.State = StateCancelled
	return nil
}

// ScheduleInput carries the delivery configuration resolved from the
// warehouse, shipping partner and company for date computation.
type ScheduleInput struct {
	SecurityLead float64
	Calendar     schedule.WorkingCalendar
	Cutoff       *schedule.CutoffSpec
	Preference   schedule.ShippingPreference
	Windows      schedule.DeliveryWindows
}

// ScheduleLine assembles the computation input for one order line.
func (o *SaleOrder) ScheduleLine(line SaleOrderLine, cfg ScheduleInput) schedule.OrderLine {
	customerLead := line.CustomerLeadDays
	if customerLead < cfg.SecurityLead {
		customerLead = cfg.SecurityLead
	}
	return schedule.OrderLine{
		CustomerLead:   customerLead,
		SecurityLead:   cfg.SecurityLead,
		CommitmentDate: o.CommitmentDate,
		Calendar:       cfg.Calendar,
		Cutoff:         cfg.Cutoff,
		Preference:     cfg.Preference,
		Windows:        cfg.Windows,
	}
}

// Validate implements entity.Validatable.
func (o *SaleOrder) Validate(ctx context.Context) error {
	if err := o.Document.Validate(ctx); err != nil {
		return err
	}

	if err := o.CurrencyAware.ValidateCurrency(ctx); err != nil {
		return err
	}

	if !o.State.Valid() {
		return apperror.NewValidation("invalid order state").
			WithDetail("field", "state").
			WithDetail("value", string(o.State))
	}

	if id.IsNil(o.PartnerID) {
		return apperror.NewValidation("partner is required").
			WithDetail("field", "partnerId")
	}

	if id.IsNil(o.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}

	if id.IsNil(o.PricelistID) {
		return apperror.NewValidation("pricelist is required").
			WithDetail("field", "pricelistId")
	}

	if len(o.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range o.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	if o.CommitmentDate != nil && o.CommitmentDate.Before(o.Date) {
		return apperror.NewValidation("commitment date cannot precede the order date").
			WithDetail("field", "commitmentDate")
	}

	return nil
}
