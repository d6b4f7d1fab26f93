// Package invoice provides the customer Invoice document.
package invoice

import (
	"context"
	"time"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/entity"
	"saleflow/internal/core/id"
	"saleflow/internal/core/types"
	"saleflow/internal/domain/documents/saleorder"
)

// State is the lifecycle state of an invoice.
type State string

const (
	StateDraft     State = "draft"
	StateValidated State = "validated"
	StateCancelled State = "cancelled"
)

func (s State) Valid() bool {
	switch s {
	case StateDraft, StateValidated, StateCancelled:
		return true
	}
	return false
}

// Invoice bills a confirmed sale order.
type Invoice struct {
	entity.Document

	// OrderID is the invoiced sale order
	OrderID id.ID `db:"order_id" json:"orderId"`

	// PartnerID is the billed customer
	PartnerID id.ID `db:"partner_id" json:"partnerId"`

	// CompanyID is the issuing company
	CompanyID id.ID `db:"company_id" json:"companyId"`

	// Currency support trait
	entity.CurrencyAware

	// State is the lifecycle state
	State State `db:"state" json:"state"`

	// Totals (copied from the order lines)
	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   types.Money    `db:"total_amount" json:"totalAmount"`

	// Table part: billed goods
	Lines []InvoiceLine `db:"-" json:"lines"`
}

// InvoiceLine represents a billed order line.
type InvoiceLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Amount    types.Money    `db:"amount" json:"amount"`
}

// NewFromOrder builds a draft invoice from a confirmed order.
// invoiceDate is typically today; automatic workflow may pin it to the
// order date instead.
func NewFromOrder(order *saleorder.SaleOrder, invoiceDate time.Time) *Invoice {
	inv := &Invoice{
		Document:  entity.NewDocument(),
		OrderID:   order.ID,
		PartnerID: order.PartnerID,
		CompanyID: order.CompanyID,
		State:     StateDraft,
	}
	inv.Date = invoiceDate
	inv.CurrencyID = order.CurrencyID

	for _, line := range order.Lines {
		inv.Lines = append(inv.Lines, InvoiceLine{
			LineID:    id.New(),
			LineNo:    line.LineNo,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Amount:    line.Amount,
		})
	}
	inv.TotalQuantity = order.TotalQuantity
	inv.TotalAmount = order.TotalAmount

	return inv
}

// MarkValidated transitions draft -> validated.
func (i *Invoice) MarkValidated() error {
	if i.State != StateDraft {
		return apperror.NewBusinessRule("INVOICE_NOT_DRAFT",
			"only draft invoices can be validated").
			WithDetail("number", i.Number).
			WithDetail("state", string(i.State))
	}
	i.State = StateValidated
	return nil
}

// MarkCancelled transitions draft -> cancelled.
func (i *Invoice) MarkCancelled() error {
	if i.State != StateDraft {
		return apperror.NewBusinessRule("INVOICE_NOT_DRAFT",
			"validated invoices cannot be cancelled").
			WithDetail("number", i.Number).
			WithDetail("state", string(i.State))
	}
	i.State = StateCancelled
	return nil
}

// Validate implements entity.Validatable.
func (i *Invoice) Validate(ctx context.Context) error {
	if err := i.Document.Validate(ctx); err != nil {
		return err
	}

	if err := i.CurrencyAware.ValidateCurrency(ctx); err != nil {
		return err
	}

	if !i.State.Valid() {
		return apperror.NewValidation("invalid invoice state").
			WithDetail("field", "state").
			WithDetail("value", string(i.State))
	}

	if id.IsNil(i.OrderID) {
		return apperror.NewValidation("order is required").
			WithDetail("field", "orderId")
	}

	if id.IsNil(i.PartnerID) {
		return apperror.NewValidation("partner is required").
			WithDetail("field", "partnerId")
	}

	if len(i.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	return nil
}
