// Package workflow automates the sale order lifecycle: confirmation,
// invoicing, invoice validation and order closing, driven by per-order
// process settings.
package workflow

import (
	"context"

	"saleflow/internal/core/entity"
	"saleflow/internal/domain"
)

// Process describes which automation steps apply to the orders that
// reference it.
type Process struct {
	entity.Catalog

	// ValidateOrder confirms eligible draft orders
	ValidateOrder bool `db:"validate_order" json:"validateOrder"`

	// CreateInvoice bills confirmed orders that have no invoice yet
	CreateInvoice bool `db:"create_invoice" json:"createInvoice"`

	// ValidateInvoice posts the invoices created by this process
	ValidateInvoice bool `db:"validate_invoice" json:"validateInvoice"`

	// InvoiceDateIsOrderDate pins the invoice date to the order date
	// instead of the run date
	InvoiceDateIsOrderDate bool `db:"invoice_date_is_order_date" json:"invoiceDateIsOrderDate"`

	// SaleDone closes invoiced orders
	SaleDone bool `db:"sale_done" json:"saleDone"`

	// Enabled switches the whole process on and off
	Enabled bool `db:"enabled" json:"enabled"`
}

// NewProcess creates a process with every step disabled.
func NewProcess(code, name string) *Process {
	return &Process{
		Catalog: entity.NewCatalog(code, name),
		Enabled: true,
	}
}

// Validate implements entity.Validatable interface.
func (p *Process) Validate(ctx context.Context) error {
	return p.Catalog.Validate(ctx)
}

// Repository defines data access for workflow processes.
type Repository interface {
	domain.CatalogRepository[*Process]

	// ListEnabled returns the processes that should run.
	ListEnabled(ctx context.Context) ([]*Process, error)
}
