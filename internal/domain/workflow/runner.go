package workflow

import (
	"context"
	"fmt"
	"time"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/id"
	"saleflow/internal/domain"
	"saleflow/internal/domain/documents/invoice"
	"saleflow/internal/domain/documents/saleorder"
	"saleflow/pkg/logger"
)

// OrderSource is the slice of the sale order service the runner needs.
type OrderSource interface {
	List(ctx context.Context, filter saleorder.ListFilter) (domain.ListResult[*saleorder.SaleOrder], error)
	GetByID(ctx context.Context, docID id.ID) (*saleorder.SaleOrder, error)
	Confirm(ctx context.Context, docID id.ID) (*saleorder.SaleOrder, error)
	Done(ctx context.Context, docID id.ID) error
	MarkInvoiced(ctx context.Context, docID, invoiceID id.ID) error
}

// InvoiceSink creates and validates invoices for processed orders.
type InvoiceSink interface {
	CreateFromOrder(ctx context.Context, order *saleorder.SaleOrder, invoiceDate time.Time) (*invoice.Invoice, error)
	Validate(ctx context.Context, docID id.ID) error
}

// Report summarizes one workflow run.
type Report struct {
	Processes         int `json:"processes"`
	OrdersConfirmed   int `json:"ordersConfirmed"`
	InvoicesCreated   int `json:"invoicesCreated"`
	InvoicesValidated int `json:"invoicesValidated"`
	OrdersDone        int `json:"ordersDone"`

	// Skipped counts orders held back by an expected condition: open
	// validation activities or an invoice block.
	Skipped int `json:"skipped"`

	// Failures counts orders whose step errored; the batch continues.
	Failures int `json:"failures"`
}

// Runner executes the automation steps of every enabled process.
// Each order is handled inside its own service transaction, so one
// failure never aborts the batch.
type Runner struct {
	processes Repository
	orders    OrderSource
	invoices  InvoiceSink
	now       func() time.Time
}

// NewRunner creates a workflow runner.
func NewRunner(processes Repository, orders OrderSource, invoices InvoiceSink) *Runner {
	return &Runner{
		processes: processes,
		orders:    orders,
		invoices:  invoices,
		now:       time.Now,
	}
}

// Run executes every enabled process once and reports what happened.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	var report Report

	processes, err := r.processes.ListEnabled(ctx)
	if err != nil {
		return report, fmt.Errorf("list processes: %w", err)
	}

	for _, p := range processes {
		report.Processes++
		r.runProcess(ctx, p, &report)
	}

	logger.Info(ctx, "workflow run finished",
		"processes", report.Processes,
		"confirmed", report.OrdersConfirmed,
		"invoiced", report.InvoicesCreated,
		"validated", report.InvoicesValidated,
		"done", report.OrdersDone,
		"skipped", report.Skipped,
		"failures", report.Failures,
	)
	return report, nil
}

func (r *Runner) runProcess(ctx context.Context, p *Process, report *Report) {
	if p.ValidateOrder {
		r.confirmOrders(ctx, p, report)
	}
	if p.CreateInvoice {
		r.invoiceOrders(ctx, p, report)
	}
	if p.SaleDone {
		r.closeOrders(ctx, p, report)
	}
}

func (r *Runner) confirmOrders(ctx context.Context, p *Process, report *Report) {
	orders, err := r.listOrders(ctx, p, saleorder.StateDraft, nil)
	if err != nil {
		logger.Error(ctx, "list draft orders", "process", p.Code, "error", err)
		report.Failures++
		return
	}

	for _, o := range orders {
		if _, err := r.orders.Confirm(ctx, o.ID); err != nil {
			if apperror.IsValidationPending(err) {
				logger.Debug(ctx, "order has open validation activities", "order", o.Number)
				report.Skipped++
				continue
			}
			logger.Warn(ctx, "confirm order", "order", o.Number, "error", err)
			report.Failures++
			continue
		}
		report.OrdersConfirmed++
	}
}

func (r *Runner) invoiceOrders(ctx context.Context, p *Process, report *Report) {
	uninvoiced := false
	orders, err := r.listOrders(ctx, p, saleorder.StateConfirmed, &uninvoiced)
	if err != nil {
		logger.Error(ctx, "list confirmed orders", "process", p.Code, "error", err)
		report.Failures++
		return
	}

	for _, stub := range orders {
		if stub.IsInvoiceBlocked() {
			logger.Debug(ctx, "order blocked for invoicing",
				"order", stub.Number, "reason", *stub.InvoiceBlockReason)
			report.Skipped++
			continue
		}

		// Reload with lines; listings carry the header only.
		order, err := r.orders.GetByID(ctx, stub.ID)
		if err != nil {
			logger.Warn(ctx, "load order", "order", stub.Number, "error", err)
			report.Failures++
			continue
		}

		invoiceDate := r.now().UTC()
		if p.InvoiceDateIsOrderDate {
			invoiceDate = order.Date
		}

		inv, err := r.invoices.CreateFromOrder(ctx, order, invoiceDate)
		if err != nil {
			logger.Warn(ctx, "create invoice", "order", order.Number, "error", err)
			report.Failures++
			continue
		}
		if err := r.orders.MarkInvoiced(ctx, order.ID, inv.ID); err != nil {
			logger.Warn(ctx, "mark invoiced", "order", order.Number, "error", err)
			report.Failures++
			continue
		}
		report.InvoicesCreated++

		if p.ValidateInvoice {
			if err := r.invoices.Validate(ctx, inv.ID); err != nil {
				logger.Warn(ctx, "validate invoice", "invoice", inv.Number, "error", err)
				report.Failures++
				continue
			}
			report.InvoicesValidated++
		}
	}
}

func (r *Runner) closeOrders(ctx context.Context, p *Process, report *Report) {
	invoiced := true
	orders, err := r.listOrders(ctx, p, saleorder.StateConfirmed, &invoiced)
	if err != nil {
		logger.Error(ctx, "list invoiced orders", "process", p.Code, "error", err)
		report.Failures++
		return
	}

	for _, o := range orders {
		if err := r.orders.Done(ctx, o.ID); err != nil {
			logger.Warn(ctx, "close order", "order", o.Number, "error", err)
			report.Failures++
			continue
		}
		report.OrdersDone++
	}
}

func (r *Runner) listOrders(ctx context.Context, p *Process, state saleorder.State, invoiced *bool) ([]*saleorder.SaleOrder, error) {
	filter := saleorder.ListFilter{
		State:     &state,
		ProcessID: &p.ID,
		Invoiced:  invoiced,
	}
	filter.Limit = 0 // the whole batch

	result, err := r.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}
