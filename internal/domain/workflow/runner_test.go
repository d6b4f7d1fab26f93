package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/id"
	"saleflow/internal/core/types"
	"saleflow/internal/domain"
	"saleflow/internal/domain/documents/invoice"
	"saleflow/internal/domain/documents/saleorder"
)

type fakeProcessRepo struct {
	domain.CatalogRepository[*Process] // unused CRUD methods
	processes                          []*Process
}

func (f *fakeProcessRepo) ListEnabled(_ context.Context) ([]*Process, error) {
	var enabled []*Process
	for _, p := range f.processes {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}
	return enabled, nil
}

type fakeOrders struct {
	orders map[id.ID]*saleorder.SaleOrder

	// pending marks orders with open validation activities
	pending map[id.ID]bool

	// confirmFails simulates unexpected per-order failures
	confirmFails map[id.ID]bool
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		orders:       make(map[id.ID]*saleorder.SaleOrder),
		pending:      make(map[id.ID]bool),
		confirmFails: make(map[id.ID]bool),
	}
}

func (f *fakeOrders) add(o *saleorder.SaleOrder) *saleorder.SaleOrder {
	f.orders[o.ID] = o
	return o
}

func (f *fakeOrders) List(_ context.Context, filter saleorder.ListFilter) (domain.ListResult[*saleorder.SaleOrder], error) {
	var items []*saleorder.SaleOrder
	for _, o := range f.orders {
		if filter.State != nil && o.State != *filter.State {
			continue
		}
		if filter.ProcessID != nil && (o.WorkflowProcessID == nil || *o.WorkflowProcessID != *filter.ProcessID) {
			continue
		}
		if filter.Invoiced != nil && o.IsInvoiced() != *filter.Invoiced {
			continue
		}
		items = append(items, o)
	}
	return domain.ListResult[*saleorder.SaleOrder]{Items: items, TotalCount: int64(len(items))}, nil
}

func (f *fakeOrders) GetByID(_ context.Context, docID id.ID) (*saleorder.SaleOrder, error) {
	o, ok := f.orders[docID]
	if !ok {
		return nil, apperror.NewNotFound("sale order", docID)
	}
	return o, nil
}

func (f *fakeOrders) Confirm(_ context.Context, docID id.ID) (*saleorder.SaleOrder, error) {
	o := f.orders[docID]
	if f.confirmFails[docID] {
		return nil, errors.New("boom")
	}
	if f.pending[docID] {
		return nil, apperror.NewValidationPending(o.Number, 1)
	}
	if err := o.MarkConfirmed(); err != nil {
		return nil, err
	}
	return o, nil
}

func (f *fakeOrders) Done(_ context.Context, docID id.ID) error {
	return f.orders[docID].MarkDone()
}

func (f *fakeOrders) MarkInvoiced(_ context.Context, docID, invoiceID id.ID) error {
	f.orders[docID].InvoiceID = &invoiceID
	return nil
}

type fakeInvoices struct {
	created   []*invoice.Invoice
	validated []id.ID
}

func (f *fakeInvoices) CreateFromOrder(_ context.Context, order *saleorder.SaleOrder, invoiceDate time.Time) (*invoice.Invoice, error) {
	if order.IsInvoiceBlocked() {
		return nil, apperror.NewInvoiceBlocked(order.Number, *order.InvoiceBlockReason)
	}
	inv := invoice.NewFromOrder(order, invoiceDate)
	inv.Number = "INV-" + order.Number
	f.created = append(f.created, inv)
	return inv, nil
}

func (f *fakeInvoices) Validate(_ context.Context, docID id.ID) error {
	f.validated = append(f.validated, docID)
	return nil
}

func fullProcess() *Process {
	p := NewProcess("WF-ALL", "Confirm, invoice, validate, close")
	p.ValidateOrder = true
	p.CreateInvoice = true
	p.ValidateInvoice = true
	p.InvoiceDateIsOrderDate = true
	p.SaleDone = true
	return p
}

func newOrder(processID id.ID, state saleorder.State) *saleorder.SaleOrder {
	o := saleorder.NewSaleOrder(id.New(), id.New(), id.New(), id.New())
	o.CurrencyID = id.New()
	o.Number = "SO-" + o.ID.String()[:8]
	o.WorkflowProcessID = &processID
	o.AddLine(id.New(), types.NewQuantityFromFloat64(1), types.MustMoney("10"))
	o.State = state
	return o
}

func TestRunFullProcess(t *testing.T) {
	p := fullProcess()
	orders := newFakeOrders()
	invoices := &fakeInvoices{}

	draft := orders.add(newOrder(p.ID, saleorder.StateDraft))
	withActivities := orders.add(newOrder(p.ID, saleorder.StateDraft))
	orders.pending[withActivities.ID] = true
	blocked := orders.add(newOrder(p.ID, saleorder.StateConfirmed))
	blocked.BlockInvoicing("waiting for prepayment")
	plain := orders.add(newOrder(p.ID, saleorder.StateConfirmed))

	runner := NewRunner(&fakeProcessRepo{processes: []*Process{p}}, orders, invoices)

	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.OrdersConfirmed != 1 {
		t.Errorf("confirmed = %d, want 1", report.OrdersConfirmed)
	}
	if report.Skipped != 2 {
		t.Errorf("skipped = %d, want 2 (open activities + invoice block)", report.Skipped)
	}
	if report.InvoicesCreated != 2 || report.InvoicesValidated != 2 {
		t.Errorf("invoices = %d/%d, want 2/2", report.InvoicesCreated, report.InvoicesValidated)
	}
	if report.OrdersDone != 2 {
		t.Errorf("done = %d, want 2", report.OrdersDone)
	}
	if report.Failures != 0 {
		t.Errorf("failures = %d, want 0", report.Failures)
	}

	if draft.State != saleorder.StateDone || plain.State != saleorder.StateDone {
		t.Error("processed orders must end up done")
	}
	if withActivities.State != saleorder.StateDraft {
		t.Error("order with open activities must stay draft")
	}
	if blocked.State != saleorder.StateConfirmed || blocked.IsInvoiced() {
		t.Error("blocked order must stay confirmed and uninvoiced")
	}

	for _, inv := range invoices.created {
		order := orders.orders[inv.OrderID]
		if !inv.Date.Equal(order.Date) {
			t.Errorf("invoice date %v, want order date %v", inv.Date, order.Date)
		}
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	p := fullProcess()
	p.CreateInvoice = false
	p.SaleDone = false

	orders := newFakeOrders()
	failing := orders.add(newOrder(p.ID, saleorder.StateDraft))
	orders.confirmFails[failing.ID] = true
	healthy := orders.add(newOrder(p.ID, saleorder.StateDraft))

	runner := NewRunner(&fakeProcessRepo{processes: []*Process{p}}, orders, &fakeInvoices{})

	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.Failures != 1 {
		t.Errorf("failures = %d, want 1", report.Failures)
	}
	if report.OrdersConfirmed != 1 {
		t.Errorf("confirmed = %d, want 1", report.OrdersConfirmed)
	}
	if healthy.State != saleorder.StateConfirmed {
		t.Error("healthy order must be confirmed despite the failing one")
	}
}

func TestRunDatePinning(t *testing.T) {
	p := fullProcess()
	p.ValidateOrder = false
	p.ValidateInvoice = false
	p.SaleDone = false
	p.InvoiceDateIsOrderDate = false

	orders := newFakeOrders()
	o := orders.add(newOrder(p.ID, saleorder.StateConfirmed))
	o.Date = time.Date(2021, 8, 14, 7, 0, 0, 0, time.UTC)

	invoices := &fakeInvoices{}
	runner := NewRunner(&fakeProcessRepo{processes: []*Process{p}}, orders, invoices)
	runDate := time.Date(2021, 9, 1, 12, 0, 0, 0, time.UTC)
	runner.now = func() time.Time { return runDate }

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(invoices.created) != 1 {
		t.Fatalf("created = %d, want 1", len(invoices.created))
	}
	if !invoices.created[0].Date.Equal(runDate) {
		t.Errorf("invoice date = %v, want run date %v", invoices.created[0].Date, runDate)
	}
}

func TestDisabledProcessDoesNothing(t *testing.T) {
	p := fullProcess()
	p.Enabled = false

	orders := newFakeOrders()
	orders.add(newOrder(p.ID, saleorder.StateDraft))

	runner := NewRunner(&fakeProcessRepo{processes: []*Process{p}}, orders, &fakeInvoices{})

	report, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Processes != 0 {
		t.Errorf("processes = %d, want 0", report.Processes)
	}
}
