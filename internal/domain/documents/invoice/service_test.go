package invoice

import (
	"context"
	"testing"
	"time"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/id"
	"saleflow/internal/core/numerator"
	"saleflow/internal/core/types"
	"saleflow/internal/domain"
	"saleflow/internal/domain/documents/saleorder"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	invoices map[id.ID]*Invoice
	lines    map[id.ID][]InvoiceLine
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		invoices: make(map[id.ID]*Invoice),
		lines:    make(map[id.ID][]InvoiceLine),
	}
}

func (f *fakeRepo) Create(_ context.Context, doc *Invoice) error {
	f.invoices[doc.ID] = doc
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, docID id.ID) (*Invoice, error) {
	doc, ok := f.invoices[docID]
	if !ok {
		return nil, apperror.NewNotFound("invoice", docID)
	}
	return doc, nil
}

func (f *fakeRepo) GetByOrder(_ context.Context, orderID id.ID) (*Invoice, error) {
	for _, doc := range f.invoices {
		if doc.OrderID == orderID {
			return doc, nil
		}
	}
	return nil, apperror.NewNotFound("invoice", orderID)
}

func (f *fakeRepo) Update(_ context.Context, doc *Invoice) error {
	f.invoices[doc.ID] = doc
	return nil
}

func (f *fakeRepo) GetLines(_ context.Context, docID id.ID) ([]InvoiceLine, error) {
	return f.lines[docID], nil
}

func (f *fakeRepo) SaveLines(_ context.Context, docID id.ID, lines []InvoiceLine) error {
	f.lines[docID] = lines
	return nil
}

func (f *fakeRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*Invoice], error) {
	var items []*Invoice
	for _, doc := range f.invoices {
		items = append(items, doc)
	}
	return domain.ListResult[*Invoice]{Items: items, TotalCount: int64(len(items))}, nil
}

func (f *fakeRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Invoice, error) {
	return f.GetByID(ctx, docID)
}

func numberGen() *numerator.MockGenerator {
	seq := 0
	return &numerator.MockGenerator{
		GetNextNumberFunc: func(_ context.Context, cfg numerator.Config, _ *numerator.Options, _ time.Time) (string, error) {
			seq++
			return cfg.Prefix + "-2021-0000" + string(rune('0'+seq)), nil
		},
	}
}

func confirmedOrder() *saleorder.SaleOrder {
	o := saleorder.NewSaleOrder(id.New(), id.New(), id.New(), id.New())
	o.CurrencyID = id.New()
	o.Number = "SO-2021-00001"
	o.AddLine(id.New(), types.NewQuantityFromFloat64(2), types.MustMoney("25"))
	o.State = saleorder.StateConfirmed
	return o
}

func TestCreateFromOrder(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, numberGen(), fakeTxManager{})
	order := confirmedOrder()

	inv, err := svc.CreateFromOrder(context.Background(), order, order.Date)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if inv.State != StateDraft {
		t.Errorf("state = %s, want draft", inv.State)
	}
	if inv.Number != "INV-2021-00001" {
		t.Errorf("number = %q", inv.Number)
	}
	if inv.OrderID != order.ID || inv.PartnerID != order.PartnerID {
		t.Error("invoice must reference the order and its partner")
	}
	if !inv.Date.Equal(order.Date) {
		t.Errorf("date = %v, want order date %v", inv.Date, order.Date)
	}
	if len(inv.Lines) != 1 || !inv.TotalAmount.Equal(types.MustMoney("50")) {
		t.Errorf("lines = %d, total = %s", len(inv.Lines), inv.TotalAmount)
	}
}

func TestCreateFromOrderRejections(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, numberGen(), fakeTxManager{})
	ctx := context.Background()

	draft := confirmedOrder()
	draft.State = saleorder.StateDraft
	if _, err := svc.CreateFromOrder(ctx, draft, draft.Date); err == nil {
		t.Error("draft order must be rejected")
	}

	blocked := confirmedOrder()
	blocked.BlockInvoicing("waiting for prepayment")
	_, err := svc.CreateFromOrder(ctx, blocked, blocked.Date)
	if !apperror.IsInvoiceBlocked(err) {
		t.Errorf("err = %v, want invoice blocked", err)
	}

	invoiced := confirmedOrder()
	existing := id.New()
	invoiced.InvoiceID = &existing
	if _, err := svc.CreateFromOrder(ctx, invoiced, invoiced.Date); err == nil {
		t.Error("already invoiced order must be rejected")
	}
}

func TestValidateHonorsClosedPeriod(t *testing.T) {
	closedUntil := time.Date(2021, 9, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(newFakeRepo(), NewStrictPolicy(closedUntil), numberGen(), fakeTxManager{})
	ctx := context.Background()

	order := confirmedOrder()
	order.Date = time.Date(2021, 8, 14, 0, 0, 0, 0, time.UTC)

	inv, err := svc.CreateFromOrder(ctx, order, order.Date)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = svc.Validate(ctx, inv.ID)
	if !apperror.IsPeriodClosed(err) {
		t.Fatalf("err = %v, want period closed", err)
	}

	recent, err := svc.CreateFromOrder(ctx, confirmedOrder(), time.Date(2021, 9, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Validate(ctx, recent.ID); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if recent.State != StateValidated {
		t.Errorf("state = %s, want validated", recent.State)
	}
}

func TestValidateTwiceFails(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, numberGen(), fakeTxManager{})
	ctx := context.Background()

	inv, err := svc.CreateFromOrder(ctx, confirmedOrder(), time.Now().UTC())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Validate(ctx, inv.ID); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := svc.Validate(ctx, inv.ID); err == nil {
		t.Fatal("second validate must fail")
	}
}

func TestCancelValidatedFails(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, numberGen(), fakeTxManager{})
	ctx := context.Background()

	inv, err := svc.CreateFromOrder(ctx, confirmedOrder(), time.Now().UTC())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Validate(ctx, inv.ID); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := svc.Cancel(ctx, inv.ID); err == nil {
		t.Fatal("cancelling a validated invoice must fail")
	}
}
