package saleorder

import (
	"context"
	"testing"
	"time"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/id"
	"saleflow/internal/core/numerator"
	"saleflow/internal/core/types"
	"saleflow/internal/domain"
	"saleflow/internal/domain/catalogs/company"
	"saleflow/internal/domain/catalogs/partner"
	"saleflow/internal/domain/catalogs/product"
	"saleflow/internal/domain/catalogs/warehouse"
	"saleflow/internal/domain/schedule"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed
}

type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeOrderRepo struct {
	orders  map[id.ID]*SaleOrder
	lines   map[id.ID][]SaleOrderLine
	updates int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[id.ID]*SaleOrder),
		lines:  make(map[id.ID][]SaleOrderLine),
	}
}

func (f *fakeOrderRepo) Create(_ context.Context, doc *SaleOrder) error {
	f.orders[doc.ID] = doc
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, docID id.ID) (*SaleOrder, error) {
	doc, ok := f.orders[docID]
	if !ok {
		return nil, apperror.NewNotFound("sale order", docID)
	}
	return doc, nil
}

func (f *fakeOrderRepo) GetByNumber(_ context.Context, number string) (*SaleOrder, error) {
	for _, doc := range f.orders {
		if doc.Number == number {
			return doc, nil
		}
	}
	return nil, apperror.NewNotFound("sale order", number)
}

func (f *fakeOrderRepo) Update(_ context.Context, doc *SaleOrder) error {
	f.orders[doc.ID] = doc
	f.updates++
	return nil
}

func (f *fakeOrderRepo) Delete(_ context.Context, docID id.ID) error {
	delete(f.orders, docID)
	return nil
}

func (f *fakeOrderRepo) GetLines(_ context.Context, docID id.ID) ([]SaleOrderLine, error) {
	return f.lines[docID], nil
}

func (f *fakeOrderRepo) SaveLines(_ context.Context, docID id.ID, lines []SaleOrderLine) error {
	f.lines[docID] = lines
	return nil
}

func (f *fakeOrderRepo) List(_ context.Context, _ ListFilter) (domain.ListResult[*SaleOrder], error) {
	var items []*SaleOrder
	for _, doc := range f.orders {
		items = append(items, doc)
	}
	return domain.ListResult[*SaleOrder]{Items: items, TotalCount: int64(len(items))}, nil
}

func (f *fakeOrderRepo) GetForUpdate(ctx context.Context, docID id.ID) (*SaleOrder, error) {
	return f.GetByID(ctx, docID)
}

type fakeActivityRepo struct {
	activities map[id.ID]*ValidationActivity
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{activities: make(map[id.ID]*ValidationActivity)}
}

func (f *fakeActivityRepo) Create(_ context.Context, a *ValidationActivity) error {
	f.activities[a.ID] = a
	return nil
}

func (f *fakeActivityRepo) GetByID(_ context.Context, activityID id.ID) (*ValidationActivity, error) {
	a, ok := f.activities[activityID]
	if !ok {
		return nil, apperror.NewNotFound("activity", activityID)
	}
	return a, nil
}

func (f *fakeActivityRepo) Update(_ context.Context, a *ValidationActivity) error {
	f.activities[a.ID] = a
	return nil
}

func (f *fakeActivityRepo) ListOpen(_ context.Context, orderID id.ID) ([]*ValidationActivity, error) {
	var open []*ValidationActivity
	for _, a := range f.activities {
		if a.OrderID == orderID && !a.Done {
			open = append(open, a)
		}
	}
	return open, nil
}

func (f *fakeActivityRepo) ListByOrder(_ context.Context, orderID id.ID) ([]*ValidationActivity, error) {
	var all []*ValidationActivity
	for _, a := range f.activities {
		if a.OrderID == orderID {
			all = append(all, a)
		}
	}
	return all, nil
}

type fakePriceSource struct {
	prices    map[id.ID]types.Money
	askedAt   []time.Time
	askedList []id.ID
}

func (f *fakePriceSource) GetPrices(_ context.Context, pricelistID id.ID, productIDs []id.ID, atDate time.Time) (map[id.ID]types.Money, error) {
	f.askedAt = append(f.askedAt, atDate)
	f.askedList = append(f.askedList, pricelistID)

	result := make(map[id.ID]types.Money)
	for _, productID := range productIDs {
		if price, ok := f.prices[productID]; ok {
			result[productID] = price
		}
	}
	return result, nil
}

type fakeWarehouseSource struct{ wh *warehouse.Warehouse }

func (f *fakeWarehouseSource) GetByID(_ context.Context, _ id.ID) (*warehouse.Warehouse, error) {
	return f.wh, nil
}

type fakePartnerSource struct{ p *partner.Partner }

func (f *fakePartnerSource) GetByID(_ context.Context, _ id.ID) (*partner.Partner, error) {
	return f.p, nil
}

type fakeCompanySource struct{ c *company.Company }

func (f *fakeCompanySource) GetByID(_ context.Context, _ id.ID) (*company.Company, error) {
	return f.c, nil
}

type fakeProductSource struct{ products map[id.ID]*product.Product }

func (f *fakeProductSource) GetByID(_ context.Context, productID id.ID) (*product.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	return p, nil
}

// fortyHourSpec is Monday-Friday 08:00-16:00 UTC.
func fortyHourSpec() schedule.WeekSpec {
	spec := schedule.WeekSpec{Name: "40 hours/week"}
	for wd := time.Monday; wd <= time.Friday; wd++ {
		spec.Attendances = append(spec.Attendances, schedule.Attendance{
			Weekday: wd,
			From:    schedule.TimeOfDay{Hour: 8},
			To:      schedule.TimeOfDay{Hour: 16},
		})
	}
	return spec
}

type testEnv struct {
	service    *Service
	repo       *fakeOrderRepo
	activities *fakeActivityRepo
	prices     *fakePriceSource
	productID  id.ID
	tx         *fakeTxManager
}

// newTestEnv wires a service around a warehouse with an 08:00 UTC
// cutoff, a 40h calendar and one day of security lead, shipping to a
// partner that accepts deliveries on workdays.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	wh := warehouse.NewWarehouse("WH-MAIN", "Main warehouse")
	wh.Calendar = fortyHourSpec()
	wh.ApplyCutoff = true
	wh.CutoffHour = 8
	wh.SecurityLeadDays = 1

	shipTo := partner.NewPartner("PT-ACME", "Acme", partner.TypeCustomer)
	shipTo.DeliveryPreference = schedule.PrefWorkdays

	comp := company.NewCompany("CO-MAIN", "Main company", id.New())

	prod := product.NewProduct("PR-CHAIR", "Office chair", product.TypeGoods)
	prod.CustomerLeadDays = 1
	prod.ListPrice = types.MustMoney("12.50")

	prices := &fakePriceSource{prices: map[id.ID]types.Money{
		prod.ID: types.MustMoney("25"),
	}}

	repo := newFakeOrderRepo()
	activities := newFakeActivityRepo()
	txm := &fakeTxManager{}

	gen := &numerator.MockGenerator{
		GetNextNumberFunc: func(_ context.Context, cfg numerator.Config, _ *numerator.Options, _ time.Time) (string, error) {
			return cfg.Prefix + "-2021-00001", nil
		},
	}

	svc := NewService(
		repo,
		activities,
		prices,
		&fakeWarehouseSource{wh: wh},
		&fakePartnerSource{p: shipTo},
		&fakeCompanySource{c: comp},
		&fakeProductSource{products: map[id.ID]*product.Product{prod.ID: prod}},
		gen,
		txm,
	)

	return &testEnv{
		service:    svc,
		repo:       repo,
		activities: activities,
		prices:     prices,
		productID:  prod.ID,
		tx:         txm,
	}
}

func (e *testEnv) newOrder(t *testing.T, orderDate string) *SaleOrder {
	t.Helper()

	o := NewSaleOrder(id.New(), id.New(), id.New(), id.New())
	o.CurrencyID = id.New()
	o.Date = mustTime(t, orderDate)
	o.AddLine(e.productID, types.NewQuantityFromFloat64(2), types.Zero())

	if err := e.service.Create(context.Background(), o); err != nil {
		t.Fatalf("create: %v", err)
	}
	return o
}

func TestCreateAssignsNumber(t *testing.T) {
	env := newTestEnv(t)
	o := env.newOrder(t, "2021-08-14 07:00")

	if o.Number != "SO-2021-00001" {
		t.Errorf("number = %q, want SO-2021-00001", o.Number)
	}
	if o.State != StateDraft {
		t.Errorf("state = %s, want draft", o.State)
	}
	if env.tx.calls == 0 {
		t.Error("create should run in a transaction")
	}
}

func TestConfirmComputesDatesAndPrices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Friday before the cutoff: the one-day lead lands the naive
	// estimate on Saturday, preparation starts Monday.
	o := env.newOrder(t, "2021-08-13 07:00")

	confirmed, err := env.service.Confirm(ctx, o.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if confirmed.State != StateConfirmed {
		t.Fatalf("state = %s, want confirmed", confirmed.State)
	}

	if !confirmed.Lines[0].UnitPrice.Equal(types.MustMoney("25")) {
		t.Errorf("unit price = %s, want 25", confirmed.Lines[0].UnitPrice)
	}
	if !confirmed.TotalAmount.Equal(types.MustMoney("50")) {
		t.Errorf("total = %s, want 50", confirmed.TotalAmount)
	}
	if len(env.prices.askedAt) != 1 || !env.prices.askedAt[0].Equal(o.Date) {
		t.Errorf("prices resolved at %v, want order date %v", env.prices.askedAt, o.Date)
	}

	wantExpected := mustTime(t, "2021-08-18 16:00")
	if confirmed.ExpectedDate == nil || !confirmed.ExpectedDate.Equal(wantExpected) {
		t.Errorf("expected date = %v, want %v", confirmed.ExpectedDate, wantExpected)
	}

	wantPlanned := mustTime(t, "2021-08-16 16:00")
	if confirmed.DatePlanned == nil || !confirmed.DatePlanned.Equal(wantPlanned) {
		t.Errorf("date planned = %v, want %v", confirmed.DatePlanned, wantPlanned)
	}

	wantDeadline := mustTime(t, "2021-08-17 16:00")
	if confirmed.DateDeadline == nil || !confirmed.DateDeadline.Equal(wantDeadline) {
		t.Errorf("date deadline = %v, want %v", confirmed.DateDeadline, wantDeadline)
	}

	if confirmed.Lines[0].CustomerLeadDays != 1 {
		t.Errorf("line lead = %v, want 1 (copied from product)", confirmed.Lines[0].CustomerLeadDays)
	}
}

func TestConfirmAfterCutoffShiftsOneDay(t *testing.T) {
	env := newTestEnv(t)

	// Same Friday but after the 08:00 cutoff.
	o := env.newOrder(t, "2021-08-13 09:00")

	confirmed, err := env.service.Confirm(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	wantExpected := mustTime(t, "2021-08-19 16:00")
	if confirmed.ExpectedDate == nil || !confirmed.ExpectedDate.Equal(wantExpected) {
		t.Errorf("expected date = %v, want %v", confirmed.ExpectedDate, wantExpected)
	}
}

func TestConfirmRefusedWhileActivitiesOpen(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o := env.newOrder(t, "2021-08-14 07:00")

	activity, err := env.service.AddActivity(ctx, o.ID, "verify credit limit")
	if err != nil {
		t.Fatalf("add activity: %v", err)
	}

	_, err = env.service.Confirm(ctx, o.ID)
	if !apperror.IsValidationPending(err) {
		t.Fatalf("err = %v, want validation pending", err)
	}

	stored, err := env.service.GetByID(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.State != StateDraft {
		t.Fatalf("state = %s, order must stay draft", stored.State)
	}

	if err := env.service.CompleteActivity(ctx, activity.ID, "manager", ""); err != nil {
		t.Fatalf("complete activity: %v", err)
	}

	if _, err := env.service.Confirm(ctx, o.ID); err != nil {
		t.Fatalf("confirm after completion: %v", err)
	}
}

func TestConfirmTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o := env.newOrder(t, "2021-08-14 07:00")

	if _, err := env.service.Confirm(ctx, o.ID); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if _, err := env.service.Confirm(ctx, o.ID); err == nil {
		t.Fatal("second confirm must fail")
	}
}

func TestConfirmFallsBackToListPrice(t *testing.T) {
	env := newTestEnv(t)
	env.prices.prices = map[id.ID]types.Money{} // nothing cached

	o := env.newOrder(t, "2021-08-14 07:00")

	confirmed, err := env.service.Confirm(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if !confirmed.Lines[0].UnitPrice.Equal(types.MustMoney("12.50")) {
		t.Errorf("unit price = %s, want list price 12.50", confirmed.Lines[0].UnitPrice)
	}
}

func TestConfirmKeepsManualPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o := NewSaleOrder(id.New(), id.New(), id.New(), id.New())
	o.CurrencyID = id.New()
	o.Date = mustTime(t, "2021-08-14 07:00")
	o.AddLine(env.productID, types.NewQuantityFromFloat64(1), types.MustMoney("99"))
	if err := env.service.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}

	confirmed, err := env.service.Confirm(ctx, o.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if !confirmed.Lines[0].UnitPrice.Equal(types.MustMoney("99")) {
		t.Errorf("unit price = %s, manual price must be kept", confirmed.Lines[0].UnitPrice)
	}
	if len(env.prices.askedAt) != 0 {
		t.Error("fully priced order should not hit the price cache")
	}
}

func TestAddActivityOnConfirmedOrderFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o := env.newOrder(t, "2021-08-14 07:00")
	if _, err := env.service.Confirm(ctx, o.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if _, err := env.service.AddActivity(ctx, o.ID, "too late"); err == nil {
		t.Fatal("adding an activity to a confirmed order must fail")
	}
}

func TestBlockInvoicing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o := env.newOrder(t, "2021-08-14 07:00")

	if err := env.service.BlockInvoicing(ctx, o.ID, "waiting for prepayment"); err != nil {
		t.Fatalf("block: %v", err)
	}
	stored, _ := env.repo.GetByID(ctx, o.ID)
	if !stored.IsInvoiceBlocked() {
		t.Fatal("order should be blocked")
	}

	if err := env.service.UnblockInvoicing(ctx, o.ID); err != nil {
		t.Fatalf("unblock: %v", err)
	}
	if stored.IsInvoiceBlocked() {
		t.Fatal("order should be unblocked")
	}

	if err := env.service.BlockInvoicing(ctx, o.ID, ""); err == nil {
		t.Fatal("empty reason must be rejected")
	}
}

func TestDoneAndCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o := env.newOrder(t, "2021-08-14 07:00")

	if err := env.service.Done(ctx, o.ID); err == nil {
		t.Fatal("closing a draft order must fail")
	}

	if _, err := env.service.Confirm(ctx, o.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := env.service.Done(ctx, o.ID); err != nil {
		t.Fatalf("done: %v", err)
	}

	if err := env.service.Cancel(ctx, o.ID); err == nil {
		t.Fatal("cancelling a done order must fail")
	}
}
