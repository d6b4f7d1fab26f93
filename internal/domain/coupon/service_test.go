package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/id"
	"saleflow/internal/core/numerator"
	"saleflow/internal/core/types"
	"saleflow/internal/domain"
	"saleflow/internal/domain/catalogs/currency"
	"saleflow/internal/domain/catalogs/partner"
	"saleflow/internal/domain/documents/saleorder"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeProgramRepo struct {
	domain.CatalogRepository[*Program]
	programs map[id.ID]*Program
}

func (f *fakeProgramRepo) GetByID(_ context.Context, entityID id.ID) (*Program, error) {
	p, ok := f.programs[entityID]
	if !ok {
		return nil, apperror.NewNotFound("program", entityID)
	}
	return p, nil
}

type fakeCouponRepo struct {
	domain.CatalogRepository[*Coupon]
	coupons      map[id.ID]*Coupon
	consumptions map[id.ID][]Consumption
}

func newFakeCouponRepo() *fakeCouponRepo {
	return &fakeCouponRepo{
		coupons:      make(map[id.ID]*Coupon),
		consumptions: make(map[id.ID][]Consumption),
	}
}

func (f *fakeCouponRepo) CreateBatch(ctx context.Context, coupons []*Coupon) error {
	for _, c := range coupons {
		if err := f.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeCouponRepo) Create(_ context.Context, c *Coupon) error {
	f.coupons[c.ID] = c
	return nil
}

func (f *fakeCouponRepo) GetByID(_ context.Context, entityID id.ID) (*Coupon, error) {
	c, ok := f.coupons[entityID]
	if !ok {
		return nil, apperror.NewNotFound("coupon", entityID)
	}
	return c, nil
}

func (f *fakeCouponRepo) GetByCode(_ context.Context, code string) (*Coupon, error) {
	for _, c := range f.coupons {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("coupon", code)
}

func (f *fakeCouponRepo) Update(_ context.Context, c *Coupon) error {
	f.coupons[c.ID] = c
	return nil
}

func (f *fakeCouponRepo) GetConsumptions(_ context.Context, couponID id.ID) ([]Consumption, error) {
	return f.consumptions[couponID], nil
}

func (f *fakeCouponRepo) SaveConsumptions(_ context.Context, couponID id.ID, consumptions []Consumption) error {
	f.consumptions[couponID] = consumptions
	return nil
}

// fakeConverter converts EUR<->USD at a fixed 1.25 rate.
type fakeConverter struct{}

func (fakeConverter) Convert(_ context.Context, amount decimal.Decimal, fromISO, toISO string) (decimal.Decimal, error) {
	if fromISO == toISO {
		return amount, nil
	}
	rate := decimal.NewFromFloat(1.25)
	if fromISO == "USD" && toISO == "EUR" {
		return amount.Div(rate), nil
	}
	return amount.Mul(rate), nil
}

type fakeCurrencySource struct{ currencies map[id.ID]*currency.Currency }

func (f *fakeCurrencySource) GetByID(_ context.Context, entityID id.ID) (*currency.Currency, error) {
	c, ok := f.currencies[entityID]
	if !ok {
		return nil, apperror.NewNotFound("currency", entityID)
	}
	return c, nil
}

type fakePartnerSource struct{ p *partner.Partner }

func (f *fakePartnerSource) GetByID(_ context.Context, _ id.ID) (*partner.Partner, error) {
	return f.p, nil
}

func strptr(s string) *string { return &s }

type couponEnv struct {
	service  *Service
	programs *fakeProgramRepo
	coupons  *fakeCouponRepo
	program  *Program
	eurID    id.ID
	usdID    id.ID
}

func newCouponEnv(t *testing.T) *couponEnv {
	t.Helper()

	program := NewProgram("CP-SUMMER", "Summer campaign", "CPN", types.MustMoney("100"), "EUR")
	programs := &fakeProgramRepo{programs: map[id.ID]*Program{program.ID: program}}
	coupons := newFakeCouponRepo()

	eur := currency.NewCurrency("EUR", "Euro", strptr("EUR"), strptr("€"))
	usd := currency.NewCurrency("USD", "US Dollar", strptr("USD"), strptr("$"))
	currencies := &fakeCurrencySource{currencies: map[id.ID]*currency.Currency{
		eur.ID: eur,
		usd.ID: usd,
	}}

	seq := 0
	gen := &numerator.MockGenerator{
		GetNextNumberFunc: func(_ context.Context, cfg numerator.Config, _ *numerator.Options, _ time.Time) (string, error) {
			seq++
			return cfg.Prefix + "-2021-0000" + string(rune('0'+seq)), nil
		},
	}

	svc := NewService(
		programs,
		coupons,
		fakeConverter{},
		currencies,
		&fakePartnerSource{p: partner.NewPartner("PT-ACME", "Acme", partner.TypeCustomer)},
		gen,
		fakeTxManager{},
	)

	return &couponEnv{
		service:  svc,
		programs: programs,
		coupons:  coupons,
		program:  program,
		eurID:    eur.ID,
		usdID:    usd.ID,
	}
}

func (e *couponEnv) order(currencyID id.ID, total string) *saleorder.SaleOrder {
	o := saleorder.NewSaleOrder(id.New(), id.New(), id.New(), id.New())
	o.CurrencyID = currencyID
	o.Number = "SO-2021-00001"
	o.AddLine(id.New(), types.NewQuantityFromFloat64(1), types.MustMoney(total))
	return o
}

func TestGenerateCoupons(t *testing.T) {
	env := newCouponEnv(t)

	coupons, err := env.service.Generate(context.Background(), env.program.ID, 2)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(coupons) != 2 {
		t.Fatalf("generated = %d, want 2", len(coupons))
	}
	if coupons[0].Code != "CPN-2021-00001" || coupons[1].Code != "CPN-2021-00002" {
		t.Errorf("codes = %q, %q", coupons[0].Code, coupons[1].Code)
	}
	for _, c := range coupons {
		if !c.InitialAmount.Equal(env.program.RewardAmount) {
			t.Errorf("initial = %s, want reward %s", c.InitialAmount, env.program.RewardAmount)
		}
	}
}

func TestGenerateForInactiveProgram(t *testing.T) {
	env := newCouponEnv(t)
	env.program.Active = false

	if _, err := env.service.Generate(context.Background(), env.program.ID, 1); err == nil {
		t.Fatal("inactive program must reject generation")
	}
}

func TestApplyPartialConsumption(t *testing.T) {
	env := newCouponEnv(t)
	ctx := context.Background()

	coupons, err := env.service.Generate(ctx, env.program.ID, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	order := env.order(env.eurID, "30")

	app, err := env.service.Apply(ctx, order, coupons[0].Code)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if !app.Consumed.Equal(types.MustMoney("30")) {
		t.Errorf("consumed = %s, want 30", app.Consumed)
	}
	if !app.Discount.Equal(types.MustMoney("30")) {
		t.Errorf("discount = %s, want 30 (same currency)", app.Discount)
	}
	if !app.Remaining.Equal(types.MustMoney("70")) {
		t.Errorf("remaining = %s, want 70", app.Remaining)
	}
	if app.CouponState != StateActive {
		t.Errorf("state = %s, want active", app.CouponState)
	}
}

func TestApplyCapsAtRemainingBalance(t *testing.T) {
	env := newCouponEnv(t)
	ctx := context.Background()

	coupons, err := env.service.Generate(ctx, env.program.ID, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	order := env.order(env.eurID, "250")

	app, err := env.service.Apply(ctx, order, coupons[0].Code)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if !app.Consumed.Equal(types.MustMoney("100")) {
		t.Errorf("consumed = %s, want full balance 100", app.Consumed)
	}
	if app.CouponState != StateUsed {
		t.Errorf("state = %s, drained coupon must be used", app.CouponState)
	}

	_, err = env.service.Apply(ctx, env.order(env.eurID, "10"), coupons[0].Code)
	if appErr, ok := apperror.AsAppError(err); !ok || appErr.Code != apperror.CodeCouponExhausted {
		t.Errorf("err = %v, want coupon exhausted", err)
	}
}

func TestApplyConvertsCurrencies(t *testing.T) {
	env := newCouponEnv(t)
	ctx := context.Background()

	coupons, err := env.service.Generate(ctx, env.program.ID, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// 50 USD = 40 EUR at the fixed 1.25 rate; program currency is EUR.
	order := env.order(env.usdID, "50")

	app, err := env.service.Apply(ctx, order, coupons[0].Code)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if !app.Consumed.Equal(types.MustMoney("40")) {
		t.Errorf("consumed = %s, want 40 EUR", app.Consumed)
	}
	if !app.Discount.Equal(types.MustMoney("50")) {
		t.Errorf("discount = %s, want 50 USD", app.Discount)
	}
	if !app.Remaining.Equal(types.MustMoney("60")) {
		t.Errorf("remaining = %s, want 60 EUR", app.Remaining)
	}
}

func TestApplyEligibilityRule(t *testing.T) {
	env := newCouponEnv(t)
	ctx := context.Background()
	env.program.Rule = `amount >= 100.0`

	coupons, err := env.service.Generate(ctx, env.program.ID, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = env.service.Apply(ctx, env.order(env.eurID, "50"), coupons[0].Code)
	if appErr, ok := apperror.AsAppError(err); !ok || appErr.Code != apperror.CodeCouponNotEligible {
		t.Fatalf("err = %v, want not eligible", err)
	}

	if _, err := env.service.Apply(ctx, env.order(env.eurID, "150"), coupons[0].Code); err != nil {
		t.Fatalf("apply above threshold: %v", err)
	}
}
