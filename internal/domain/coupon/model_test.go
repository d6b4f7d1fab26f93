package coupon

import (
	"context"
	"testing"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/id"
	"saleflow/internal/core/types"
)

func testProgram() *Program {
	return NewProgram("CP-SUMMER", "Summer campaign", "CPN", types.MustMoney("100"), "EUR")
}

func TestCouponConsumption(t *testing.T) {
	c := NewCoupon("CPN-2021-00001", testProgram())

	if !c.Remaining().Equal(types.MustMoney("100")) {
		t.Fatalf("remaining = %s, want 100", c.Remaining())
	}

	if err := c.Consume(id.New(), types.MustMoney("30")); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if !c.Remaining().Equal(types.MustMoney("70")) {
		t.Errorf("remaining = %s, want 70", c.Remaining())
	}
	if c.State != StateActive {
		t.Errorf("state = %s, want active", c.State)
	}

	if err := c.Consume(id.New(), types.MustMoney("70")); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if !c.Remaining().IsZero() {
		t.Errorf("remaining = %s, want 0", c.Remaining())
	}
	if c.State != StateUsed {
		t.Errorf("state = %s, drained coupon must be used", c.State)
	}

	err := c.Consume(id.New(), types.MustMoney("1"))
	if appErr, ok := apperror.AsAppError(err); !ok || appErr.Code != apperror.CodeCouponExhausted {
		t.Errorf("err = %v, want coupon exhausted", err)
	}
}

func TestCouponOverConsumption(t *testing.T) {
	c := NewCoupon("CPN-2021-00002", testProgram())

	err := c.Consume(id.New(), types.MustMoney("100.01"))
	if appErr, ok := apperror.AsAppError(err); !ok || appErr.Code != apperror.CodeCouponExhausted {
		t.Fatalf("err = %v, want coupon exhausted", err)
	}
	if !c.Remaining().Equal(types.MustMoney("100")) {
		t.Errorf("failed consumption must not touch the balance")
	}
	if len(c.Consumptions) != 0 {
		t.Errorf("consumptions = %d, want 0", len(c.Consumptions))
	}
}

func TestCouponConsumeRejectsNonPositive(t *testing.T) {
	c := NewCoupon("CPN-2021-00003", testProgram())

	if err := c.Consume(id.New(), types.Zero()); err == nil {
		t.Error("zero consumption must be rejected")
	}
	if err := c.Consume(id.New(), types.MustMoney("-5")); err == nil {
		t.Error("negative consumption must be rejected")
	}
}

func TestProgramValidate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*Program)
		wantErr bool
	}{
		{"valid", func(p *Program) {}, false},
		{"valid with rule", func(p *Program) { p.Rule = `amount >= 100.0` }, false},
		{"missing prefix", func(p *Program) { p.CodePrefix = "" }, true},
		{"zero reward", func(p *Program) { p.RewardAmount = types.Zero() }, true},
		{"missing currency", func(p *Program) { p.CurrencyISO = "" }, true},
		{"broken rule", func(p *Program) { p.Rule = `amount >=` }, true},
		{"non-boolean rule", func(p *Program) { p.Rule = `amount + 1.0` }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProgram()
			tt.mutate(p)

			err := p.Validate(ctx)
			if tt.wantErr != (err != nil) {
				t.Errorf("err = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}
