package saleorder

import (
	"context"
	"testing"
	"time"

	"saleflow/internal/core/id"
	"saleflow/internal/core/types"
)

func draftOrder() *SaleOrder {
	o := NewSaleOrder(id.New(), id.New(), id.New(), id.New())
	o.CurrencyID = id.New()
	o.AddLine(id.New(), types.NewQuantityFromFloat64(1), types.MustMoney("10"))
	return o
}

func TestAddLineTotals(t *testing.T) {
	o := draftOrder()
	o.AddLine(id.New(), types.NewQuantityFromFloat64(2.5), types.MustMoney("10.00"))

	if len(o.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(o.Lines))
	}
	if o.Lines[1].LineNo != 2 {
		t.Errorf("lineNo = %d, want 2", o.Lines[1].LineNo)
	}
	if !o.Lines[1].Amount.Equal(types.MustMoney("25")) {
		t.Errorf("line amount = %s, want 25", o.Lines[1].Amount)
	}
	if !o.TotalAmount.Equal(types.MustMoney("35")) {
		t.Errorf("total = %s, want 35", o.TotalAmount)
	}
	if o.TotalQuantity != types.NewQuantityFromFloat64(3.5) {
		t.Errorf("total quantity = %s, want 3.5", o.TotalQuantity)
	}
}

func TestRecalculateTotalsAfterReprice(t *testing.T) {
	o := draftOrder()
	o.Lines[0].UnitPrice = types.MustMoney("80")
	o.RecalculateTotals()

	if !o.Lines[0].Amount.Equal(types.MustMoney("80")) {
		t.Errorf("amount = %s, want 80", o.Lines[0].Amount)
	}
	if !o.TotalAmount.Equal(types.MustMoney("80")) {
		t.Errorf("total = %s, want 80", o.TotalAmount)
	}
}

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		step    func(*SaleOrder) error
		to      State
		wantErr bool
	}{
		{"confirm draft", StateDraft, (*SaleOrder).MarkConfirmed, StateConfirmed, false},
		{"confirm confirmed", StateConfirmed, (*SaleOrder).MarkConfirmed, StateConfirmed, true},
		{"confirm cancelled", StateCancelled, (*SaleOrder).MarkConfirmed, StateCancelled, true},
		{"close confirmed", StateConfirmed, (*SaleOrder).MarkDone, StateDone, false},
		{"close draft", StateDraft, (*SaleOrder).MarkDone, StateDraft, true},
		{"cancel draft", StateDraft, (*SaleOrder).MarkCancelled, StateCancelled, false},
		{"cancel confirmed", StateConfirmed, (*SaleOrder).MarkCancelled, StateCancelled, false},
		{"cancel done", StateDone, (*SaleOrder).MarkCancelled, StateDone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := draftOrder()
			o.State = tt.from

			err := tt.step(o)
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if o.State != tt.to {
				t.Errorf("state = %s, want %s", o.State, tt.to)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	yesterday := time.Now().UTC().Add(-24 * time.Hour)

	tests := []struct {
		name    string
		mutate  func(*SaleOrder)
		wantErr bool
	}{
		{"valid", func(o *SaleOrder) {}, false},
		{"missing partner", func(o *SaleOrder) { o.PartnerID = id.Nil() }, true},
		{"missing warehouse", func(o *SaleOrder) { o.WarehouseID = id.Nil() }, true},
		{"missing pricelist", func(o *SaleOrder) { o.PricelistID = id.Nil() }, true},
		{"missing currency", func(o *SaleOrder) { o.CurrencyID = id.Nil() }, true},
		{"no lines", func(o *SaleOrder) { o.Lines = nil }, true},
		{"zero quantity", func(o *SaleOrder) { o.Lines[0].Quantity = 0 }, true},
		{"negative price", func(o *SaleOrder) { o.Lines[0].UnitPrice = types.MustMoney("-1") }, true},
		{"commitment before order date", func(o *SaleOrder) { o.CommitmentDate = &yesterday }, true},
		{"invalid state", func(o *SaleOrder) { o.State = State("posted") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := draftOrder()
			tt.mutate(o)

			err := o.Validate(ctx)
			if tt.wantErr != (err != nil) {
				t.Errorf("err = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestShippingPartnerFallback(t *testing.T) {
	o := draftOrder()
	if o.ShippingPartner() != o.PartnerID {
		t.Error("shipping partner should default to the ordering partner")
	}

	shipTo := id.New()
	o.ShippingPartnerID = &shipTo
	if o.ShippingPartner() != shipTo {
		t.Error("explicit shipping partner should win")
	}
}

func TestInvoiceBlocking(t *testing.T) {
	o := draftOrder()
	if o.IsInvoiceBlocked() {
		t.Fatal("new order should not be blocked")
	}

	o.BlockInvoicing("waiting for prepayment")
	if !o.IsInvoiceBlocked() {
		t.Fatal("order should be blocked")
	}

	o.UnblockInvoicing()
	if o.IsInvoiceBlocked() {
		t.Fatal("order should be unblocked")
	}
}

func TestValidationActivityComplete(t *testing.T) {
	a := NewValidationActivity(id.New(), "verify credit limit")
	if a.Done {
		t.Fatal("new activity should be open")
	}

	a.Complete("manager", "limit raised")
	if !a.Done || a.DoneAt == nil {
		t.Fatal("activity should be done with a timestamp")
	}
	if a.DoneBy != "manager" || a.Note != "limit raised" {
		t.Errorf("doneBy = %q, note = %q", a.DoneBy, a.Note)
	}
}
