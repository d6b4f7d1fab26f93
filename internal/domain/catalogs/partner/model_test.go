package partner

import (
	"context"
	"testing"
	"time"

	"saleflow/internal/domain/schedule"
)

func TestPartnerValidate(t *testing.T) {
	p := NewPartner("PT-001", "Acme", TypeCustomer)
	if err := p.Validate(context.Background()); err != nil {
		t.Fatalf("valid partner rejected: %v", err)
	}

	p.DeliveryPreference = "weekends"
	if err := p.Validate(context.Background()); err == nil {
		t.Error("unknown preference accepted")
	}

	p.DeliveryPreference = schedule.PrefTimeWindows
	if err := p.Validate(context.Background()); err == nil {
		t.Error("time_windows preference without windows accepted")
	}

	p.TimeWindows = schedule.DeliveryWindows{Windows: []schedule.TimeWindow{{
		Weekdays: []time.Weekday{time.Thursday},
		Start:    schedule.TimeOfDay{Hour: 9},
		End:      schedule.TimeOfDay{Hour: 12},
	}}}
	if err := p.Validate(context.Background()); err != nil {
		t.Errorf("time_windows preference with windows rejected: %v", err)
	}

	bad := "not-an-email"
	p.Email = &bad
	if err := p.Validate(context.Background()); err == nil {
		t.Error("malformed email accepted")
	}
}

func TestPartnerDeliveryWindows(t *testing.T) {
	p := NewPartner("PT-001", "Acme", TypeCustomer)

	if !p.DeliveryWindows().Empty() {
		t.Error("anytime preference must yield no windows")
	}

	p.DeliveryPreference = schedule.PrefWorkdays
	windows := p.DeliveryWindows()
	if windows.Empty() {
		t.Fatal("workdays preference must yield windows")
	}
	saturday := time.Date(2021, 8, 21, 10, 0, 0, 0, time.UTC)
	if windows.Contains(saturday) {
		t.Error("workdays windows must exclude saturday")
	}

	p.DeliveryPreference = schedule.PrefTimeWindows
	p.TimeWindows = schedule.DeliveryWindows{Windows: []schedule.TimeWindow{{
		Weekdays: []time.Weekday{time.Thursday},
		Start:    schedule.TimeOfDay{Hour: 9},
		End:      schedule.TimeOfDay{Hour: 12},
	}}}
	if got := p.DeliveryWindows(); len(got.Windows) != 1 {
		t.Errorf("time_windows preference must yield the configured windows, got %+v", got)
	}
}
