package schedule

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ShippingPreference controls how delivery dates are snapped to the
// customer's preferred delivery moments.
type ShippingPreference string

const (
	// PrefAnytime accepts deliveries at any moment.
	PrefAnytime ShippingPreference = "anytime"
	// PrefWorkdays accepts deliveries Monday through Friday.
	PrefWorkdays ShippingPreference = "workdays"
	// PrefTimeWindows accepts deliveries only inside configured windows.
	PrefTimeWindows ShippingPreference = "time_windows"
)

// Valid reports whether p is a known preference.
func (p ShippingPreference) Valid() bool {
	switch p {
	case PrefAnytime, PrefWorkdays, PrefTimeWindows:
		return true
	}
	return false
}

// TimeWindow is a recurring weekday + time-of-day range during which
// delivery is accepted.
type TimeWindow struct {
	Weekdays []time.Weekday `json:"weekdays"`
	Start    TimeOfDay      `json:"start"`
	End      TimeOfDay      `json:"end"`
}

func (w TimeWindow) onWeekday(d time.Weekday) bool {
	for _, wd := range w.Weekdays {
		if wd == d {
			return true
		}
	}
	return false
}

// contains reports whether t falls inside the window.
func (w TimeWindow) contains(t time.Time) bool {
	t = t.UTC()
	if !w.onWeekday(t.Weekday()) {
		return false
	}
	minutes := t.Hour()*60 + t.Minute()
	return minutes >= w.Start.Minutes() && minutes <= w.End.Minutes()
}

// DeliveryWindows is an ordered set of delivery time windows.
type DeliveryWindows struct {
	Windows []TimeWindow `json:"windows"`
}

// Empty reports whether no windows are configured.
func (dw DeliveryWindows) Empty() bool {
	return len(dw.Windows) == 0
}

// Contains reports whether t falls inside any window.
func (dw DeliveryWindows) Contains(t time.Time) bool {
	for _, w := range dw.Windows {
		if w.contains(t) {
			return true
		}
	}
	return false
}

// NextStart returns the next datetime at or after from that falls inside
// a window. A datetime already inside a window is returned unchanged.
// With no windows configured, from is returned unchanged.
func (dw DeliveryWindows) NextStart(from time.Time) time.Time {
	if dw.Empty() || dw.Contains(from) {
		return from
	}

	from = from.UTC()
	best := time.Time{}
	day := dateOf(from)
	// A window set covers at most a week; scanning 8 days always finds
	// the earliest start when any weekday is configured.
	for i := 0; i < 8; i++ {
		for _, w := range dw.Windows {
			if !w.onWeekday(day.Weekday()) {
				continue
			}
			candidate := w.Start.At(day)
			if candidate.Before(from) {
				continue
			}
			if best.IsZero() || candidate.Before(best) {
				best = candidate
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	if best.IsZero() {
		return from
	}
	return best
}

// WorkdayWindows builds whole-day Mon-Fri windows, used for the
// "workdays" shipping preference.
func WorkdayWindows() DeliveryWindows {
	return DeliveryWindows{Windows: []TimeWindow{{
		Weekdays: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		Start:    TimeOfDay{Hour: 0, Minute: 0},
		End:      TimeOfDay{Hour: 23, Minute: 59},
	}}}
}

// Value implements driver.Valuer for PostgreSQL JSONB.
func (dw DeliveryWindows) Value() (driver.Value, error) {
	if dw.Empty() {
		return nil, nil
	}
	return json.Marshal(dw)
}

// Scan implements sql.Scanner for PostgreSQL JSONB.
func (dw *DeliveryWindows) Scan(src any) error {
	if src == nil {
		*dw = DeliveryWindows{}
		return nil
	}
	var source []byte
	switch v := src.(type) {
	case []byte:
		source = v
	case string:
		source = []byte(v)
	default:
		return fmt.Errorf("unsupported type for DeliveryWindows: %T", src)
	}
	if len(source) == 0 {
		*dw = DeliveryWindows{}
		return nil
	}
	return json.Unmarshal(source, dw)
}
