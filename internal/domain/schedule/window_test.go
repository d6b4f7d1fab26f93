package schedule

import (
	"testing"
	"time"
)

func thursdayMorning() DeliveryWindows {
	return DeliveryWindows{Windows: []TimeWindow{{
		Weekdays: []time.Weekday{time.Thursday},
		Start:    TimeOfDay{Hour: 9},
		End:      TimeOfDay{Hour: 12},
	}}}
}

func TestDeliveryWindowsContains(t *testing.T) {
	dw := thursdayMorning()

	tests := []struct {
		at   string
		want bool
	}{
		{"2021-08-19 09:00:00", true},  // thursday window start
		{"2021-08-19 12:00:00", true},  // inclusive end
		{"2021-08-19 12:01:00", false}, // past end
		{"2021-08-19 08:59:00", false}, // before start
		{"2021-08-18 10:00:00", false}, // wednesday
	}
	for _, tt := range tests {
		if got := dw.Contains(mustTime(t, tt.at)); got != tt.want {
			t.Errorf("Contains(%s) = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestDeliveryWindowsNextStart(t *testing.T) {
	dw := thursdayMorning()

	tests := []struct {
		name string
		from string
		want string
	}{
		{
			name: "inside a window stays put",
			from: "2021-08-19 10:00:00",
			want: "2021-08-19 10:00:00",
		},
		{
			name: "same day before the window",
			from: "2021-08-19 07:00:00",
			want: "2021-08-19 09:00:00",
		},
		{
			name: "after the window jumps a week",
			from: "2021-08-19 13:00:00",
			want: "2021-08-26 09:00:00",
		},
		{
			name: "mid week lands on thursday",
			from: "2021-08-17 16:00:00",
			want: "2021-08-19 09:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dw.NextStart(mustTime(t, tt.from))
			want := mustTime(t, tt.want)
			if !got.Equal(want) {
				t.Errorf("NextStart(%s) = %s, want %s", tt.from, got, want)
			}
		})
	}
}

func TestDeliveryWindowsNextStartPicksEarliest(t *testing.T) {
	dw := DeliveryWindows{Windows: []TimeWindow{
		{Weekdays: []time.Weekday{time.Friday}, Start: TimeOfDay{Hour: 14}, End: TimeOfDay{Hour: 18}},
		{Weekdays: []time.Weekday{time.Friday}, Start: TimeOfDay{Hour: 8}, End: TimeOfDay{Hour: 10}},
	}}

	got := dw.NextStart(mustTime(t, "2021-08-18 12:00:00"))
	want := mustTime(t, "2021-08-20 08:00:00")
	if !got.Equal(want) {
		t.Errorf("NextStart = %s, want earliest window %s", got, want)
	}
}

func TestDeliveryWindowsEmptyPassthrough(t *testing.T) {
	var dw DeliveryWindows
	from := mustTime(t, "2021-08-18 12:00:00")
	if got := dw.NextStart(from); !got.Equal(from) {
		t.Errorf("empty windows should pass dates through, got %s", got)
	}
	if dw.Contains(from) {
		t.Error("empty windows contain nothing")
	}
}

func TestWorkdayWindows(t *testing.T) {
	dw := WorkdayWindows()
	if !dw.Contains(mustTime(t, "2021-08-18 23:30:00")) {
		t.Error("wednesday night should be a workday moment")
	}
	if dw.Contains(mustTime(t, "2021-08-21 10:00:00")) {
		t.Error("saturday is not a workday")
	}
	got := dw.NextStart(mustTime(t, "2021-08-21 10:00:00"))
	want := mustTime(t, "2021-08-23 00:00:00")
	if !got.Equal(want) {
		t.Errorf("NextStart from saturday = %s, want monday %s", got, want)
	}
}

func TestDeliveryWindowsRoundTrip(t *testing.T) {
	dw := thursdayMorning()
	value, err := dw.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var decoded DeliveryWindows
	if err := decoded.Scan(value); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(decoded.Windows) != 1 || decoded.Windows[0].Start.Hour != 9 {
		t.Errorf("round trip lost data: %+v", decoded)
	}

	var empty DeliveryWindows
	value, err = empty.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if value != nil {
		t.Errorf("empty windows should store NULL, got %v", value)
	}
}
