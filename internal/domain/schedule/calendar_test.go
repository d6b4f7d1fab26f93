package schedule

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return parsed.UTC()
}

func fortyHours() *WeeklyCalendar {
	// Mon-Fri 08:00-16:00, the reference warehouse calendar.
	return StandardWeek("40 Hours", TimeOfDay{Hour: 8}, TimeOfDay{Hour: 16})
}

func TestPlanDays(t *testing.T) {
	cal := fortyHours()

	tests := []struct {
		name string
		n    int
		from string
		want string
	}{
		{
			name: "one day from start of working friday",
			n:    1,
			from: "2021-08-13 08:00:00",
			want: "2021-08-13 16:00:00",
		},
		{
			name: "three days spanning a weekend",
			n:    3,
			from: "2021-08-13 08:00:00",
			want: "2021-08-17 16:00:00",
		},
		{
			name: "three days from a saturday",
			n:    3,
			from: "2021-08-14 08:00:00",
			want: "2021-08-18 16:00:00",
		},
		{
			name: "day already over does not count",
			n:    1,
			from: "2021-08-13 16:00:00",
			want: "2021-08-16 16:00:00",
		},
		{
			name: "mid-day start counts the remaining day",
			n:    1,
			from: "2021-08-13 12:00:00",
			want: "2021-08-13 16:00:00",
		},
		{
			name: "zero days is identity",
			n:    0,
			from: "2021-08-13 12:00:00",
			want: "2021-08-13 12:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cal.PlanDays(tt.n, mustTime(t, tt.from), true)
			want := mustTime(t, tt.want)
			if !got.Equal(want) {
				t.Errorf("PlanDays(%d, %s) = %s, want %s", tt.n, tt.from, got, want)
			}
		})
	}
}

func TestPlanDaysSplitWorkload(t *testing.T) {
	// Projecting w1 then w2 days must equal projecting w1+w2 days.
	cal := fortyHours()
	starts := []string{
		"2021-08-13 07:00:00",
		"2021-08-13 12:00:00",
		"2021-08-14 09:00:00",
		"2021-08-16 08:00:00",
	}

	for _, start := range starts {
		from := mustTime(t, start)
		for total := 1; total <= 6; total++ {
			whole := cal.PlanDays(total, from, true)
			for w1 := 1; w1 < total; w1++ {
				split := cal.PlanDays(total-w1, cal.PlanDays(w1, from, true), true)
				if !split.Equal(whole) {
					t.Errorf("split %d+%d from %s = %s, single call = %s",
						w1, total-w1, start, split, whole)
				}
			}
		}
	}
}

func TestPlanDaysSkipsLeaves(t *testing.T) {
	cal := fortyHours()
	// Monday the 16th is a holiday.
	cal.AddLeave(Leave{
		From: mustTime(t, "2021-08-16 00:00:00"),
		To:   mustTime(t, "2021-08-16 23:59:59"),
	})

	got := cal.PlanDays(2, mustTime(t, "2021-08-13 08:00:00"), true)
	want := mustTime(t, "2021-08-17 16:00:00")
	if !got.Equal(want) {
		t.Errorf("PlanDays with leave = %s, want %s", got, want)
	}

	// Without leave computation the holiday counts as a normal day.
	got = cal.PlanDays(2, mustTime(t, "2021-08-13 08:00:00"), false)
	want = mustTime(t, "2021-08-16 16:00:00")
	if !got.Equal(want) {
		t.Errorf("PlanDays ignoring leaves = %s, want %s", got, want)
	}
}

func TestPlanDaysEmptyCalendar(t *testing.T) {
	cal := NewWeeklyCalendar("empty")
	from := mustTime(t, "2021-08-13 08:00:00")
	if got := cal.PlanDays(3, from, true); !got.Equal(from) {
		t.Errorf("empty calendar should pass dates through, got %s", got)
	}
}

func TestIsWorkingDay(t *testing.T) {
	cal := fortyHours()
	cal.AddLeave(Leave{
		From: mustTime(t, "2021-08-16 00:00:00"),
		To:   mustTime(t, "2021-08-16 23:59:59"),
	})

	tests := []struct {
		at   string
		want bool
	}{
		{"2021-08-13 10:00:00", true},  // friday
		{"2021-08-14 10:00:00", false}, // saturday
		{"2021-08-15 10:00:00", false}, // sunday
		{"2021-08-16 10:00:00", false}, // holiday monday
		{"2021-08-17 10:00:00", true},  // tuesday
	}
	for _, tt := range tests {
		if got := cal.IsWorkingDay(mustTime(t, tt.at)); got != tt.want {
			t.Errorf("IsWorkingDay(%s) = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestWeekSpecRoundTrip(t *testing.T) {
	spec := WeekSpec{
		Name: "40 Hours",
		Attendances: []Attendance{
			{Weekday: time.Monday, From: TimeOfDay{Hour: 8}, To: TimeOfDay{Hour: 16}},
			{Weekday: time.Tuesday, From: TimeOfDay{Hour: 8}, To: TimeOfDay{Hour: 16}},
		},
	}

	value, err := spec.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var decoded WeekSpec
	if err := decoded.Scan(value); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(decoded.Attendances) != 2 || decoded.Name != "40 Hours" {
		t.Errorf("round trip lost data: %+v", decoded)
	}

	cal := decoded.Calendar()
	if cal == nil {
		t.Fatal("Calendar() returned nil for non-empty spec")
	}
	if !cal.IsWorkingDay(mustTime(t, "2021-08-16 10:00:00")) {
		t.Error("decoded calendar should work on mondays")
	}

	var empty WeekSpec
	if empty.Calendar() != nil {
		t.Error("empty spec must produce a nil calendar")
	}
}
