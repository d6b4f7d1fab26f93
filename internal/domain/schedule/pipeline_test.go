package schedule

import (
	"testing"

	"saleflow/internal/core/apperror"
)

// referenceLine mirrors the canonical setup: Mon-Fri 08:00-16:00
// warehouse calendar, 08:00 UTC cutoff, one day of customer lead of
// which one day is security buffer.
func referenceLine() OrderLine {
	return OrderLine{
		CustomerLead: 1,
		SecurityLead: 1,
		Calendar:     fortyHours(),
		Cutoff:       &CutoffSpec{Hour: 8},
		Preference:   PrefWorkdays,
		Windows:      WorkdayWindows(),
	}
}

func TestInitialEstimate(t *testing.T) {
	line := referenceLine()

	got := line.InitialEstimate(mustTime(t, "2021-08-13 07:00:00"))
	if want := mustTime(t, "2021-08-14 07:00:00"); !got.Equal(want) {
		t.Errorf("InitialEstimate = %s, want %s", got, want)
	}
}

func TestComputeExpectedDate(t *testing.T) {
	tests := []struct {
		name    string
		line    OrderLine
		initial string
		want    string
	}{
		{
			name: "order before friday cutoff ships wednesday",
			line: referenceLine(),
			// Ordered friday 07:00, customer lead already added.
			initial: "2021-08-14 07:00:00",
			want:    "2021-08-18 16:00:00",
		},
		{
			name: "order after friday cutoff slips one working day",
			line: referenceLine(),
			// Ordered friday 09:00, customer lead already added.
			initial: "2021-08-14 09:00:00",
			want:    "2021-08-19 16:00:00",
		},
		{
			name:    "no calendar and no cutoff is identity",
			line:    OrderLine{CustomerLead: 1, SecurityLead: 1},
			initial: "2021-08-14 07:00:00",
			want:    "2021-08-14 07:00:00",
		},
		{
			name: "cutoff alone normalizes the time of day",
			line: OrderLine{
				CustomerLead: 2,
				Cutoff:       &CutoffSpec{Hour: 8},
			},
			initial: "2021-08-16 10:00:00",
			want:    "2021-08-17 08:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeExpectedDate(tt.line, mustTime(t, tt.initial))
			if err != nil {
				t.Fatalf("ComputeExpectedDate: %v", err)
			}
			want := mustTime(t, tt.want)
			if !got.Equal(want) {
				t.Errorf("ComputeExpectedDate(%s) = %s, want %s", tt.initial, got, want)
			}
		})
	}
}

func TestComputeExpectedDateWindowSnap(t *testing.T) {
	line := referenceLine()
	line.Preference = PrefTimeWindows
	line.Windows = thursdayMorning()

	// Calendar projection yields wednesday 16:00; the thursday-only
	// window pushes delivery to thursday 09:00.
	got, err := ComputeExpectedDate(line, mustTime(t, "2021-08-14 07:00:00"))
	if err != nil {
		t.Fatalf("ComputeExpectedDate: %v", err)
	}
	want := mustTime(t, "2021-08-19 09:00:00")
	if !got.Equal(want) {
		t.Errorf("ComputeExpectedDate = %s, want %s", got, want)
	}
}

func TestComputeProcurementDates(t *testing.T) {
	tests := []struct {
		name         string
		line         OrderLine
		initial      string
		wantPlanned  string
		wantDeadline string
	}{
		{
			name:         "calendar projection with security buffer",
			line:         referenceLine(),
			initial:      "2021-08-14 07:00:00",
			wantPlanned:  "2021-08-16 16:00:00",
			wantDeadline: "2021-08-17 16:00:00",
		},
		{
			name: "no calendar applies cutoff only",
			line: OrderLine{
				CustomerLead: 3,
				SecurityLead: 1,
				Cutoff:       &CutoffSpec{Hour: 8},
			},
			// Initial estimate carries a two-day workload to remove.
			initial:      "2021-08-16 10:00:00",
			wantPlanned:  "2021-08-15 08:00:00",
			wantDeadline: "2021-08-15 08:00:00",
		},
		{
			name: "bare line passes the estimate through",
			line: OrderLine{
				CustomerLead: 1,
				SecurityLead: 1,
			},
			initial:      "2021-08-14 07:00:00",
			wantPlanned:  "2021-08-14 07:00:00",
			wantDeadline: "2021-08-14 07:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeProcurementDates(tt.line, mustTime(t, tt.initial))
			if err != nil {
				t.Fatalf("ComputeProcurementDates: %v", err)
			}
			if want := mustTime(t, tt.wantPlanned); !got.DatePlanned.Equal(want) {
				t.Errorf("planned = %s, want %s", got.DatePlanned, want)
			}
			if want := mustTime(t, tt.wantDeadline); !got.DateDeadline.Equal(want) {
				t.Errorf("deadline = %s, want %s", got.DateDeadline, want)
			}
		})
	}
}

func TestComputeProcurementDatesTimeWindows(t *testing.T) {
	line := referenceLine()
	line.Preference = PrefTimeWindows
	line.Windows = thursdayMorning()

	got, err := ComputeProcurementDates(line, mustTime(t, "2021-08-14 07:00:00"))
	if err != nil {
		t.Fatalf("ComputeProcurementDates: %v", err)
	}
	// Preparation stays on monday; the deadline moves to the day before
	// the thursday window, normalized to the cutoff time.
	if want := mustTime(t, "2021-08-16 16:00:00"); !got.DatePlanned.Equal(want) {
		t.Errorf("planned = %s, want %s", got.DatePlanned, want)
	}
	if want := mustTime(t, "2021-08-18 08:00:00"); !got.DateDeadline.Equal(want) {
		t.Errorf("deadline = %s, want %s", got.DateDeadline, want)
	}
}

func TestComputeProcurementDatesCommitment(t *testing.T) {
	tests := []struct {
		name        string
		commitment  string
		wantPlanned string
	}{
		{
			name:        "commitment on a working day",
			commitment:  "2021-08-18 15:00:00",
			wantPlanned: "2021-08-17 08:00:00",
		},
		{
			name: "preparation walks back over the weekend",
			// Sunday commitment: preparation lands saturday, walks back
			// to friday, then snaps to the cutoff without day shift.
			commitment:  "2021-08-15 15:00:00",
			wantPlanned: "2021-08-13 08:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := referenceLine()
			commitment := mustTime(t, tt.commitment)
			line.CommitmentDate = &commitment

			got, err := ComputeProcurementDates(line, mustTime(t, "2021-08-14 07:00:00"))
			if err != nil {
				t.Fatalf("ComputeProcurementDates: %v", err)
			}
			if !got.DateDeadline.Equal(commitment) {
				t.Errorf("deadline = %s, want commitment %s", got.DateDeadline, commitment)
			}
			if want := mustTime(t, tt.wantPlanned); !got.DatePlanned.Equal(want) {
				t.Errorf("planned = %s, want %s", got.DatePlanned, want)
			}
		})
	}
}

func TestComputeDatesBadTimezone(t *testing.T) {
	line := referenceLine()
	line.Cutoff = &CutoffSpec{Hour: 8, Timezone: "Mars/Olympus"}

	if _, err := ComputeExpectedDate(line, mustTime(t, "2021-08-14 07:00:00")); !apperror.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
	if _, err := ComputeProcurementDates(line, mustTime(t, "2021-08-14 07:00:00")); !apperror.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestStagesNoOpOnNilPlanned(t *testing.T) {
	line := referenceLine()
	for _, stage := range procurementStages {
		res, err := stage(line, Result{})
		if err != nil {
			t.Fatalf("stage on empty result: %v", err)
		}
		if res.Planned != nil || res.Deadline != nil {
			t.Error("stage invented dates from nothing")
		}
	}
}

func TestShippingPreferenceValid(t *testing.T) {
	for _, p := range []ShippingPreference{PrefAnytime, PrefWorkdays, PrefTimeWindows} {
		if !p.Valid() {
			t.Errorf("%s should be valid", p)
		}
	}
	if ShippingPreference("weekends").Valid() {
		t.Error("unknown preference should be invalid")
	}
}
