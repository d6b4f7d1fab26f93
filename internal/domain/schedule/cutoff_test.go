package schedule

import (
	"testing"

	"saleflow/internal/core/apperror"
)

func TestCutoffApply(t *testing.T) {
	cutoff := CutoffSpec{Hour: 8}

	tests := []struct {
		name        string
		date        string
		keepSameDay bool
		want        string
	}{
		{
			name: "before cutoff stays on the same day",
			date: "2021-08-13 07:00:00",
			want: "2021-08-13 08:00:00",
		},
		{
			name: "exactly at cutoff stays on the same day",
			date: "2021-08-13 08:00:00",
			want: "2021-08-13 08:00:00",
		},
		{
			name: "after cutoff rolls to the next day",
			date: "2021-08-13 09:00:00",
			want: "2021-08-14 08:00:00",
		},
		{
			name:        "keep same day suppresses the roll",
			date:        "2021-08-13 09:00:00",
			keepSameDay: true,
			want:        "2021-08-13 08:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cutoff.Apply(mustTime(t, tt.date), tt.keepSameDay)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			want := mustTime(t, tt.want)
			if !got.Equal(want) {
				t.Errorf("Apply(%s) = %s, want %s", tt.date, got, want)
			}
		})
	}
}

func TestCutoffApplyTimezone(t *testing.T) {
	// 12:00 in Paris is 10:00 UTC during summer time.
	cutoff := CutoffSpec{Hour: 12, Timezone: "Europe/Paris"}

	got, err := cutoff.Apply(mustTime(t, "2021-08-13 09:00:00"), false)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if want := mustTime(t, "2021-08-13 10:00:00"); !got.Equal(want) {
		t.Errorf("before local cutoff = %s, want %s", got, want)
	}

	got, err = cutoff.Apply(mustTime(t, "2021-08-13 11:00:00"), false)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if want := mustTime(t, "2021-08-14 10:00:00"); !got.Equal(want) {
		t.Errorf("after local cutoff = %s, want %s", got, want)
	}
}

func TestCutoffApplyAcrossDSTTransition(t *testing.T) {
	// Paris springs forward on 2021-03-28. A roll over the transition
	// must land on 12:00 local, which is 10:00 UTC afterwards.
	cutoff := CutoffSpec{Hour: 12, Timezone: "Europe/Paris"}

	got, err := cutoff.Apply(mustTime(t, "2021-03-27 12:00:00"), false)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if want := mustTime(t, "2021-03-28 10:00:00"); !got.Equal(want) {
		t.Errorf("rolled cutoff = %s, want %s", got, want)
	}
}

func TestCutoffValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    CutoffSpec
		wantErr bool
	}{
		{name: "valid utc", spec: CutoffSpec{Hour: 8}},
		{name: "valid zoned", spec: CutoffSpec{Hour: 18, Minute: 30, Timezone: "Europe/Paris"}},
		{name: "hour out of range", spec: CutoffSpec{Hour: 24}, wantErr: true},
		{name: "negative minute", spec: CutoffSpec{Hour: 8, Minute: -1}, wantErr: true},
		{name: "unknown timezone", spec: CutoffSpec{Hour: 8, Timezone: "Mars/Olympus"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !apperror.IsConfiguration(err) {
					t.Errorf("expected configuration error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCutoffApplyBadTimezone(t *testing.T) {
	cutoff := CutoffSpec{Hour: 8, Timezone: "Mars/Olympus"}
	if _, err := cutoff.Apply(mustTime(t, "2021-08-13 07:00:00"), false); !apperror.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}
