package warehouse

import (
	"context"
	"testing"
	"time"

	"saleflow/internal/core/apperror"
	"saleflow/internal/domain/schedule"
)

func TestWarehouseValidate(t *testing.T) {
	wh := NewWarehouse("WH-001", "Main")
	if err := wh.Validate(context.Background()); err != nil {
		t.Fatalf("valid warehouse rejected: %v", err)
	}

	wh.SecurityLeadDays = -1
	if err := wh.Validate(context.Background()); err == nil {
		t.Error("negative security lead accepted")
	}

	wh = NewWarehouse("WH-002", "Cutoff")
	wh.ApplyCutoff = true
	wh.CutoffHour = 8
	wh.CutoffTimezone = "Mars/Olympus"
	if err := wh.Validate(context.Background()); !apperror.IsConfiguration(err) {
		t.Errorf("bad cutoff timezone should be a configuration error, got %v", err)
	}
}

func TestWarehouseCutoff(t *testing.T) {
	wh := NewWarehouse("WH-001", "Main")
	wh.CutoffHour = 8
	if wh.Cutoff() != nil {
		t.Error("cutoff disabled must return nil")
	}

	wh.ApplyCutoff = true
	cutoff := wh.Cutoff()
	if cutoff == nil || cutoff.Hour != 8 {
		t.Fatalf("cutoff = %+v, want hour 8", cutoff)
	}
}

func TestWarehouseWorkingCalendar(t *testing.T) {
	wh := NewWarehouse("WH-001", "Main")
	if wh.WorkingCalendar() != nil {
		t.Error("no configured calendar must return nil")
	}

	wh.Calendar = schedule.WeekSpec{
		Attendances: []schedule.Attendance{{
			Weekday: time.Monday,
			From:    schedule.TimeOfDay{Hour: 8},
			To:      schedule.TimeOfDay{Hour: 16},
		}},
	}
	cal := wh.WorkingCalendar()
	if cal == nil {
		t.Fatal("configured calendar must materialize")
	}
	monday := time.Date(2021, 8, 16, 10, 0, 0, 0, time.UTC)
	if !cal.IsWorkingDay(monday) {
		t.Error("monday should be a working day")
	}
}
