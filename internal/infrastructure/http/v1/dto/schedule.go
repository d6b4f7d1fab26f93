package dto

import (
	"time"

	"saleflow/internal/domain/schedule"
)

// --- Request DTOs ---

// CutoffRequest is an optional daily order cutoff.
type CutoffRequest struct {
	Hour     int    `json:"hour"`
	Minute   int    `json:"minute"`
	Timezone string `json:"timezone"`
}

// ScheduleLineRequest carries the delivery configuration for one
// computation. Everything is explicit; nothing is looked up.
type ScheduleLineRequest struct {
	CustomerLeadDays float64                     `json:"customerLeadDays"`
	SecurityLeadDays float64                     `json:"securityLeadDays"`
	CommitmentDate   *time.Time                  `json:"commitmentDate"`
	Calendar         schedule.WeekSpec           `json:"calendar"`
	Cutoff           *CutoffRequest              `json:"cutoff"`
	Preference       schedule.ShippingPreference `json:"preference"`
	Windows          schedule.DeliveryWindows    `json:"windows"`
}

// ToOrderLine assembles the schedule input.
func (r *ScheduleLineRequest) ToOrderLine() schedule.OrderLine {
	line := schedule.OrderLine{
		CustomerLead:   r.CustomerLeadDays,
		SecurityLead:   r.SecurityLeadDays,
		CommitmentDate: r.CommitmentDate,
		Calendar:       r.Calendar.Calendar(),
		Preference:     r.Preference,
		Windows:        r.Windows,
	}
	if r.Cutoff != nil {
		line.Cutoff = &schedule.CutoffSpec{
			Hour:     r.Cutoff.Hour,
			Minute:   r.Cutoff.Minute,
			Timezone: r.Cutoff.Timezone,
		}
	}
	return line
}

// ProcurementDatesRequest computes planned and deadline dates.
type ProcurementDatesRequest struct {
	ScheduleLineRequest
	OrderDate time.Time `json:"orderDate" binding:"required"`
}

// ExpectedDateRequest computes the customer-facing delivery moment.
type ExpectedDateRequest struct {
	ScheduleLineRequest
	OrderDate time.Time `json:"orderDate" binding:"required"`
}

// --- Response DTOs ---

// ProcurementDatesResponse is the planning output.
type ProcurementDatesResponse struct {
	DatePlanned  time.Time `json:"datePlanned"`
	DateDeadline time.Time `json:"dateDeadline"`
}

// ExpectedDateResponse is the delivery promise output.
type ExpectedDateResponse struct {
	ExpectedDate time.Time `json:"expectedDate"`
}
