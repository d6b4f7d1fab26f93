// Package warehouse provides the Warehouse catalog.
// Warehouses carry the working calendar, order cutoff and security lead
// that drive delivery-date computation for orders shipped from them.
package warehouse

import (
	"context"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/entity"
	"saleflow/internal/domain/schedule"
)

// Warehouse represents a shipping location.
type Warehouse struct {
	entity.Catalog

	// Address is the physical address
	Address *string `db:"address" json:"address,omitempty"`

	// IsActive indicates if warehouse is operational
	IsActive bool `db:"is_active" json:"isActive"`

	// IsDefault indicates if this is the default warehouse
	IsDefault bool `db:"is_default" json:"isDefault"`

	// Calendar is the working calendar (attendances and leaves, JSONB).
	// Empty means no calendar projection for this warehouse.
	Calendar schedule.WeekSpec `db:"calendar" json:"calendar"`

	// ApplyCutoff enables daily cutoff rollover for orders
	ApplyCutoff bool `db:"apply_cutoff" json:"applyCutoff"`

	// CutoffHour and CutoffMinute define the daily order cutoff
	CutoffHour   int `db:"cutoff_hour" json:"cutoffHour"`
	CutoffMinute int `db:"cutoff_minute" json:"cutoffMinute"`

	// CutoffTimezone resolves the cutoff wall-clock time; empty is UTC
	CutoffTimezone string `db:"cutoff_timezone" json:"cutoffTimezone,omitempty"`

	// SecurityLeadDays is the buffer between preparation and delivery
	SecurityLeadDays float64 `db:"security_lead_days" json:"securityLeadDays"`

	// Description
	Description *string `db:"description" json:"description,omitempty"`
}

// NewWarehouse creates a new Warehouse with required fields.
func NewWarehouse(code, name string) *Warehouse {
	return &Warehouse{
		Catalog:  entity.NewCatalog(code, name),
		IsActive: true,
	}
}

// Validate implements entity.Validatable interface.
func (w *Warehouse) Validate(ctx context.Context) error {
	if err := w.Catalog.Validate(ctx); err != nil {
		return err
	}

	if w.SecurityLeadDays < 0 {
		return apperror.NewValidation("security lead cannot be negative").
			WithDetail("field", "securityLeadDays")
	}

	if w.ApplyCutoff {
		if err := w.CutoffSpec().Validate(); err != nil {
			return err
		}
	}

	return nil
}

// CutoffSpec returns the warehouse cutoff configuration.
func (w *Warehouse) CutoffSpec() schedule.CutoffSpec {
	return schedule.CutoffSpec{
		Hour:     w.CutoffHour,
		Minute:   w.CutoffMinute,
		Timezone: w.CutoffTimezone,
	}
}

// Cutoff returns the cutoff to apply for this warehouse, nil when
// cutoff rollover is disabled.
func (w *Warehouse) Cutoff() *schedule.CutoffSpec {
	if !w.ApplyCutoff {
		return nil
	}
	spec := w.CutoffSpec()
	return &spec
}

// WorkingCalendar materializes the warehouse calendar, nil when none is
// configured.
func (w *Warehouse) WorkingCalendar() schedule.WorkingCalendar {
	cal := w.Calendar.Calendar()
	if cal == nil {
		return nil
	}
	return cal
}

// CanShip returns true if warehouse can ship orders.
func (w *Warehouse) CanShip() bool {
	return w.IsActive && !w.IsFolder
}
