// Package partner provides the Partner catalog.
// Partners are customers and delivery addresses; shipping partners carry
// the delivery-time preference and windows used by date computation.
package partner

import (
	"context"
	"regexp"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/entity"
	"saleflow/internal/core/id"
	"saleflow/internal/domain/schedule"
)

// Pre-compiled regex patterns for validation (performance optimization)
var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// PartnerType defines the role of a partner.
type PartnerType string

const (
	TypeCustomer PartnerType = "customer"
	TypeDelivery PartnerType = "delivery" // delivery address of a customer
	TypeOther    PartnerType = "other"
)

// Partner represents a customer or a delivery address.
type Partner struct {
	entity.Catalog

	// Type defines the partner role
	Type PartnerType `db:"type" json:"type"`

	// FullName is the official registered name
	FullName *string `db:"full_name" json:"fullName,omitempty"`

	// Address is the delivery address
	Address *string `db:"address" json:"address,omitempty"`

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the primary contact email
	Email *string `db:"email" json:"email,omitempty"`

	// PricelistID is the default pricelist for this partner
	PricelistID *id.ID `db:"pricelist_id" json:"pricelistId,omitempty"`

	// DeliveryPreference controls delivery moment snapping
	DeliveryPreference schedule.ShippingPreference `db:"delivery_preference" json:"deliveryPreference"`

	// TimeWindows are the accepted delivery windows (JSONB), used only
	// with the time_windows preference
	TimeWindows schedule.DeliveryWindows `db:"time_windows" json:"timeWindows"`

	// UseOwnCutoff makes this partner's cutoff override the warehouse
	// cutoff when computing delivery dates
	UseOwnCutoff bool `db:"use_own_cutoff" json:"useOwnCutoff"`

	// CutoffHour and CutoffMinute define the partner cutoff, applied
	// only when UseOwnCutoff is set
	CutoffHour   int `db:"cutoff_hour" json:"cutoffHour"`
	CutoffMinute int `db:"cutoff_minute" json:"cutoffMinute"`

	// CutoffTimezone is an IANA timezone name for the partner cutoff,
	// empty means UTC
	CutoffTimezone string `db:"cutoff_timezone" json:"cutoffTimezone,omitempty"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewPartner creates a new Partner with required fields.
func NewPartner(code, name string, pType PartnerType) *Partner {
	return &Partner{
		Catalog:            entity.NewCatalog(code, name),
		Type:               pType,
		DeliveryPreference: schedule.PrefAnytime,
	}
}

// Validate implements entity.Validatable interface.
func (p *Partner) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidPartnerType(p.Type) {
		return apperror.NewValidation("invalid partner type").
			WithDetail("field", "type").
			WithDetail("value", string(p.Type))
	}

	if !p.DeliveryPreference.Valid() {
		return apperror.NewValidation("invalid delivery preference").
			WithDetail("field", "deliveryPreference").
			WithDetail("value", string(p.DeliveryPreference))
	}

	if p.DeliveryPreference == schedule.PrefTimeWindows && p.TimeWindows.Empty() {
		return apperror.NewValidation("time_windows preference requires at least one window").
			WithDetail("field", "timeWindows")
	}

	if p.UseOwnCutoff {
		if err := p.CutoffSpec().Validate(); err != nil {
			return err
		}
	}

	if p.Email != nil && *p.Email != "" && !emailRE.MatchString(*p.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	return nil
}

// CutoffSpec builds the partner cutoff regardless of the UseOwnCutoff
// flag; callers that need the effective cutoff use Cutoff.
func (p *Partner) CutoffSpec() schedule.CutoffSpec {
	return schedule.CutoffSpec{
		Hour:     p.CutoffHour,
		Minute:   p.CutoffMinute,
		Timezone: p.CutoffTimezone,
	}
}

// Cutoff returns the partner cutoff, nil unless UseOwnCutoff is set.
func (p *Partner) Cutoff() *schedule.CutoffSpec {
	if !p.UseOwnCutoff {
		return nil
	}
	spec := p.CutoffSpec()
	return &spec
}

// DeliveryWindows returns the effective windows for date computation:
// configured windows for time_windows, whole workdays for workdays,
// empty for anytime.
func (p *Partner) DeliveryWindows() schedule.DeliveryWindows {
	switch p.DeliveryPreference {
	case schedule.PrefTimeWindows:
		return p.TimeWindows
	case schedule.PrefWorkdays:
		return schedule.WorkdayWindows()
	default:
		return schedule.DeliveryWindows{}
	}
}

func isValidPartnerType(t PartnerType) bool {
	switch t {
	case TypeCustomer, TypeDelivery, TypeOther:
		return true
	}
	return false
}
