// Package company provides the Company catalog.
// The company carries deployment-wide sales defaults: security lead,
// default warehouse and the automatic workflow switches.
package company

import (
	"context"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/entity"
	"saleflow/internal/core/id"
)

// Company represents the selling legal entity.
type Company struct {
	entity.Catalog

	// FullName is the official full name
	FullName *string `db:"full_name" json:"fullName,omitempty"`

	// BaseCurrencyID is the accounting currency
	BaseCurrencyID id.ID `db:"base_currency_id" json:"baseCurrencyId,omitempty"`

	// SecurityLeadDays is the default buffer between preparation and
	// delivery, used when the warehouse does not override it
	SecurityLeadDays float64 `db:"security_lead_days" json:"securityLeadDays"`

	// DefaultWarehouseID is the warehouse new orders ship from
	DefaultWarehouseID *id.ID `db:"default_warehouse_id" json:"defaultWarehouseId,omitempty"`

	// AutoConfirm enables automatic confirmation of imported orders
	AutoConfirm bool `db:"auto_confirm" json:"autoConfirm"`

	// AutoInvoice enables automatic invoicing of delivered orders
	AutoInvoice bool `db:"auto_invoice" json:"autoInvoice"`

	// IsDefault indicates if this is the default company for new documents
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// NewCompany creates a new Company with required fields.
func NewCompany(code, name string, baseCurrencyID id.ID) *Company {
	return &Company{
		Catalog:        entity.NewCatalog(code, name),
		BaseCurrencyID: baseCurrencyID,
	}
}

// Validate implements entity.Validatable interface.
func (c *Company) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}
	if c.SecurityLeadDays < 0 {
		return apperror.NewValidation("security lead cannot be negative").
			WithDetail("field", "securityLeadDays")
	}
	return nil
}
