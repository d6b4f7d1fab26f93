// Package product provides the Product catalog.
// Products carry the per-item customer lead time and list price used by
// sale orders.
package product

import (
	"context"

	"github.com/shopspring/decimal"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/entity"
)

// ProductType defines the type of item.
type ProductType string

const (
	TypeGoods   ProductType = "goods"
	TypeService ProductType = "service"
	TypeCombo   ProductType = "combo"
)

// Product represents a sellable item.
type Product struct {
	entity.Catalog

	// Type defines item category
	Type ProductType `db:"type" json:"type"`

	// SKU is the stock keeping unit
	SKU *string `db:"sku" json:"sku,omitempty"`

	// Barcode is the item barcode (EAN-13, etc.)
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// BaseUnitID is the reference to base unit of measure
	BaseUnitID *string `db:"base_unit_id" json:"baseUnitId,omitempty"`

	// ListPrice is the default sale price before pricelist rules
	ListPrice decimal.Decimal `db:"list_price" json:"listPrice"`

	// CustomerLeadDays is the promised delay between order and delivery
	CustomerLeadDays float64 `db:"customer_lead_days" json:"customerLeadDays"`

	// SaleOK indicates the product can be put on sale orders
	SaleOK bool `db:"sale_ok" json:"saleOk"`

	// Weight in kg (for logistics)
	Weight decimal.Decimal `db:"weight" json:"weight"`

	// Description is a detailed description
	Description *string `db:"description" json:"description,omitempty"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name string, pType ProductType) *Product {
	return &Product{
		Catalog:   entity.NewCatalog(code, name),
		Type:      pType,
		SaleOK:    true,
		ListPrice: decimal.Zero,
		Weight:    decimal.Zero,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidProductType(p.Type) {
		return apperror.NewValidation("invalid product type").
			WithDetail("field", "type").
			WithDetail("value", string(p.Type))
	}

	if p.ListPrice.IsNegative() {
		return apperror.NewValidation("list price cannot be negative").
			WithDetail("field", "listPrice")
	}

	if p.CustomerLeadDays < 0 {
		return apperror.NewValidation("customer lead cannot be negative").
			WithDetail("field", "customerLeadDays")
	}

	if p.Weight.IsNegative() {
		return apperror.NewValidation("weight cannot be negative").
			WithDetail("field", "weight")
	}

	return nil
}

// IsPhysical returns true if item has physical presence (not a service).
func (p *Product) IsPhysical() bool {
	return p.Type != TypeService
}

func isValidProductType(t ProductType) bool {
	switch t {
	case TypeGoods, TypeService, TypeCombo:
		return true
	}
	return false
}
