// Package pricing provides the pricelist catalog and the price cache:
// precomputed per-product prices with optional validity windows,
// resolved to a single authoritative price at a given date.
package pricing

import (
	"context"
	"time"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/entity"
	"saleflow/internal/core/id"
	"saleflow/internal/core/types"
)

// Pricelist is a named set of pricing rules in one currency.
type Pricelist struct {
	entity.Catalog

	// CurrencyID is the reference to the pricelist currency
	CurrencyID *string `db:"currency_id" json:"currencyId,omitempty"`

	// Active pricelists participate in cache refresh
	Active bool `db:"active" json:"active"`
}

// NewPricelist creates a new Pricelist with required fields.
func NewPricelist(code, name string) *Pricelist {
	return &Pricelist{
		Catalog: entity.NewCatalog(code, name),
		Active:  true,
	}
}

// PricelistItem is one pricing rule line. Items with a validity window
// produce date-bounded cache entries; items without one only influence
// the base price through the rule evaluator.
type PricelistItem struct {
	ID          id.ID       `db:"id" json:"id"`
	PricelistID id.ID       `db:"pricelist_id" json:"pricelistId"`
	ProductID   id.ID       `db:"product_id" json:"productId"`
	FixedPrice  types.Money `db:"fixed_price" json:"fixedPrice"`
	DateStart   *time.Time  `db:"date_start" json:"dateStart,omitempty"`
	DateEnd     *time.Time  `db:"date_end" json:"dateEnd,omitempty"`
}

// IsDated reports whether the item carries an explicit validity window.
func (i PricelistItem) IsDated() bool {
	return i.DateStart != nil || i.DateEnd != nil
}

// evaluationDate returns a date inside the item's validity window, used
// when asking the rule evaluator for the windowed price.
func (i PricelistItem) evaluationDate(today time.Time) time.Time {
	if i.DateStart != nil {
		return *i.DateStart
	}
	if i.DateEnd != nil {
		return *i.DateEnd
	}
	return today
}

// Validate implements entity.Validatable interface.
func (i *PricelistItem) Validate(ctx context.Context) error {
	if i.PricelistID == id.Nil() {
		return apperror.NewValidation("pricelist is required").
			WithDetail("field", "pricelistId")
	}
	if i.ProductID == id.Nil() {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if i.DateStart != nil && i.DateEnd != nil && i.DateEnd.Before(*i.DateStart) {
		return apperror.NewValidation("validity window ends before it starts").
			WithDetail("dateStart", i.DateStart).
			WithDetail("dateEnd", i.DateEnd)
	}
	if i.FixedPrice.IsNegative() {
		return apperror.NewValidation("price cannot be negative").
			WithDetail("field", "fixedPrice")
	}
	return nil
}

// CachedPrice is one precomputed price cache row. DateStart and DateEnd
// are nil for the base (unbounded) price.
type CachedPrice struct {
	ID          id.ID       `db:"id" json:"id"`
	ProductID   id.ID       `db:"product_id" json:"productId"`
	PricelistID id.ID       `db:"pricelist_id" json:"pricelistId"`
	Price       types.Money `db:"price" json:"price"`
	DateStart   *time.Time  `db:"date_start" json:"dateStart,omitempty"`
	DateEnd     *time.Time  `db:"date_end" json:"dateEnd,omitempty"`
}

// IsDated reports whether the entry has at least one validity bound.
func (p CachedPrice) IsDated() bool {
	return p.DateStart != nil || p.DateEnd != nil
}

// MatchesDate reports whether the entry is valid at the given date.
// A nil bound is open on that side.
func (p CachedPrice) MatchesDate(atDate time.Time) bool {
	if p.DateStart != nil && atDate.Before(*p.DateStart) {
		return false
	}
	if p.DateEnd != nil && atDate.After(*p.DateEnd) {
		return false
	}
	return true
}
