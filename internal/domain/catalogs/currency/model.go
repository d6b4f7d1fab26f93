// Package currency provides the Currency catalog.
// Currencies represent monetary units with exchange rates against the
// base currency; coupon amounts are converted through them.
package currency

import (
	"context"
	"regexp"

	"github.com/shopspring/decimal"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/entity"
)

// Currency represents a monetary unit.
type Currency struct {
	entity.Catalog

	// ISOCode is the ISO 4217 alphabetic code (e.g., "USD", "EUR")
	ISOCode *string `db:"iso_code" json:"isoCode"`

	// Symbol is the currency symbol (e.g., "$", "€")
	Symbol *string `db:"symbol" json:"symbol"`

	// DecimalPlaces is the number of decimal places
	DecimalPlaces int `db:"decimal_places" json:"decimalPlaces"`

	// Rate is the amount of this currency per one unit of the base
	// currency. The base currency has Rate 1.
	Rate decimal.Decimal `db:"rate" json:"rate"`

	// IsBase indicates if this is the base (accounting) currency
	IsBase bool `db:"is_base" json:"isBase"`
}

// NewCurrency creates a new Currency with required fields.
func NewCurrency(code, name string, isoCode, symbol *string) *Currency {
	return &Currency{
		Catalog:       entity.NewCatalog(code, name),
		ISOCode:       isoCode,
		Symbol:        symbol,
		DecimalPlaces: 2,
		Rate:          decimal.NewFromInt(1),
	}
}

// Validate implements entity.Validatable interface.
func (c *Currency) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidISOCode(c.ISOCode) {
		return apperror.NewValidation("ISO code must be 3 uppercase letters").
			WithDetail("field", "isoCode").
			WithDetail("value", c.ISOCode)
	}

	if c.Symbol == nil || *c.Symbol == "" {
		return apperror.NewValidation("symbol is required").
			WithDetail("field", "symbol")
	}

	if c.DecimalPlaces < 0 || c.DecimalPlaces > 8 {
		return apperror.NewValidation("decimal places must be between 0 and 8").
			WithDetail("field", "decimalPlaces")
	}

	if !c.Rate.IsPositive() {
		return apperror.NewValidation("rate must be positive").
			WithDetail("field", "rate")
	}

	return nil
}

// ISO returns the ISO 4217 code, empty when unset.
func (c *Currency) ISO() string {
	if c.ISOCode == nil {
		return ""
	}
	return *c.ISOCode
}

// Round rounds an amount to the currency's decimal places.
func (c *Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(int32(c.DecimalPlaces))
}

// Format formats an amount according to currency settings.
func (c *Currency) Format(amount decimal.Decimal) string {
	formatted := c.Round(amount).StringFixed(int32(c.DecimalPlaces))
	return formatted + *c.Symbol
}

// Convert converts an amount from this currency to another through the
// base currency, rounded to the target's decimal places.
func (c *Currency) Convert(amount decimal.Decimal, target *Currency) decimal.Decimal {
	if target == nil || c.Rate.IsZero() {
		return amount
	}
	inBase := amount.Div(c.Rate)
	return target.Round(inBase.Mul(target.Rate))
}

var isoCodeRE = regexp.MustCompile(`^[A-Z]{3}$`)

func isValidISOCode(code *string) bool {
	if code == nil {
		return false
	}
	return isoCodeRE.MatchString(*code)
}
