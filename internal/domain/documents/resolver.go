package documents

import (
	"context"
	"fmt"

	"saleflow/internal/core/id"
	"saleflow/internal/domain/catalogs/company"
	"saleflow/internal/domain/catalogs/currency"
)

// CurrencyResolver determines the currency for a new document.
type CurrencyResolver struct {
	companies  company.Repository
	currencies currency.Repository
}

// NewCurrencyResolver creates a new CurrencyResolver.
func NewCurrencyResolver(
	companies company.Repository,
	currencies currency.Repository,
) *CurrencyResolver {
	return &CurrencyResolver{
		companies:  companies,
		currencies: currencies,
	}
}

// ResolveForDocument determines the currency for a document based on explicit
// input, company base currency, or the system base currency.
func (r *CurrencyResolver) ResolveForDocument(
	ctx context.Context,
	explicitCurrencyID id.ID,
	companyID id.ID,
) (id.ID, error) {
	// 1. Explicit currency in document
	if !id.IsNil(explicitCurrencyID) {
		return explicitCurrencyID, nil
	}

	// 2. Company base currency
	if !id.IsNil(companyID) {
		co, err := r.companies.GetByID(ctx, companyID)
		if err == nil && co != nil && !id.IsNil(co.BaseCurrencyID) {
			return co.BaseCurrencyID, nil
		}
	}

	// 3. System base currency
	base, err := r.currencies.GetBase(ctx)
	if err != nil {
		return id.Nil(), fmt.Errorf("failed to determine currency: %w", err)
	}

	return base.ID, nil
}
