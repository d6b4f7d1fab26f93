package currency

import (
	"context"

	"saleflow/internal/domain"
)

// Repository defines the interface for Currency persistence.
type Repository interface {
	domain.CatalogRepository[*Currency]

	// GetBase retrieves the base (accounting) currency.
	GetBase(ctx context.Context) (*Currency, error)

	// FindByISOCode retrieves currency by ISO 4217 code.
	FindByISOCode(ctx context.Context, isoCode string) (*Currency, error)
}
