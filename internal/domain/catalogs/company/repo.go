package company

import (
	"context"

	"saleflow/internal/domain"
)

// Repository defines the interface for company storage.
type Repository interface {
	domain.CatalogRepository[*Company]

	GetDefault(ctx context.Context) (*Company, error)
}
