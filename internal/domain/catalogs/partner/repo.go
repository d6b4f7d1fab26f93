package partner

import (
	"context"

	"saleflow/internal/domain"
)

// Repository defines the interface for Partner persistence.
type Repository interface {
	domain.CatalogRepository[*Partner]

	// FindByEmail retrieves a partner by primary email.
	FindByEmail(ctx context.Context, email string) (*Partner, error)
}
