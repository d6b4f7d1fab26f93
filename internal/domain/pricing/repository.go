package pricing

import (
	"context"
	"time"

	"saleflow/internal/core/id"
	"saleflow/internal/domain"
)

// Repository defines the interface for Pricelist persistence.
type Repository interface {
	domain.CatalogRepository[*Pricelist]

	// ListActive retrieves pricelists participating in cache refresh.
	ListActive(ctx context.Context) ([]*Pricelist, error)
}

// ItemRepository defines the interface for PricelistItem persistence.
type ItemRepository interface {
	// ListByPricelist retrieves items for a pricelist, optionally
	// limited to the given products. Stable order by creation.
	ListByPricelist(ctx context.Context, pricelistID id.ID, productIDs []id.ID) ([]PricelistItem, error)

	// ListDated retrieves only the items that carry a validity window.
	ListDated(ctx context.Context, pricelistID id.ID, productIDs []id.ID) ([]PricelistItem, error)
}

// DuplicateGroup describes redundant unbounded cache rows for one
// (product, pricelist) pair.
type DuplicateGroup struct {
	ProductID   id.ID `db:"product_id" json:"productId"`
	PricelistID id.ID `db:"pricelist_id" json:"pricelistId"`
	Count       int   `db:"cnt" json:"count"`
}

// CacheRepository defines the interface for CachedPrice persistence.
type CacheRepository interface {
	// SearchMatching retrieves entries for the products that are valid
	// at the given date, in stable creation order.
	SearchMatching(ctx context.Context, pricelistID id.ID, productIDs []id.ID, atDate time.Time) ([]CachedPrice, error)

	// ListByProducts retrieves all entries for the products regardless
	// of validity, in stable creation order.
	ListByProducts(ctx context.Context, pricelistID id.ID, productIDs []id.ID) ([]CachedPrice, error)

	// Replace atomically swaps the cached rows for (pricelist,
	// productIDs) with the given set. Rows matching an incoming entry
	// by (product, pricelist, dateStart, dateEnd) are updated in place,
	// other rows for those products are removed. Must run inside the
	// caller's transaction; re-running with identical entries is a
	// no-op on the persisted set.
	Replace(ctx context.Context, pricelistID id.ID, productIDs []id.ID, entries []CachedPrice) error

	// FindDuplicates returns (product, pricelist) pairs that hold more
	// than one unbounded cached price.
	FindDuplicates(ctx context.Context, pricelistID id.ID) ([]DuplicateGroup, error)
}
