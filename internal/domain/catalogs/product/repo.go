package product

import (
	"context"

	"saleflow/internal/core/id"
	"saleflow/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// FindBySKU retrieves product by SKU.
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindByBarcode retrieves product by barcode.
	FindByBarcode(ctx context.Context, barcode string) (*Product, error)

	// ListSellable retrieves active sellable products by ids.
	ListSellable(ctx context.Context, ids []id.ID) ([]*Product, error)
}
