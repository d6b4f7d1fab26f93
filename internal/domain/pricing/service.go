package pricing

import (
	"context"
	"time"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/id"
	"saleflow/internal/core/tx"
	"saleflow/internal/core/types"
	"saleflow/internal/domain"
	"saleflow/internal/core/numerator"
)

// Service provides business logic for pricelists and the price cache.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Pricelist]
	repo      Repository
	cache     CacheRepository
	refresher *Refresher
}

// NewService creates a new pricing service.
func NewService(
	repo Repository,
	cache CacheRepository,
	refresher *Refresher,
	txManager tx.Manager,
	num numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Pricelist]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  num,
		EntityName: "pricelist",
	})

	return &Service{
		CatalogService: base,
		repo:           repo,
		cache:          cache,
		refresher:      refresher,
	}
}

// GetPrice resolves the cached price for one product at a date.
func (s *Service) GetPrice(ctx context.Context, pricelistID, productID id.ID, atDate time.Time) (types.Money, error) {
	entries, err := s.cache.SearchMatching(ctx, pricelistID, []id.ID{productID}, atDate)
	if err != nil {
		return types.Money{}, err
	}
	entry, ok := ResolvePrice(entries, productID, atDate)
	if !ok {
		return types.Money{}, apperror.NewNotFound("cached price", productID.String()).
			WithDetail("pricelistId", pricelistID).
			WithDetail("atDate", atDate)
	}
	return entry.Price, nil
}

// GetPrices resolves cached prices for a product set at a date. Products
// with no cached price are absent from the result.
func (s *Service) GetPrices(ctx context.Context, pricelistID id.ID, productIDs []id.ID, atDate time.Time) (map[id.ID]types.Money, error) {
	entries, err := s.cache.SearchMatching(ctx, pricelistID, productIDs, atDate)
	if err != nil {
		return nil, err
	}
	resolved := ResolvePrices(entries, atDate)
	prices := make(map[id.ID]types.Money, len(resolved))
	for productID, entry := range resolved {
		prices[productID] = entry.Price
	}
	return prices, nil
}

// Refresh recomputes the cache for the products on one pricelist.
func (s *Service) Refresh(ctx context.Context, pricelistID id.ID, productIDs []id.ID) (RefreshResult, error) {
	return s.refresher.Refresh(ctx, pricelistID, productIDs)
}

// CheckDuplicates verifies the cache invariant: at most one unbounded
// price per (product, pricelist) pair. Violations come back as a
// business error carrying the offending pricelist.
func (s *Service) CheckDuplicates(ctx context.Context, pricelistID id.ID) error {
	groups, err := s.cache.FindDuplicates(ctx, pricelistID)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return nil
	}
	return apperror.NewDuplicateCacheEntry(pricelistID.String(), len(groups))
}

// ListActive retrieves pricelists participating in cache refresh.
func (s *Service) ListActive(ctx context.Context) ([]*Pricelist, error) {
	return s.repo.ListActive(ctx)
}
