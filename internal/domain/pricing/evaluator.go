package pricing

import (
	"context"
	"fmt"
	"time"

	"saleflow/internal/core/id"
	"saleflow/internal/core/types"
	"saleflow/internal/domain/catalogs/product"
)

// ProductSource resolves products for list price fallback.
type ProductSource interface {
	GetByID(ctx context.Context, entityID id.ID) (*product.Product, error)
}

// ItemEvaluator is the ordinary pricing rules engine: the price of a
// product on a pricelist is the fixed price of the first item applicable
// at the date, dated items winning over undated ones. A product without
// any applicable item falls back to its list price.
type ItemEvaluator struct {
	items    ItemRepository
	products ProductSource
}

// NewItemEvaluator creates the item-based rule evaluator.
func NewItemEvaluator(items ItemRepository, products ProductSource) *ItemEvaluator {
	return &ItemEvaluator{
		items:    items,
		products: products,
	}
}

// ComputePrices implements RuleEvaluator.
func (e *ItemEvaluator) ComputePrices(ctx context.Context, pricelistID id.ID, productIDs []id.ID, atDate time.Time) (map[id.ID]types.Money, error) {
	items, err := e.items.ListByPricelist(ctx, pricelistID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("list pricelist items: %w", err)
	}

	prices := make(map[id.ID]types.Money, len(productIDs))
	picked := make(map[id.ID]PricelistItem, len(productIDs))

	for _, item := range items {
		if !itemMatchesDate(item, atDate) {
			continue
		}
		if prev, ok := picked[item.ProductID]; ok {
			if prev.IsDated() || !item.IsDated() {
				continue
			}
		}
		picked[item.ProductID] = item
		prices[item.ProductID] = item.FixedPrice
	}

	for _, productID := range productIDs {
		if _, ok := prices[productID]; ok {
			continue
		}
		p, err := e.products.GetByID(ctx, productID)
		if err != nil {
			// No rule and no product: the product simply has no price
			// on this pricelist.
			continue
		}
		prices[productID] = p.ListPrice
	}

	return prices, nil
}

func itemMatchesDate(item PricelistItem, atDate time.Time) bool {
	if item.DateStart != nil && atDate.Before(*item.DateStart) {
		return false
	}
	if item.DateEnd != nil && atDate.After(*item.DateEnd) {
		return false
	}
	return true
}
