package pricing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"saleflow/internal/core/id"
	"saleflow/internal/core/tx"
	"saleflow/internal/core/types"
	"saleflow/pkg/logger"
)

// RuleEvaluator computes ordinary pricelist prices. It is the pricing
// rules engine the cache sits in front of; the refresh calls it, never
// reimplements it.
type RuleEvaluator interface {
	// ComputePrices returns the rule price per product for the given
	// pricelist at the given date. Products without an applicable rule
	// are absent from the result.
	ComputePrices(ctx context.Context, pricelistID id.ID, productIDs []id.ID, atDate time.Time) (map[id.ID]types.Money, error)
}

// Refresher recomputes the price cache for a pricelist. A refresh fully
// replaces the cached rows for the requested products inside one
// transaction; re-running with unchanged inputs leaves the set intact.
type Refresher struct {
	cache     CacheRepository
	items     ItemRepository
	evaluator RuleEvaluator
	txManager tx.Manager
	now       func() time.Time
}

// NewRefresher creates a price cache refresher.
func NewRefresher(cache CacheRepository, items ItemRepository, evaluator RuleEvaluator, txManager tx.Manager) *Refresher {
	return &Refresher{
		cache:     cache,
		items:     items,
		evaluator: evaluator,
		txManager: txManager,
		now:       time.Now,
	}
}

// RefreshResult summarizes one refresh run.
type RefreshResult struct {
	PricelistID  id.ID `json:"pricelistId"`
	BaseEntries  int   `json:"baseEntries"`
	DatedEntries int   `json:"datedEntries"`
}

// Refresh recomputes cached prices for the products on one pricelist.
//
// The base (unbounded) price is evaluated at a date outside every dated
// item's validity window, so scheduled promotions never leak into it;
// with no dated items the current date is used. Each dated item
// additionally produces one entry tagged with its validity window,
// priced at a date inside that window.
func (r *Refresher) Refresh(ctx context.Context, pricelistID id.ID, productIDs []id.ID) (RefreshResult, error) {
	result := RefreshResult{PricelistID: pricelistID}
	if len(productIDs) == 0 {
		return result, nil
	}

	log := logger.FromContext(ctx).WithComponent("pricing.refresh")
	today := dateOnly(r.now())

	datedItems, err := r.items.ListDated(ctx, pricelistID, productIDs)
	if err != nil {
		return result, fmt.Errorf("list dated items: %w", err)
	}

	baseDate := baseEvaluationDate(datedItems, today)
	basePrices, err := r.evaluator.ComputePrices(ctx, pricelistID, productIDs, baseDate)
	if err != nil {
		return result, fmt.Errorf("compute base prices: %w", err)
	}

	entries := make([]CachedPrice, 0, len(basePrices)+len(datedItems))
	for _, productID := range sortedIDs(basePrices) {
		entries = append(entries, CachedPrice{
			ID:          id.New(),
			ProductID:   productID,
			PricelistID: pricelistID,
			Price:       basePrices[productID],
		})
		result.BaseEntries++
	}

	for _, item := range datedItems {
		prices, err := r.evaluator.ComputePrices(ctx, pricelistID, []id.ID{item.ProductID}, item.evaluationDate(today))
		if err != nil {
			return result, fmt.Errorf("compute windowed price: %w", err)
		}
		price, ok := prices[item.ProductID]
		if !ok {
			continue
		}
		entries = append(entries, CachedPrice{
			ID:          id.New(),
			ProductID:   item.ProductID,
			PricelistID: pricelistID,
			Price:       price,
			DateStart:   item.DateStart,
			DateEnd:     item.DateEnd,
		})
		result.DatedEntries++
	}

	err = r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return r.cache.Replace(ctx, pricelistID, productIDs, entries)
	})
	if err != nil {
		return result, fmt.Errorf("replace cache entries: %w", err)
	}

	log.Infow("price cache refreshed",
		"pricelistId", pricelistID,
		"products", len(productIDs),
		"baseEntries", result.BaseEntries,
		"datedEntries", result.DatedEntries,
	)
	return result, nil
}

// baseEvaluationDate returns a date outside every dated window: the day
// before the earliest start, unless an end-only window (no start date,
// matching every earlier day) still covers it, in which case the day
// after the latest such end. Today when no item carries dates.
func baseEvaluationDate(items []PricelistItem, today time.Time) time.Time {
	var earliestStart, latestOpenEnd *time.Time
	for _, item := range items {
		if item.DateStart != nil {
			if earliestStart == nil || item.DateStart.Before(*earliestStart) {
				earliestStart = item.DateStart
			}
			continue
		}
		if item.DateEnd != nil {
			if latestOpenEnd == nil || item.DateEnd.After(*latestOpenEnd) {
				latestOpenEnd = item.DateEnd
			}
		}
	}

	if earliestStart != nil {
		candidate := dateOnly(earliestStart.AddDate(0, 0, -1))
		if latestOpenEnd == nil || candidate.After(dateOnly(*latestOpenEnd)) {
			return candidate
		}
	}
	if latestOpenEnd != nil {
		return dateOnly(latestOpenEnd.AddDate(0, 0, 1))
	}
	return today
}

func sortedIDs(prices map[id.ID]types.Money) []id.ID {
	ids := make([]id.ID, 0, len(prices))
	for productID := range prices {
		ids = append(ids, productID)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
