package pricing

import (
	"context"
	"testing"
	"time"

	"saleflow/internal/core/id"
	"saleflow/internal/core/types"
)

type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeItemRepo struct {
	items []PricelistItem
}

func (f *fakeItemRepo) ListByPricelist(_ context.Context, pricelistID id.ID, _ []id.ID) ([]PricelistItem, error) {
	return f.items, nil
}

func (f *fakeItemRepo) ListDated(_ context.Context, pricelistID id.ID, _ []id.ID) ([]PricelistItem, error) {
	var dated []PricelistItem
	for _, item := range f.items {
		if item.PricelistID == pricelistID && item.IsDated() {
			dated = append(dated, item)
		}
	}
	return dated, nil
}

// fakeEvaluator prices every product at 80 inside the promo window and
// 100 outside it, recording each evaluation date.
type fakeEvaluator struct {
	promoStart time.Time
	promoEnd   time.Time
	askedDates []time.Time
}

func (f *fakeEvaluator) ComputePrices(_ context.Context, _ id.ID, productIDs []id.ID, atDate time.Time) (map[id.ID]types.Money, error) {
	f.askedDates = append(f.askedDates, atDate)
	price := types.MustMoney("100")
	if !atDate.Before(f.promoStart) && !atDate.After(f.promoEnd) {
		price = types.MustMoney("80")
	}
	prices := make(map[id.ID]types.Money, len(productIDs))
	for _, productID := range productIDs {
		prices[productID] = price
	}
	return prices, nil
}

type cacheKey struct {
	product   id.ID
	pricelist id.ID
	start     string
	end       string
}

const nullBound = "null"

func keyOf(e CachedPrice) cacheKey {
	k := cacheKey{product: e.ProductID, pricelist: e.PricelistID, start: nullBound, end: nullBound}
	if e.DateStart != nil {
		k.start = e.DateStart.Format("2006-01-02")
	}
	if e.DateEnd != nil {
		k.end = e.DateEnd.Format("2006-01-02")
	}
	return k
}

type fakeCacheRepo struct {
	entries []CachedPrice
}

func (f *fakeCacheRepo) SearchMatching(_ context.Context, pricelistID id.ID, productIDs []id.ID, atDate time.Time) ([]CachedPrice, error) {
	var out []CachedPrice
	for _, e := range f.entries {
		if e.PricelistID != pricelistID || !e.MatchesDate(atDate) {
			continue
		}
		for _, productID := range productIDs {
			if e.ProductID == productID {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeCacheRepo) ListByProducts(_ context.Context, pricelistID id.ID, _ []id.ID) ([]CachedPrice, error) {
	return f.entries, nil
}

func (f *fakeCacheRepo) Replace(_ context.Context, pricelistID id.ID, productIDs []id.ID, entries []CachedPrice) error {
	inScope := make(map[id.ID]bool, len(productIDs))
	for _, productID := range productIDs {
		inScope[productID] = true
	}

	existing := make(map[cacheKey]CachedPrice)
	var kept []CachedPrice
	for _, e := range f.entries {
		if e.PricelistID == pricelistID && inScope[e.ProductID] {
			existing[keyOf(e)] = e
			continue
		}
		kept = append(kept, e)
	}

	// Matching keys update in place, keeping the stored row identity.
	for _, e := range entries {
		if prev, ok := existing[keyOf(e)]; ok {
			prev.Price = e.Price
			kept = append(kept, prev)
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return nil
}

func (f *fakeCacheRepo) FindDuplicates(_ context.Context, pricelistID id.ID) ([]DuplicateGroup, error) {
	counts := make(map[cacheKey]int)
	for _, e := range f.entries {
		if e.PricelistID == pricelistID && !e.IsDated() {
			counts[keyOf(e)]++
		}
	}
	var groups []DuplicateGroup
	for k, n := range counts {
		if n > 1 {
			groups = append(groups, DuplicateGroup{ProductID: k.product, PricelistID: k.pricelist, Count: n})
		}
	}
	return groups, nil
}

func newTestRefresher(t *testing.T, cache *fakeCacheRepo, items *fakeItemRepo, eval *fakeEvaluator) (*Refresher, *fakeTxManager) {
	t.Helper()
	txm := &fakeTxManager{}
	r := NewRefresher(cache, items, eval, txm)
	r.now = func() time.Time { return mustParseDay(t, "2023-11-20") }
	return r, txm
}

func mustParseDay(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return parsed.UTC()
}

func TestRefreshComputesBaseAndDatedEntries(t *testing.T) {
	ctx := context.Background()
	pricelist := id.New()
	product := id.New()

	items := &fakeItemRepo{items: []PricelistItem{{
		ID:          id.New(),
		PricelistID: pricelist,
		ProductID:   product,
		DateStart:   dayPtr(t, "2024-01-01"),
		DateEnd:     dayPtr(t, "2024-01-31"),
	}}}
	eval := &fakeEvaluator{promoStart: day(t, "2024-01-01"), promoEnd: day(t, "2024-01-31")}
	cache := &fakeCacheRepo{}
	refresher, txm := newTestRefresher(t, cache, items, eval)

	result, err := refresher.Refresh(ctx, pricelist, []id.ID{product})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if result.BaseEntries != 1 || result.DatedEntries != 1 {
		t.Errorf("result = %+v, want 1 base and 1 dated entry", result)
	}
	if txm.calls != 1 {
		t.Errorf("replace ran in %d transactions, want 1", txm.calls)
	}

	// The base price must be evaluated the day before the promo starts,
	// so the promotional price never leaks into the unbounded entry.
	if len(eval.askedDates) == 0 || !eval.askedDates[0].Equal(day(t, "2023-12-31")) {
		t.Errorf("base evaluation dates = %v, want first at 2023-12-31", eval.askedDates)
	}

	entry, ok := ResolvePrice(cache.entries, product, day(t, "2024-01-15"))
	if !ok || !entry.Price.Equal(types.MustMoney("80")) {
		t.Errorf("january resolution = %v %v, want promo 80", entry.Price, ok)
	}
	entry, ok = ResolvePrice(cache.entries, product, day(t, "2024-02-01"))
	if !ok || !entry.Price.Equal(types.MustMoney("100")) {
		t.Errorf("february resolution = %v %v, want base 100", entry.Price, ok)
	}
}

func TestRefreshBaseDateAvoidsEndOnlyWindow(t *testing.T) {
	ctx := context.Background()
	pricelist := id.New()
	product := id.New()

	// A promo valid until January 31 with no start date matches every
	// earlier day, including the refresh day itself.
	items := &fakeItemRepo{items: []PricelistItem{{
		ID:          id.New(),
		PricelistID: pricelist,
		ProductID:   product,
		DateEnd:     dayPtr(t, "2024-01-31"),
	}}}
	eval := &fakeEvaluator{promoStart: day(t, "2000-01-01"), promoEnd: day(t, "2024-01-31")}
	cache := &fakeCacheRepo{}
	refresher, _ := newTestRefresher(t, cache, items, eval)

	if _, err := refresher.Refresh(ctx, pricelist, []id.ID{product}); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// The base price must be evaluated after the window ends.
	if len(eval.askedDates) == 0 || !eval.askedDates[0].Equal(day(t, "2024-02-01")) {
		t.Errorf("base evaluation dates = %v, want first at 2024-02-01", eval.askedDates)
	}

	entry, ok := ResolvePrice(cache.entries, product, day(t, "2024-01-15"))
	if !ok || !entry.Price.Equal(types.MustMoney("80")) {
		t.Errorf("january resolution = %v %v, want promo 80", entry.Price, ok)
	}
	entry, ok = ResolvePrice(cache.entries, product, day(t, "2024-02-05"))
	if !ok || !entry.Price.Equal(types.MustMoney("100")) {
		t.Errorf("february resolution = %v %v, want base 100", entry.Price, ok)
	}
}

func TestRefreshIsIdempotent(t *testing.T) {
	ctx := context.Background()
	pricelist := id.New()
	product := id.New()

	items := &fakeItemRepo{items: []PricelistItem{{
		ID:          id.New(),
		PricelistID: pricelist,
		ProductID:   product,
		DateStart:   dayPtr(t, "2024-01-01"),
		DateEnd:     dayPtr(t, "2024-01-31"),
	}}}
	eval := &fakeEvaluator{promoStart: day(t, "2024-01-01"), promoEnd: day(t, "2024-01-31")}
	cache := &fakeCacheRepo{}
	refresher, _ := newTestRefresher(t, cache, items, eval)

	if _, err := refresher.Refresh(ctx, pricelist, []id.ID{product}); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	first := make(map[cacheKey]CachedPrice, len(cache.entries))
	for _, e := range cache.entries {
		first[keyOf(e)] = e
	}

	if _, err := refresher.Refresh(ctx, pricelist, []id.ID{product}); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if len(cache.entries) != len(first) {
		t.Fatalf("second refresh changed entry count: %d -> %d", len(first), len(cache.entries))
	}
	for _, e := range cache.entries {
		prev, ok := first[keyOf(e)]
		if !ok {
			t.Fatalf("second refresh introduced new key %+v", keyOf(e))
		}
		if prev.ID != e.ID || !prev.Price.Equal(e.Price) {
			t.Errorf("second refresh rewrote row %+v", keyOf(e))
		}
	}

	groups, err := cache.FindDuplicates(ctx, pricelist)
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("refresh introduced duplicates: %+v", groups)
	}
}

func TestRefreshReplacesStaleRows(t *testing.T) {
	ctx := context.Background()
	pricelist := id.New()
	product := id.New()

	// A stale windowed row from a removed pricelist item.
	cache := &fakeCacheRepo{entries: []CachedPrice{{
		ID:          id.New(),
		ProductID:   product,
		PricelistID: pricelist,
		Price:       types.MustMoney("55"),
		DateStart:   dayPtr(t, "2023-06-01"),
		DateEnd:     dayPtr(t, "2023-06-30"),
	}}}
	items := &fakeItemRepo{}
	eval := &fakeEvaluator{promoStart: day(t, "2024-01-01"), promoEnd: day(t, "2024-01-31")}
	refresher, _ := newTestRefresher(t, cache, items, eval)

	if _, err := refresher.Refresh(ctx, pricelist, []id.ID{product}); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if len(cache.entries) != 1 {
		t.Fatalf("cache holds %d entries, want only the fresh base row", len(cache.entries))
	}
	if cache.entries[0].IsDated() {
		t.Error("stale windowed row survived the refresh")
	}
}

func TestRefreshLeavesOtherProductsUntouched(t *testing.T) {
	ctx := context.Background()
	pricelist := id.New()
	refreshed := id.New()
	untouched := id.New()

	foreign := CachedPrice{
		ID:          id.New(),
		ProductID:   untouched,
		PricelistID: pricelist,
		Price:       types.MustMoney("42"),
	}
	cache := &fakeCacheRepo{entries: []CachedPrice{foreign}}
	items := &fakeItemRepo{}
	eval := &fakeEvaluator{promoStart: day(t, "2024-01-01"), promoEnd: day(t, "2024-01-31")}
	refresher, _ := newTestRefresher(t, cache, items, eval)

	if _, err := refresher.Refresh(ctx, pricelist, []id.ID{refreshed}); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	var found bool
	for _, e := range cache.entries {
		if e.ID == foreign.ID && e.Price.Equal(foreign.Price) {
			found = true
		}
	}
	if !found {
		t.Error("refresh for one product set dropped rows of another product")
	}
}

func TestRefreshNoProducts(t *testing.T) {
	eval := &fakeEvaluator{}
	cache := &fakeCacheRepo{}
	refresher, txm := newTestRefresher(t, cache, &fakeItemRepo{}, eval)

	result, err := refresher.Refresh(context.Background(), id.New(), nil)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if result.BaseEntries != 0 || result.DatedEntries != 0 {
		t.Errorf("empty refresh produced entries: %+v", result)
	}
	if len(eval.askedDates) != 0 || txm.calls != 0 {
		t.Error("empty refresh must not evaluate rules or open transactions")
	}
}

func TestRefreshBaseDateWithoutDatedItems(t *testing.T) {
	ctx := context.Background()
	pricelist := id.New()
	product := id.New()

	eval := &fakeEvaluator{promoStart: day(t, "2024-01-01"), promoEnd: day(t, "2024-01-31")}
	cache := &fakeCacheRepo{}
	refresher, _ := newTestRefresher(t, cache, &fakeItemRepo{}, eval)

	if _, err := refresher.Refresh(ctx, pricelist, []id.ID{product}); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(eval.askedDates) != 1 || !eval.askedDates[0].Equal(mustParseDay(t, "2023-11-20")) {
		t.Errorf("base date = %v, want the current date", eval.askedDates)
	}
}
