package pricing

import (
	"time"

	"saleflow/internal/core/id"
)

// ResolvePrice picks the single authoritative cached price for a product
// at a date. Dated entries win over the unbounded base price; among
// dated matches the first in the given order wins. The second return is
// false when no entry matches.
func ResolvePrice(entries []CachedPrice, productID id.ID, atDate time.Time) (CachedPrice, bool) {
	var (
		base      CachedPrice
		haveBase  bool
		dated     CachedPrice
		haveDated bool
	)

	for _, e := range entries {
		if e.ProductID != productID || !e.MatchesDate(atDate) {
			continue
		}
		if e.IsDated() {
			if !haveDated {
				dated = e
				haveDated = true
			}
			continue
		}
		if !haveBase {
			base = e
			haveBase = true
		}
	}

	if haveDated {
		return dated, true
	}
	if haveBase {
		return base, true
	}
	return CachedPrice{}, false
}

// ResolvePrices resolves one price per product across a mixed entry set,
// applying the same dated-over-unbounded preference per product.
func ResolvePrices(entries []CachedPrice, atDate time.Time) map[id.ID]CachedPrice {
	resolved := make(map[id.ID]CachedPrice)

	for _, e := range entries {
		if !e.MatchesDate(atDate) {
			continue
		}
		if prev, ok := resolved[e.ProductID]; ok {
			// A dated pick is final; an unbounded pick yields only to
			// the first dated match.
			if prev.IsDated() || !e.IsDated() {
				continue
			}
		}
		resolved[e.ProductID] = e
	}
	return resolved
}
