package pricing

import (
	"testing"
	"time"

	"saleflow/internal/core/id"
	"saleflow/internal/core/types"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return parsed.UTC()
}

func dayPtr(t *testing.T, value string) *time.Time {
	t.Helper()
	d := day(t, value)
	return &d
}

func TestResolvePrice(t *testing.T) {
	product := id.New()
	pricelist := id.New()

	entries := []CachedPrice{
		{
			ID:          id.New(),
			ProductID:   product,
			PricelistID: pricelist,
			Price:       types.MustMoney("100"),
		},
		{
			ID:          id.New(),
			ProductID:   product,
			PricelistID: pricelist,
			Price:       types.MustMoney("80"),
			DateStart:   dayPtr(t, "2024-01-01"),
			DateEnd:     dayPtr(t, "2024-01-31"),
		},
	}

	tests := []struct {
		name      string
		atDate    string
		wantPrice string
		wantOK    bool
	}{
		{name: "inside window prefers dated entry", atDate: "2024-01-15", wantPrice: "80", wantOK: true},
		{name: "window start is inclusive", atDate: "2024-01-01", wantPrice: "80", wantOK: true},
		{name: "window end is inclusive", atDate: "2024-01-31", wantPrice: "80", wantOK: true},
		{name: "after window falls back to base", atDate: "2024-02-01", wantPrice: "100", wantOK: true},
		{name: "before window falls back to base", atDate: "2023-12-15", wantPrice: "100", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := ResolvePrice(entries, product, day(t, tt.atDate))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !entry.Price.Equal(types.MustMoney(tt.wantPrice)) {
				t.Errorf("price = %s, want %s", entry.Price, tt.wantPrice)
			}
		})
	}
}

func TestResolvePriceNoMatch(t *testing.T) {
	product := id.New()
	entries := []CachedPrice{{
		ID:        id.New(),
		ProductID: product,
		Price:     types.MustMoney("50"),
		DateStart: dayPtr(t, "2024-03-01"),
		DateEnd:   dayPtr(t, "2024-03-31"),
	}}

	if _, ok := ResolvePrice(entries, product, day(t, "2024-01-15")); ok {
		t.Error("expected no match outside the only window")
	}
	if _, ok := ResolvePrice(entries, id.New(), day(t, "2024-03-15")); ok {
		t.Error("expected no match for unknown product")
	}
	if _, ok := ResolvePrice(nil, product, day(t, "2024-03-15")); ok {
		t.Error("expected no match on empty set")
	}
}

func TestResolvePriceFirstDatedWins(t *testing.T) {
	product := id.New()
	entries := []CachedPrice{
		{ID: id.New(), ProductID: product, Price: types.MustMoney("70"), DateStart: dayPtr(t, "2024-01-01")},
		{ID: id.New(), ProductID: product, Price: types.MustMoney("60"), DateStart: dayPtr(t, "2024-01-10")},
	}

	entry, ok := ResolvePrice(entries, product, day(t, "2024-01-20"))
	if !ok {
		t.Fatal("expected a match")
	}
	if !entry.Price.Equal(types.MustMoney("70")) {
		t.Errorf("price = %s, want the first dated entry 70", entry.Price)
	}
}

func TestResolvePriceHalfOpenWindows(t *testing.T) {
	product := id.New()
	entries := []CachedPrice{
		{ID: id.New(), ProductID: product, Price: types.MustMoney("90"), DateEnd: dayPtr(t, "2024-06-30")},
		{ID: id.New(), ProductID: product, Price: types.MustMoney("100")},
	}

	entry, ok := ResolvePrice(entries, product, day(t, "2024-06-01"))
	if !ok || !entry.Price.Equal(types.MustMoney("90")) {
		t.Errorf("open-start window should match before its end, got %v %v", entry.Price, ok)
	}

	entry, ok = ResolvePrice(entries, product, day(t, "2024-07-01"))
	if !ok || !entry.Price.Equal(types.MustMoney("100")) {
		t.Errorf("expected base price after window end, got %v %v", entry.Price, ok)
	}
}

func TestResolvePrices(t *testing.T) {
	pricelist := id.New()
	productA := id.New()
	productB := id.New()
	productC := id.New()

	entries := []CachedPrice{
		{ID: id.New(), ProductID: productA, PricelistID: pricelist, Price: types.MustMoney("100")},
		{ID: id.New(), ProductID: productA, PricelistID: pricelist, Price: types.MustMoney("80"),
			DateStart: dayPtr(t, "2024-01-01"), DateEnd: dayPtr(t, "2024-01-31")},
		{ID: id.New(), ProductID: productB, PricelistID: pricelist, Price: types.MustMoney("15")},
		{ID: id.New(), ProductID: productC, PricelistID: pricelist, Price: types.MustMoney("9"),
			DateStart: dayPtr(t, "2024-02-01"), DateEnd: dayPtr(t, "2024-02-29")},
	}

	resolved := ResolvePrices(entries, day(t, "2024-01-15"))
	if len(resolved) != 2 {
		t.Fatalf("resolved %d products, want 2", len(resolved))
	}
	if !resolved[productA].Price.Equal(types.MustMoney("80")) {
		t.Errorf("product A = %s, want dated 80", resolved[productA].Price)
	}
	if !resolved[productB].Price.Equal(types.MustMoney("15")) {
		t.Errorf("product B = %s, want 15", resolved[productB].Price)
	}
	if _, ok := resolved[productC]; ok {
		t.Error("product C window does not cover january")
	}
}

func TestCachedPriceMatchesDate(t *testing.T) {
	unbounded := CachedPrice{}
	if !unbounded.MatchesDate(day(t, "1999-01-01")) || !unbounded.MatchesDate(day(t, "2100-01-01")) {
		t.Error("unbounded entry must match every date")
	}
	if unbounded.IsDated() {
		t.Error("unbounded entry must not report as dated")
	}

	dated := CachedPrice{DateStart: dayPtr(t, "2024-01-01")}
	if !dated.IsDated() {
		t.Error("entry with a start bound is dated")
	}
}
