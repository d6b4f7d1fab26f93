package pricing

import (
	"context"
	"testing"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/id"
	"saleflow/internal/core/types"
	"saleflow/internal/domain/catalogs/product"
)

type fakeProductSource struct {
	products map[id.ID]*product.Product
}

func (f *fakeProductSource) GetByID(_ context.Context, entityID id.ID) (*product.Product, error) {
	if p, ok := f.products[entityID]; ok {
		return p, nil
	}
	return nil, apperror.NewNotFound("product", entityID)
}

func productWithListPrice(t *testing.T, price string) *product.Product {
	t.Helper()
	p := product.NewProduct("P-001", "Widget", product.TypeGoods)
	p.ListPrice = types.MustMoney(price)
	return p
}

func TestItemEvaluatorPrefersDatedItem(t *testing.T) {
	ctx := context.Background()
	pricelist := id.New()
	prod := id.New()

	items := &fakeItemRepo{items: []PricelistItem{
		{
			ID:          id.New(),
			PricelistID: pricelist,
			ProductID:   prod,
			FixedPrice:  types.MustMoney("100"),
		},
		{
			ID:          id.New(),
			PricelistID: pricelist,
			ProductID:   prod,
			FixedPrice:  types.MustMoney("80"),
			DateStart:   dayPtr(t, "2024-01-01"),
			DateEnd:     dayPtr(t, "2024-01-31"),
		},
	}}
	eval := NewItemEvaluator(items, &fakeProductSource{})

	prices, err := eval.ComputePrices(ctx, pricelist, []id.ID{prod}, day(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("ComputePrices: %v", err)
	}
	if !prices[prod].Equal(types.MustMoney("80")) {
		t.Errorf("january price = %v, want dated 80", prices[prod])
	}

	prices, err = eval.ComputePrices(ctx, pricelist, []id.ID{prod}, day(t, "2024-02-15"))
	if err != nil {
		t.Fatalf("ComputePrices: %v", err)
	}
	if !prices[prod].Equal(types.MustMoney("100")) {
		t.Errorf("february price = %v, want undated 100", prices[prod])
	}
}

func TestItemEvaluatorFirstDatedMatchWins(t *testing.T) {
	ctx := context.Background()
	pricelist := id.New()
	prod := id.New()

	items := &fakeItemRepo{items: []PricelistItem{
		{
			ID:          id.New(),
			PricelistID: pricelist,
			ProductID:   prod,
			FixedPrice:  types.MustMoney("70"),
			DateStart:   dayPtr(t, "2024-01-01"),
			DateEnd:     dayPtr(t, "2024-03-31"),
		},
		{
			ID:          id.New(),
			PricelistID: pricelist,
			ProductID:   prod,
			FixedPrice:  types.MustMoney("60"),
			DateStart:   dayPtr(t, "2024-01-10"),
			DateEnd:     dayPtr(t, "2024-01-20"),
		},
	}}
	eval := NewItemEvaluator(items, &fakeProductSource{})

	prices, err := eval.ComputePrices(ctx, pricelist, []id.ID{prod}, day(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("ComputePrices: %v", err)
	}
	if !prices[prod].Equal(types.MustMoney("70")) {
		t.Errorf("overlap price = %v, want first matching item 70", prices[prod])
	}
}

func TestItemEvaluatorFallsBackToListPrice(t *testing.T) {
	ctx := context.Background()
	pricelist := id.New()
	prod := id.New()

	items := &fakeItemRepo{}
	products := &fakeProductSource{products: map[id.ID]*product.Product{
		prod: productWithListPrice(t, "42.50"),
	}}
	eval := NewItemEvaluator(items, products)

	prices, err := eval.ComputePrices(ctx, pricelist, []id.ID{prod}, day(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("ComputePrices: %v", err)
	}
	if !prices[prod].Equal(types.MustMoney("42.50")) {
		t.Errorf("fallback price = %v, want list price 42.50", prices[prod])
	}
}

func TestItemEvaluatorOmitsUnknownProducts(t *testing.T) {
	ctx := context.Background()
	pricelist := id.New()
	unknown := id.New()

	eval := NewItemEvaluator(&fakeItemRepo{}, &fakeProductSource{})

	prices, err := eval.ComputePrices(ctx, pricelist, []id.ID{unknown}, day(t, "2024-01-15"))
	if err != nil {
		t.Fatalf("ComputePrices: %v", err)
	}
	if _, ok := prices[unknown]; ok {
		t.Errorf("unknown product priced at %v, want absent", prices[unknown])
	}
}
