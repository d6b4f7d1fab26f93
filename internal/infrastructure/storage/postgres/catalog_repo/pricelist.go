package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"saleflow/internal/core/id"
	"saleflow/internal/domain/pricing"
	"saleflow/internal/infrastructure/storage/postgres"
)

const (
	pricelistTable     = "cat_pricelists"
	pricelistItemTable = "cat_pricelist_items"
)

// PricelistRepo implements pricing.Repository.
type PricelistRepo struct {
	*BaseCatalogRepo[*pricing.Pricelist]
}

// NewPricelistRepo creates a new pricelist repository.
func NewPricelistRepo(txm *postgres.TxManager) *PricelistRepo {
	return &PricelistRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*pricing.Pricelist](
			txm,
			pricelistTable,
			postgres.ExtractDBColumns[pricing.Pricelist](),
			func() *pricing.Pricelist { return &pricing.Pricelist{} },
		),
	}
}

// ListActive retrieves pricelists participating in cache refresh.
func (r *PricelistRepo) ListActive(ctx context.Context) ([]*pricing.Pricelist, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"active": true, "deletion_mark": false}).
		OrderBy("code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*pricing.Pricelist
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list active: %w", err)
	}

	return items, nil
}

// PricelistItemRepo implements pricing.ItemRepository.
type PricelistItemRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewPricelistItemRepo creates a new pricelist item repository.
func NewPricelistItemRepo(txm *postgres.TxManager) *PricelistItemRepo {
	return &PricelistItemRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *PricelistItemRepo) ListByPricelist(ctx context.Context, pricelistID id.ID, productIDs []id.ID) ([]pricing.PricelistItem, error) {
	return r.list(ctx, pricelistID, productIDs, false)
}

func (r *PricelistItemRepo) ListDated(ctx context.Context, pricelistID id.ID, productIDs []id.ID) ([]pricing.PricelistItem, error) {
	return r.list(ctx, pricelistID, productIDs, true)
}

func (r *PricelistItemRepo) list(ctx context.Context, pricelistID id.ID, productIDs []id.ID, datedOnly bool) ([]pricing.PricelistItem, error) {
	q := r.builder.
		Select("id", "pricelist_id", "product_id", "fixed_price", "date_start", "date_end").
		From(pricelistItemTable).
		Where(squirrel.Eq{"pricelist_id": pricelistID}).
		OrderBy("created_at")

	if len(productIDs) > 0 {
		q = q.Where(squirrel.Eq{"product_id": productIDs})
	}

	if datedOnly {
		q = q.Where("(date_start IS NOT NULL OR date_end IS NOT NULL)")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []pricing.PricelistItem
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list pricelist items: %w", err)
	}

	return items, nil
}

// Ensure interface compliance.
var (
	_ pricing.Repository     = (*PricelistRepo)(nil)
	_ pricing.ItemRepository = (*PricelistItemRepo)(nil)
)
