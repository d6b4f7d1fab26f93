// Package register_repo provides PostgreSQL implementations for register repositories.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"saleflow/internal/core/id"
	"saleflow/internal/domain/pricing"
	"saleflow/internal/infrastructure/storage/postgres"
)

const priceCacheTable = "reg_price_cache"

// The cache table carries a unique expression index over
// (pricelist_id, product_id, COALESCE(date_start, '-infinity'),
// COALESCE(date_end, 'infinity')) so open-ended rows collapse to a
// single slot and refreshes can upsert in place.
const priceCacheConflict = "ON CONFLICT (pricelist_id, product_id, " +
	"COALESCE(date_start, '-infinity'::timestamptz), " +
	"COALESCE(date_end, 'infinity'::timestamptz)) " +
	"DO UPDATE SET price = EXCLUDED.price " +
	"RETURNING id"

// PriceCacheRepo implements pricing.CacheRepository.
type PriceCacheRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewPriceCacheRepo creates a new price cache repository.
func NewPriceCacheRepo(txm *postgres.TxManager) *PriceCacheRepo {
	return &PriceCacheRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *PriceCacheRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.
		Select("id", "product_id", "pricelist_id", "price", "date_start", "date_end").
		From(priceCacheTable)
}

// SearchMatching retrieves entries valid at the given date.
func (r *PriceCacheRepo) SearchMatching(ctx context.Context, pricelistID id.ID, productIDs []id.ID, atDate time.Time) ([]pricing.CachedPrice, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"pricelist_id": pricelistID}).
		Where(squirrel.Eq{"product_id": productIDs}).
		Where(squirrel.Or{
			squirrel.Eq{"date_start": nil},
			squirrel.LtOrEq{"date_start": atDate},
		}).
		Where(squirrel.Or{
			squirrel.Eq{"date_end": nil},
			squirrel.GtOrEq{"date_end": atDate},
		}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []pricing.CachedPrice
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("search matching: %w", err)
	}

	return entries, nil
}

// ListByProducts retrieves all entries for the products regardless of validity.
func (r *PriceCacheRepo) ListByProducts(ctx context.Context, pricelistID id.ID, productIDs []id.ID) ([]pricing.CachedPrice, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"pricelist_id": pricelistID}).
		Where(squirrel.Eq{"product_id": productIDs}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []pricing.CachedPrice
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("list by products: %w", err)
	}

	return entries, nil
}

// Replace swaps the cached rows for (pricelist, productIDs) with the
// given set. Rows whose validity key matches an incoming entry are
// updated in place, stale rows for those products are removed.
func (r *PriceCacheRepo) Replace(ctx context.Context, pricelistID id.ID, productIDs []id.ID, entries []pricing.CachedPrice) error {
	if r.txm.GetTx(ctx) == nil {
		return fmt.Errorf("replace requires transaction context")
	}
	if len(productIDs) == 0 {
		return nil
	}

	querier := r.txm.GetQuerier(ctx)

	if len(entries) == 0 {
		deleteQ := r.builder.
			Delete(priceCacheTable).
			Where(squirrel.Eq{"pricelist_id": pricelistID}).
			Where(squirrel.Eq{"product_id": productIDs})

		sql, args, err := deleteQ.ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("clear cache rows: %w", err)
		}
		return nil
	}

	q := r.builder.
		Insert(priceCacheTable).
		Columns("id", "product_id", "pricelist_id", "price", "date_start", "date_end").
		Suffix(priceCacheConflict)

	for _, e := range entries {
		q = q.Values(e.ID, e.ProductID, e.PricelistID, e.Price, e.DateStart, e.DateEnd)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	rows, err := querier.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("upsert cache rows: %w", err)
	}

	kept := make([]id.ID, 0, len(entries))
	for rows.Next() {
		var rowID id.ID
		if err := rows.Scan(&rowID); err != nil {
			rows.Close()
			return fmt.Errorf("scan upserted id: %w", err)
		}
		kept = append(kept, rowID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("upsert cache rows: %w", err)
	}

	deleteQ := r.builder.
		Delete(priceCacheTable).
		Where(squirrel.Eq{"pricelist_id": pricelistID}).
		Where(squirrel.Eq{"product_id": productIDs}).
		Where(squirrel.NotEq{"id": kept})

	deleteSQL, deleteArgs, err := deleteQ.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := querier.Exec(ctx, deleteSQL, deleteArgs...); err != nil {
		return fmt.Errorf("remove stale cache rows: %w", err)
	}

	return nil
}

// FindDuplicates returns (product, pricelist) pairs holding more than
// one unbounded cached price.
func (r *PriceCacheRepo) FindDuplicates(ctx context.Context, pricelistID id.ID) ([]pricing.DuplicateGroup, error) {
	q := r.builder.
		Select("product_id", "pricelist_id", "COUNT(*) AS cnt").
		From(priceCacheTable).
		Where(squirrel.Eq{"pricelist_id": pricelistID}).
		Where(squirrel.Eq{"date_start": nil}).
		Where(squirrel.Eq{"date_end": nil}).
		GroupBy("product_id", "pricelist_id").
		Having("COUNT(*) > 1")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var groups []pricing.DuplicateGroup
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &groups, sql, args...); err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	return groups, nil
}

// Ensure interface compliance.
var _ pricing.CacheRepository = (*PriceCacheRepo)(nil)
