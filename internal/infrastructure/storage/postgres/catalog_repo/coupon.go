package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"saleflow/internal/core/id"
	"saleflow/internal/domain/coupon"
	"saleflow/internal/infrastructure/storage/postgres"
)

const (
	programTable     = "cat_coupon_programs"
	couponTable      = "cat_coupons"
	consumptionTable = "cat_coupon_consumptions"
)

// ProgramRepo implements coupon.ProgramRepository.
type ProgramRepo struct {
	*BaseCatalogRepo[*coupon.Program]
}

// NewProgramRepo creates a new coupon program repository.
func NewProgramRepo(txm *postgres.TxManager) *ProgramRepo {
	return &ProgramRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*coupon.Program](
			txm,
			programTable,
			postgres.ExtractDBColumns[coupon.Program](),
			func() *coupon.Program { return &coupon.Program{} },
		),
	}
}

// CouponRepo implements coupon.CouponRepository.
type CouponRepo struct {
	*BaseCatalogRepo[*coupon.Coupon]
	inserter *postgres.BatchInserter
}

// NewCouponRepo creates a new coupon repository.
func NewCouponRepo(txm *postgres.TxManager) *CouponRepo {
	return &CouponRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*coupon.Coupon](
			txm,
			couponTable,
			postgres.ExtractDBColumns[coupon.Coupon](),
			func() *coupon.Coupon { return &coupon.Coupon{} },
		),
		inserter: postgres.NewBatchInserter(txm),
	}
}

// CreateBatch inserts coupons through the COPY protocol. Generation can
// produce thousands of rows, so one round trip matters. MUST be called
// inside a transaction context.
func (r *CouponRepo) CreateBatch(ctx context.Context, coupons []*coupon.Coupon) error {
	if len(coupons) == 0 {
		return nil
	}

	cols := postgres.ExtractDBColumns[coupon.Coupon]()
	rows := make([][]any, 0, len(coupons))
	for _, c := range coupons {
		data := postgres.StructToMap(c)
		row := make([]any, len(cols))
		for i, col := range cols {
			row[i] = data[col]
		}
		rows = append(rows, row)
	}

	if _, err := r.inserter.CopyFromSlice(ctx, couponTable, cols, rows); err != nil {
		return fmt.Errorf("bulk insert coupons: %w", err)
	}

	return nil
}

// GetConsumptions retrieves consumption history of a coupon.
func (r *CouponRepo) GetConsumptions(ctx context.Context, couponID id.ID) ([]coupon.Consumption, error) {
	q := r.Builder().
		Select("id", "coupon_id", "order_id", "amount", "consumed_at").
		From(consumptionTable).
		Where(squirrel.Eq{"coupon_id": couponID}).
		OrderBy("consumed_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var consumptions []coupon.Consumption
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &consumptions, sql, args...); err != nil {
		return nil, fmt.Errorf("get consumptions: %w", err)
	}

	return consumptions, nil
}

// SaveConsumptions replaces the consumption history of a coupon.
func (r *CouponRepo) SaveConsumptions(ctx context.Context, couponID id.ID, consumptions []coupon.Consumption) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + consumptionTable + " WHERE coupon_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, couponID); err != nil {
		return fmt.Errorf("delete existing consumptions: %w", err)
	}

	if len(consumptions) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(consumptionTable).
		Columns("id", "coupon_id", "order_id", "amount", "consumed_at")

	for _, c := range consumptions {
		q = q.Values(c.ID, couponID, c.OrderID, c.Amount, c.ConsumedAt)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert consumptions: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert consumptions: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var (
	_ coupon.ProgramRepository = (*ProgramRepo)(nil)
	_ coupon.CouponRepository  = (*CouponRepo)(nil)
)
