package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"saleflow/internal/core/id"
	"saleflow/internal/domain"
	"saleflow/internal/domain/documents/saleorder"
	"saleflow/internal/infrastructure/storage/postgres"
)

const (
	saleOrdersTable     = "doc_sale_orders"
	saleOrderLinesTable = "doc_sale_order_lines"
)

// SaleOrderRepo implements saleorder.Repository.
type SaleOrderRepo struct {
	*BaseDocumentRepo[*saleorder.SaleOrder]
}

// NewSaleOrderRepo creates a new sale order repository.
func NewSaleOrderRepo(txm *postgres.TxManager) *SaleOrderRepo {
	return &SaleOrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*saleorder.SaleOrder](
			txm,
			saleOrdersTable,
			postgres.ExtractDBColumns[saleorder.SaleOrder](),
			func() *saleorder.SaleOrder { return &saleorder.SaleOrder{} },
		),
	}
}

func (r *SaleOrderRepo) GetLines(ctx context.Context, docID id.ID) ([]saleorder.SaleOrderLine, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "product_id",
			"quantity", "unit_price", "amount",
			"customer_lead_days", "expected_date",
		).
		From(saleOrderLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []saleorder.SaleOrderLine
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

func (r *SaleOrderRepo) SaveLines(ctx context.Context, docID id.ID, lines []saleorder.SaleOrderLine) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + saleOrderLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(saleOrderLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "product_id",
			"quantity", "unit_price", "amount",
			"customer_lead_days", "expected_date",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.ProductID,
			line.Quantity, line.UnitPrice, line.Amount,
			line.CustomerLeadDays, line.ExpectedDate,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

func (r *SaleOrderRepo) List(ctx context.Context, filter saleorder.ListFilter) (domain.ListResult[*saleorder.SaleOrder], error) {
	result := domain.ListResult[*saleorder.SaleOrder]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.PartnerID != nil {
		q = q.Where(squirrel.Eq{"partner_id": *filter.PartnerID})
	}

	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}

	if filter.State != nil {
		q = q.Where(squirrel.Eq{"state": *filter.State})
	}

	if filter.ProcessID != nil {
		q = q.Where(squirrel.Eq{"workflow_process_id": *filter.ProcessID})
	}

	if filter.Invoiced != nil {
		if *filter.Invoiced {
			q = q.Where("invoice_id IS NOT NULL")
		} else {
			q = q.Where("invoice_id IS NULL")
		}
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	return result, nil
}

// Ensure interface compliance.
var _ saleorder.Repository = (*SaleOrderRepo)(nil)
