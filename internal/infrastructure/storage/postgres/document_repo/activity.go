package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/id"
	"saleflow/internal/domain/documents/saleorder"
	"saleflow/internal/infrastructure/storage/postgres"
)

const activitiesTable = "doc_sale_order_activities"

var activityColumns = []string{
	"id", "order_id", "title", "note",
	"done", "done_at", "done_by", "created_at",
}

// ActivityRepo implements saleorder.ActivityRepository.
type ActivityRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewActivityRepo creates a new validation activity repository.
func NewActivityRepo(txm *postgres.TxManager) *ActivityRepo {
	return &ActivityRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ActivityRepo) Create(ctx context.Context, activity *saleorder.ValidationActivity) error {
	q := r.builder.
		Insert(activitiesTable).
		SetMap(postgres.StructToMap(activity))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}

	return nil
}

func (r *ActivityRepo) GetByID(ctx context.Context, activityID id.ID) (*saleorder.ValidationActivity, error) {
	q := r.builder.
		Select(activityColumns...).
		From(activitiesTable).
		Where(squirrel.Eq{"id": activityID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var activity saleorder.ValidationActivity
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &activity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("activity", activityID.String())
		}
		return nil, fmt.Errorf("get activity: %w", err)
	}

	return &activity, nil
}

func (r *ActivityRepo) Update(ctx context.Context, activity *saleorder.ValidationActivity) error {
	data := postgres.StructToMap(activity)
	delete(data, "id")
	delete(data, "order_id")
	delete(data, "created_at")

	q := r.builder.
		Update(activitiesTable).
		SetMap(data).
		Where(squirrel.Eq{"id": activity.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("activity", activity.ID.String())
	}

	return nil
}

func (r *ActivityRepo) ListOpen(ctx context.Context, orderID id.ID) ([]*saleorder.ValidationActivity, error) {
	return r.list(ctx, orderID, true)
}

func (r *ActivityRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]*saleorder.ValidationActivity, error) {
	return r.list(ctx, orderID, false)
}

func (r *ActivityRepo) list(ctx context.Context, orderID id.ID, openOnly bool) ([]*saleorder.ValidationActivity, error) {
	q := r.builder.
		Select(activityColumns...).
		From(activitiesTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("created_at")

	if openOnly {
		q = q.Where(squirrel.Eq{"done": false})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var activities []*saleorder.ValidationActivity
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &activities, sql, args...); err != nil {
		return nil, fmt.Errorf("select activities: %w", err)
	}

	return activities, nil
}

// Ensure interface compliance.
var _ saleorder.ActivityRepository = (*ActivityRepo)(nil)
