package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"saleflow/internal/domain/workflow"
	"saleflow/internal/infrastructure/storage/postgres"
)

const processTable = "cat_workflow_processes"

// ProcessRepo implements workflow.Repository.
type ProcessRepo struct {
	*BaseCatalogRepo[*workflow.Process]
}

// NewProcessRepo creates a new workflow process repository.
func NewProcessRepo(txm *postgres.TxManager) *ProcessRepo {
	return &ProcessRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*workflow.Process](
			txm,
			processTable,
			postgres.ExtractDBColumns[workflow.Process](),
			func() *workflow.Process { return &workflow.Process{} },
		),
	}
}

// ListEnabled returns the processes that should run.
func (r *ProcessRepo) ListEnabled(ctx context.Context) ([]*workflow.Process, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"enabled": true, "deletion_mark": false}).
		OrderBy("code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*workflow.Process
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list enabled: %w", err)
	}

	return items, nil
}

// Ensure interface compliance.
var _ workflow.Repository = (*ProcessRepo)(nil)
