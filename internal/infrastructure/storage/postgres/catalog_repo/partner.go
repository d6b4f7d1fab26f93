package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"saleflow/internal/core/apperror"
	"saleflow/internal/domain/catalogs/partner"
	"saleflow/internal/infrastructure/storage/postgres"
)

const partnerTable = "cat_partners"

// PartnerRepo implements partner.Repository.
type PartnerRepo struct {
	*BaseCatalogRepo[*partner.Partner]
}

// NewPartnerRepo creates a new partner repository.
func NewPartnerRepo(txm *postgres.TxManager) *PartnerRepo {
	return &PartnerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*partner.Partner](
			txm,
			partnerTable,
			postgres.ExtractDBColumns[partner.Partner](),
			func() *partner.Partner { return &partner.Partner{} },
		),
	}
}

// FindByEmail retrieves a partner by primary email.
func (r *PartnerRepo) FindByEmail(ctx context.Context, email string) (*partner.Partner, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"email": email}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	p, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("partner", email)
		}
		return nil, err
	}
	return p, nil
}

// Ensure interface compliance.
var _ partner.Repository = (*PartnerRepo)(nil)
