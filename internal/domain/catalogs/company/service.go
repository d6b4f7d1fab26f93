package company

import (
	"context"

	"saleflow/internal/core/numerator"
	"saleflow/internal/core/tx"
	"saleflow/internal/domain"
)

// Service provides business logic for Company catalog.
type Service struct {
	*domain.CatalogService[*Company]
	repo Repository
}

// NewService creates a new Company service.
func NewService(repo Repository, txManager tx.Manager, num numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Company]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  num,
		EntityName: "company",
	})

	return &Service{
		CatalogService: base,
		repo:           repo,
	}
}

// GetDefault retrieves the default company.
func (s *Service) GetDefault(ctx context.Context) (*Company, error) {
	return s.repo.GetDefault(ctx)
}
