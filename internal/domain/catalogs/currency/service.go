package currency

import (
	"context"

	"github.com/shopspring/decimal"

	"saleflow/internal/core/numerator"
	"saleflow/internal/core/tx"
	"saleflow/internal/domain"
)

// Service provides business logic for Currency catalog.
type Service struct {
	*domain.CatalogService[*Currency]
	repo Repository
}

// NewService creates a new Currency service.
func NewService(repo Repository, txManager tx.Manager, num numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Currency]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  num,
		EntityName: "currency",
	})

	return &Service{
		CatalogService: base,
		repo:           repo,
	}
}

// GetBase retrieves the base (accounting) currency.
func (s *Service) GetBase(ctx context.Context) (*Currency, error) {
	return s.repo.GetBase(ctx)
}

// FindByISOCode retrieves currency by ISO 4217 code.
func (s *Service) FindByISOCode(ctx context.Context, isoCode string) (*Currency, error) {
	return s.repo.FindByISOCode(ctx, isoCode)
}

// Convert converts an amount between two currencies by ISO code.
func (s *Service) Convert(ctx context.Context, amount decimal.Decimal, fromISO, toISO string) (decimal.Decimal, error) {
	if fromISO == toISO {
		return amount, nil
	}
	from, err := s.repo.FindByISOCode(ctx, fromISO)
	if err != nil {
		return decimal.Zero, err
	}
	to, err := s.repo.FindByISOCode(ctx, toISO)
	if err != nil {
		return decimal.Zero, err
	}
	return from.Convert(amount, to), nil
}
