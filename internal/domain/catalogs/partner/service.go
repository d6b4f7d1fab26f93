package partner

import (
	"context"
	"fmt"
	"time"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/numerator"
	"saleflow/internal/core/tx"
	"saleflow/internal/domain"
)

// Service provides business logic for Partner catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Partner]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Partner service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	num numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Partner]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  num,
		EntityName: "partner",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.checkEmailUnique)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks.
func (s *Service) prepareForCreate(ctx context.Context, p *Partner) error {
	if p.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("PT"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	}

	return s.checkEmailUnique(ctx, p)
}

// checkEmailUnique rejects a second partner with the same email.
func (s *Service) checkEmailUnique(ctx context.Context, p *Partner) error {
	if p.Email == nil || *p.Email == "" {
		return nil
	}
	existing, err := s.repo.FindByEmail(ctx, *p.Email)
	if err != nil {
		// Not found is the good case here.
		return nil
	}
	if existing.ID != p.ID {
		return apperror.NewConflict("partner with this email already exists").
			WithDetail("email", *p.Email)
	}
	return nil
}

// FindByEmail retrieves a partner by primary email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*Partner, error) {
	return s.repo.FindByEmail(ctx, email)
}
