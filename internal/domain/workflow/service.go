package workflow

import (
	"context"
	"fmt"
	"time"

	"saleflow/internal/core/numerator"
	"saleflow/internal/core/tx"
	"saleflow/internal/domain"
)

// Service provides CRUD for workflow processes.
// Uses composition with domain.CatalogService for common operations.
type Service struct {
	*domain.CatalogService[*Process]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new workflow process service.
func NewService(repo Repository, txManager tx.Manager, num numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Process]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  num,
		EntityName: "workflow process",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, p *Process) error {
	if p.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("WF"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	}
	return nil
}

// ListEnabled returns the processes the runner should execute.
func (s *Service) ListEnabled(ctx context.Context) ([]*Process, error) {
	return s.repo.ListEnabled(ctx)
}
