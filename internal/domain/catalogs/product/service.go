package product

import (
	"context"
	"fmt"
	"time"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/id"
	"saleflow/internal/core/numerator"
	"saleflow/internal/core/tx"
	"saleflow/internal/domain"
)

// Service provides business logic for Product catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Product]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Product service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	num numerator.Generator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  num,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks.
func (s *Service) prepareForCreate(ctx context.Context, item *Product) error {
	if item.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("PR"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		item.Code = code
	}

	return s.checkUnique(ctx, item)
}

// prepareForUpdate handles uniqueness checks.
func (s *Service) prepareForUpdate(ctx context.Context, item *Product) error {
	return s.checkUnique(ctx, item)
}

func (s *Service) checkUnique(ctx context.Context, item *Product) error {
	if item.SKU != nil && *item.SKU != "" {
		if existing, err := s.repo.FindBySKU(ctx, *item.SKU); err == nil && existing.ID != item.ID {
			return apperror.NewConflict("product with this SKU already exists").
				WithDetail("sku", *item.SKU)
		}
	}
	if item.Barcode != nil && *item.Barcode != "" {
		if existing, err := s.repo.FindByBarcode(ctx, *item.Barcode); err == nil && existing.ID != item.ID {
			return apperror.NewConflict("product with this barcode already exists").
				WithDetail("barcode", *item.Barcode)
		}
	}
	return nil
}

// --- Entity-specific methods ---

// FindBySKU retrieves product by SKU.
func (s *Service) FindBySKU(ctx context.Context, sku string) (*Product, error) {
	return s.repo.FindBySKU(ctx, sku)
}

// FindByBarcode retrieves product by barcode.
func (s *Service) FindByBarcode(ctx context.Context, barcode string) (*Product, error) {
	return s.repo.FindByBarcode(ctx, barcode)
}

// ListSellable retrieves active sellable products by ids.
func (s *Service) ListSellable(ctx context.Context, ids []id.ID) ([]*Product, error) {
	return s.repo.ListSellable(ctx, ids)
}
