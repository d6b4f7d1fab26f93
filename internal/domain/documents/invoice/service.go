package invoice

import (
	"context"
	"fmt"
	"time"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/id"
	"saleflow/internal/core/numerator"
	"saleflow/internal/core/tx"
	"saleflow/internal/domain"
	"saleflow/internal/domain/documents/saleorder"
	"saleflow/pkg/logger"
)

// Lifecycle event types published through the outbox.
const (
	EventCreated   = "invoice.created"
	EventValidated = "invoice.validated"
	EventCancelled = "invoice.cancelled"
)

// Service provides business operations for invoices.
type Service struct {
	repo      Repository
	policy    PostingPolicy
	numerator numerator.Generator
	txManager tx.Manager
	events    domain.EventPublisher
}

// NewService creates a new invoice service.
func NewService(repo Repository, policy PostingPolicy, num numerator.Generator, txManager tx.Manager) *Service {
	if policy == nil {
		policy = OpenPolicy{}
	}
	return &Service{
		repo:      repo,
		policy:    policy,
		numerator: num,
		txManager: txManager,
	}
}

// SetEventPublisher enables transactional lifecycle event capture.
func (s *Service) SetEventPublisher(p domain.EventPublisher) {
	s.events = p
}

type invoiceEventPayload struct {
	Number string `json:"number"`
	State  string `json:"state"`
}

// publishEvent records a lifecycle event inside the current transaction.
func (s *Service) publishEvent(ctx context.Context, doc *Invoice, eventType string) error {
	if s.events == nil {
		return nil
	}
	err := s.events.Publish(ctx, domain.Event{
		AggregateType: "invoice",
		AggregateID:   doc.ID,
		EventType:     eventType,
		Payload:       invoiceEventPayload{Number: doc.Number, State: string(doc.State)},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// CreateFromOrder bills a confirmed order. It refuses blocked orders
// and orders that already carry an invoice.
func (s *Service) CreateFromOrder(ctx context.Context, order *saleorder.SaleOrder, invoiceDate time.Time) (*Invoice, error) {
	if order.State != saleorder.StateConfirmed {
		return nil, apperror.NewBusinessRule("ORDER_NOT_CONFIRMED",
			"only confirmed orders can be invoiced").
			WithDetail("order", order.Number).
			WithDetail("state", string(order.State))
	}

	if order.IsInvoiceBlocked() {
		return nil, apperror.NewInvoiceBlocked(order.Number, *order.InvoiceBlockReason)
	}

	if order.IsInvoiced() {
		return nil, apperror.NewBusinessRule("ORDER_ALREADY_INVOICED",
			"order already has an invoice").
			WithDetail("order", order.Number)
	}

	doc := NewFromOrder(order, invoiceDate)
	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	cfg := numerator.DefaultConfig("INV")
	number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: numerator.StrategyStrict}, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}
	doc.Number = number

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return err
		}
		return s.publishEvent(ctx, doc, EventCreated)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice created", "id", doc.ID, "number", doc.Number, "order", order.Number)
	return doc, nil
}

// GetByID retrieves an invoice with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Invoice, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// GetByOrder retrieves the invoice of an order.
func (s *Service) GetByOrder(ctx context.Context, orderID id.ID) (*Invoice, error) {
	return s.repo.GetByOrder(ctx, orderID)
}

// Validate posts a draft invoice, honoring the period close policy.
func (s *Service) Validate(ctx context.Context, docID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}

		if err := s.policy.CanValidate(ctx, doc.Date); err != nil {
			return err
		}

		if err := doc.MarkValidated(); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, doc); err != nil {
			return err
		}
		return s.publishEvent(ctx, doc, EventValidated)
	})
}

// Cancel cancels a draft invoice.
func (s *Service) Cancel(ctx context.Context, docID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := doc.MarkCancelled(); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, doc); err != nil {
			return err
		}
		return s.publishEvent(ctx, doc, EventCancelled)
	})
}

// List retrieves invoices with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	return s.repo.List(ctx, filter)
}
