package saleorder

import (
	"context"
	"fmt"
	"time"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/id"
	"saleflow/internal/core/numerator"
	"saleflow/internal/core/tx"
	"saleflow/internal/core/types"
	"saleflow/internal/domain"
	"saleflow/internal/domain/catalogs/company"
	"saleflow/internal/domain/catalogs/partner"
	"saleflow/internal/domain/catalogs/product"
	"saleflow/internal/domain/catalogs/warehouse"
	"saleflow/internal/domain/schedule"
	"saleflow/pkg/logger"
)

// PriceSource resolves unit prices from the pricelist cache.
type PriceSource interface {
	GetPrices(ctx context.Context, pricelistID id.ID, productIDs []id.ID, atDate time.Time) (map[id.ID]types.Money, error)
}

// WarehouseSource looks up warehouses.
type WarehouseSource interface {
	GetByID(ctx context.Context, entityID id.ID) (*warehouse.Warehouse, error)
}

// PartnerSource looks up partners.
type PartnerSource interface {
	GetByID(ctx context.Context, entityID id.ID) (*partner.Partner, error)
}

// CompanySource looks up companies.
type CompanySource interface {
	GetByID(ctx context.Context, entityID id.ID) (*company.Company, error)
}

// ProductSource looks up products.
type ProductSource interface {
	GetByID(ctx context.Context, entityID id.ID) (*product.Product, error)
}

// Lifecycle event types published through the outbox.
const (
	EventConfirmed = "sale_order.confirmed"
	EventDone      = "sale_order.done"
	EventCancelled = "sale_order.cancelled"
	EventInvoiced  = "sale_order.invoiced"
)

// Service provides business operations for sale orders.
type Service struct {
	repo       Repository
	activities ActivityRepository
	prices     PriceSource
	warehouses WarehouseSource
	partners   PartnerSource
	companies  CompanySource
	products   ProductSource
	numerator  numerator.Generator
	txManager  tx.Manager
	events     domain.EventPublisher
}

// NewService creates a new sale order service.
func NewService(
	repo Repository,
	activities ActivityRepository,
	prices PriceSource,
	warehouses WarehouseSource,
	partners PartnerSource,
	companies CompanySource,
	products ProductSource,
	num numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:       repo,
		activities: activities,
		prices:     prices,
		warehouses: warehouses,
		partners:   partners,
		companies:  companies,
		products:   products,
		numerator:  num,
		txManager:  txManager,
	}
}

// SetEventPublisher enables transactional lifecycle event capture.
// Without a publisher, transitions happen silently.
func (s *Service) SetEventPublisher(p domain.EventPublisher) {
	s.events = p
}

type orderEventPayload struct {
	Number string `json:"number"`
	State  string `json:"state"`
}

// publishEvent records a lifecycle event inside the current transaction.
func (s *Service) publishEvent(ctx context.Context, doc *SaleOrder, eventType string) error {
	if s.events == nil || eventType == "" {
		return nil
	}
	err := s.events.Publish(ctx, domain.Event{
		AggregateType: "sale_order",
		AggregateID:   doc.ID,
		EventType:     eventType,
		Payload:       orderEventPayload{Number: doc.Number, State: string(doc.State)},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

// Create creates a new draft order.
func (s *Service) Create(ctx context.Context, doc *SaleOrder) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if doc.Number == "" {
		cfg := numerator.DefaultConfig("SO")
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: numerator.StrategyStrict}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sale order created", "id", doc.ID, "number", doc.Number)
	return nil
}

// GetByID retrieves an order with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*SaleOrder, error) {
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

// Update updates a draft order.
func (s *Service) Update(ctx context.Context, doc *SaleOrder) error {
	if err := doc.CanModify(); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
}

// Delete soft-deletes a draft order.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if err := doc.CanModify(); err != nil {
		return err
	}

	return s.repo.Delete(ctx, docID)
}

// Confirm transitions a draft order to confirmed.
// It refuses while validation activities remain open, prices the lines
// from the pricelist cache at the order date and computes the expected
// and procurement dates from the warehouse and shipping partner
// configuration.
func (s *Service) Confirm(ctx context.Context, docID id.ID) (*SaleOrder, error) {
	var confirmed *SaleOrder

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		lines, err := s.repo.GetLines(ctx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		doc.Lines = lines

		open, err := s.activities.ListOpen(ctx, docID)
		if err != nil {
			return fmt.Errorf("list activities: %w", err)
		}
		if len(open) > 0 {
			return apperror.NewValidationPending(doc.Number, len(open))
		}

		if err := doc.MarkConfirmed(); err != nil {
			return err
		}

		if err := s.priceLines(ctx, doc); err != nil {
			return err
		}

		if err := s.computeDates(ctx, doc); err != nil {
			return err
		}

		if err := doc.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		if err := s.publishEvent(ctx, doc, EventConfirmed); err != nil {
			return err
		}

		confirmed = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale order confirmed",
		"id", confirmed.ID,
		"number", confirmed.Number,
		"expectedDate", confirmed.ExpectedDate,
		"datePlanned", confirmed.DatePlanned,
		"dateDeadline", confirmed.DateDeadline,
	)
	return confirmed, nil
}

// priceLines fills line prices from the pricelist cache at the order
// date. Lines priced by hand keep their price; products missing from
// the cache fall back to the product list price.
func (s *Service) priceLines(ctx context.Context, doc *SaleOrder) error {
	unpriced := make([]id.ID, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		if line.UnitPrice.IsZero() {
			unpriced = append(unpriced, line.ProductID)
		}
	}
	if len(unpriced) == 0 {
		doc.RecalculateTotals()
		return nil
	}

	cached, err := s.prices.GetPrices(ctx, doc.PricelistID, unpriced, doc.Date)
	if err != nil {
		return fmt.Errorf("resolve prices: %w", err)
	}

	for i := range doc.Lines {
		line := &doc.Lines[i]
		if !line.UnitPrice.IsZero() {
			continue
		}
		if price, ok := cached[line.ProductID]; ok {
			line.UnitPrice = price
			continue
		}
		prod, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return err
		}
		line.UnitPrice = prod.ListPrice
	}

	doc.RecalculateTotals()
	return nil
}

// computeDates runs the schedule pipeline for every line and aggregates
// the order-level dates: the earliest planned start, the latest deadline
// and the latest expected delivery.
func (s *Service) computeDates(ctx context.Context, doc *SaleOrder) error {
	cfg, err := s.scheduleInput(ctx, doc)
	if err != nil {
		return err
	}

	doc.ExpectedDate = nil
	doc.DatePlanned = nil
	doc.DateDeadline = nil

	for i := range doc.Lines {
		line := &doc.Lines[i]

		if line.CustomerLeadDays == 0 {
			prod, err := s.products.GetByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			line.CustomerLeadDays = prod.CustomerLeadDays
		}

		input := doc.ScheduleLine(*line, cfg)
		initial := input.InitialEstimate(doc.Date)

		expected, err := schedule.ComputeExpectedDate(input, initial)
		if err != nil {
			return err
		}
		line.ExpectedDate = &expected

		proc, err := schedule.ComputeProcurementDates(input, initial)
		if err != nil {
			return err
		}

		if doc.ExpectedDate == nil || expected.After(*doc.ExpectedDate) {
			doc.ExpectedDate = &expected
		}
		if doc.DatePlanned == nil || proc.DatePlanned.Before(*doc.DatePlanned) {
			planned := proc.DatePlanned
			doc.DatePlanned = &planned
		}
		if doc.DateDeadline == nil || proc.DateDeadline.After(*doc.DateDeadline) {
			deadline := proc.DateDeadline
			doc.DateDeadline = &deadline
		}
	}

	return nil
}

// scheduleInput resolves the delivery configuration shared by all lines.
func (s *Service) scheduleInput(ctx context.Context, doc *SaleOrder) (ScheduleInput, error) {
	wh, err := s.warehouses.GetByID(ctx, doc.WarehouseID)
	if err != nil {
		return ScheduleInput{}, err
	}
	if !wh.CanShip() {
		return ScheduleInput{}, apperror.NewBusinessRule("WAREHOUSE_INACTIVE",
			"warehouse cannot ship orders").
			WithDetail("warehouse", wh.Code)
	}

	shipTo, err := s.partners.GetByID(ctx, doc.ShippingPartner())
	if err != nil {
		return ScheduleInput{}, err
	}

	comp, err := s.companies.GetByID(ctx, doc.CompanyID)
	if err != nil {
		return ScheduleInput{}, err
	}

	securityLead := wh.SecurityLeadDays
	if securityLead == 0 {
		securityLead = comp.SecurityLeadDays
	}

	// Partner cutoff wins over the warehouse cutoff when configured.
	cutoff := shipTo.Cutoff()
	if cutoff == nil {
		cutoff = wh.Cutoff()
	}

	return ScheduleInput{
		SecurityLead: securityLead,
		Calendar:     wh.WorkingCalendar(),
		Cutoff:       cutoff,
		Preference:   shipTo.DeliveryPreference,
		Windows:      shipTo.DeliveryWindows(),
	}, nil
}

// Done closes a confirmed order.
func (s *Service) Done(ctx context.Context, docID id.ID) error {
	return s.transition(ctx, docID, EventDone, (*SaleOrder).MarkDone)
}

// Cancel cancels a draft or confirmed order.
func (s *Service) Cancel(ctx context.Context, docID id.ID) error {
	return s.transition(ctx, docID, EventCancelled, (*SaleOrder).MarkCancelled)
}

func (s *Service) transition(ctx context.Context, docID id.ID, eventType string, step func(*SaleOrder) error) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := step(doc); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, doc); err != nil {
			return err
		}
		return s.publishEvent(ctx, doc, eventType)
	})
}

// BlockInvoicing sets the invoice blocking reason on an order.
func (s *Service) BlockInvoicing(ctx context.Context, docID id.ID, reason string) error {
	if reason == "" {
		return apperror.NewValidation("blocking reason is required").
			WithDetail("field", "reason")
	}
	return s.transition(ctx, docID, "", func(doc *SaleOrder) error {
		doc.BlockInvoicing(reason)
		return nil
	})
}

// MarkInvoiced records the invoice created for a confirmed order.
func (s *Service) MarkInvoiced(ctx context.Context, docID, invoiceID id.ID) error {
	return s.transition(ctx, docID, EventInvoiced, func(doc *SaleOrder) error {
		if doc.State != StateConfirmed {
			return apperror.NewBusinessRule("ORDER_NOT_CONFIRMED",
				"only confirmed orders can be invoiced").
				WithDetail("number", doc.Number).
				WithDetail("state", string(doc.State))
		}
		if doc.IsInvoiced() {
			return apperror.NewBusinessRule("ORDER_ALREADY_INVOICED",
				"order already has an invoice").
				WithDetail("number", doc.Number)
		}
		doc.InvoiceID = &invoiceID
		return nil
	})
}

// UnblockInvoicing clears the invoice blocking reason.
func (s *Service) UnblockInvoicing(ctx context.Context, docID id.ID) error {
	return s.transition(ctx, docID, "", func(doc *SaleOrder) error {
		doc.UnblockInvoicing()
		return nil
	})
}

// AddActivity attaches an open validation activity to a draft order.
func (s *Service) AddActivity(ctx context.Context, docID id.ID, title string) (*ValidationActivity, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if err := doc.CanModify(); err != nil {
		return nil, err
	}

	activity := NewValidationActivity(docID, title)
	if err := activity.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}
	return activity, nil
}

// CompleteActivity marks a validation activity as done.
func (s *Service) CompleteActivity(ctx context.Context, activityID id.ID, doneBy, note string) error {
	activity, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		return err
	}
	if activity.Done {
		return nil
	}

	activity.Complete(doneBy, note)
	return s.activities.Update(ctx, activity)
}

// ListActivities returns all validation activities of an order.
func (s *Service) ListActivities(ctx context.Context, docID id.ID) ([]*ValidationActivity, error) {
	return s.activities.ListByOrder(ctx, docID)
}

// List retrieves orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*SaleOrder], error) {
	return s.repo.List(ctx, filter)
}
