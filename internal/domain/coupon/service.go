package coupon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/id"
	"saleflow/internal/core/numerator"
	"saleflow/internal/core/tx"
	"saleflow/internal/core/types"
	"saleflow/internal/domain/catalogs/currency"
	"saleflow/internal/domain/catalogs/partner"
	"saleflow/internal/domain/documents/saleorder"
	"saleflow/pkg/logger"
)

// Converter translates amounts between currencies.
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, fromISO, toISO string) (decimal.Decimal, error)
}

// CurrencySource resolves order currencies.
type CurrencySource interface {
	GetByID(ctx context.Context, entityID id.ID) (*currency.Currency, error)
}

// PartnerSource resolves ordering partners for rule facts.
type PartnerSource interface {
	GetByID(ctx context.Context, entityID id.ID) (*partner.Partner, error)
}

// Application is the outcome of applying a coupon to an order.
type Application struct {
	CouponCode string `json:"couponCode"`
	OrderID    id.ID  `json:"orderId"`

	// Consumed is the balance eaten, in the program currency
	Consumed types.Money `json:"consumed"`

	// Discount is the same value in the order currency
	Discount types.Money `json:"discount"`

	// Remaining is the coupon balance left after this application
	Remaining types.Money `json:"remaining"`

	CouponState CouponState `json:"couponState"`
}

// Service provides coupon operations.
type Service struct {
	programs   ProgramRepository
	coupons    CouponRepository
	converter  Converter
	currencies CurrencySource
	partners   PartnerSource
	numerator  numerator.Generator
	txManager  tx.Manager

	// compiled rules, keyed by program ID; invalidated when the rule
	// text changes
	mu    sync.Mutex
	rules map[id.ID]compiledRule
}

type compiledRule struct {
	source string
	rule   *Rule
}

// NewService creates a coupon service.
func NewService(
	programs ProgramRepository,
	coupons CouponRepository,
	converter Converter,
	currencies CurrencySource,
	partners PartnerSource,
	num numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		programs:   programs,
		coupons:    coupons,
		converter:  converter,
		currencies: currencies,
		partners:   partners,
		numerator:  num,
		txManager:  txManager,
		rules:      make(map[id.ID]compiledRule),
	}
}

// Generate creates count coupons for a program, numbered with the
// program's code prefix.
func (s *Service) Generate(ctx context.Context, programID id.ID, count int) ([]*Coupon, error) {
	if count <= 0 {
		return nil, apperror.NewValidation("count must be positive").
			WithDetail("field", "count")
	}

	program, err := s.programs.GetByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	if !program.Active {
		return nil, apperror.NewBusinessRule("PROGRAM_INACTIVE",
			"coupons cannot be generated for an inactive program").
			WithDetail("program", program.Code)
	}

	coupons := make([]*Coupon, 0, count)
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		cfg := numerator.DefaultConfig(program.CodePrefix)
		for i := 0; i < count; i++ {
			code, err := s.numerator.GetNextNumber(ctx, cfg, numerator.DefaultOptions(), time.Now())
			if err != nil {
				return fmt.Errorf("generate coupon code: %w", err)
			}

			c := NewCoupon(code, program)
			if err := c.Validate(ctx); err != nil {
				return err
			}
			coupons = append(coupons, c)
		}
		if err := s.coupons.CreateBatch(ctx, coupons); err != nil {
			return fmt.Errorf("create coupons: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "coupons generated", "program", program.Code, "count", count)
	return coupons, nil
}

// Apply consumes a coupon against an order. The consumed amount is the
// order total capped by the remaining balance, converted through the
// program currency when it differs from the order currency.
func (s *Service) Apply(ctx context.Context, order *saleorder.SaleOrder, code string) (*Application, error) {
	c, err := s.coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if c.State != StateActive {
		return nil, apperror.NewCouponExhausted(c.Code, c.Remaining().String())
	}

	program, err := s.programs.GetByID(ctx, c.ProgramID)
	if err != nil {
		return nil, err
	}
	if !program.Active {
		return nil, apperror.NewCouponNotEligible(c.Code, order.Number)
	}

	eligible, err := s.checkEligibility(ctx, program, order)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, apperror.NewCouponNotEligible(c.Code, order.Number)
	}

	orderCur, err := s.currencies.GetByID(ctx, order.CurrencyID)
	if err != nil {
		return nil, err
	}

	// Order total expressed in the program currency.
	requested := order.TotalAmount
	if orderCur.ISO() != program.CurrencyISO {
		requested, err = s.converter.Convert(ctx, requested, orderCur.ISO(), program.CurrencyISO)
		if err != nil {
			return nil, err
		}
	}

	var application *Application
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		stored, err := s.coupons.GetByID(ctx, c.ID)
		if err != nil {
			return err
		}
		consumptions, err := s.coupons.GetConsumptions(ctx, stored.ID)
		if err != nil {
			return fmt.Errorf("get consumptions: %w", err)
		}
		stored.Consumptions = consumptions

		consumed := requested
		if remaining := stored.Remaining(); consumed.GreaterThan(remaining) {
			consumed = remaining
		}

		if err := stored.Consume(order.ID, consumed); err != nil {
			return err
		}

		discount := consumed
		if orderCur.ISO() != program.CurrencyISO {
			discount, err = s.converter.Convert(ctx, consumed, program.CurrencyISO, orderCur.ISO())
			if err != nil {
				return err
			}
		}

		if err := s.coupons.Update(ctx, stored); err != nil {
			return fmt.Errorf("update coupon: %w", err)
		}
		if err := s.coupons.SaveConsumptions(ctx, stored.ID, stored.Consumptions); err != nil {
			return fmt.Errorf("save consumptions: %w", err)
		}

		application = &Application{
			CouponCode:  stored.Code,
			OrderID:     order.ID,
			Consumed:    consumed,
			Discount:    discount,
			Remaining:   stored.Remaining(),
			CouponState: stored.State,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "coupon applied",
		"coupon", application.CouponCode,
		"order", order.Number,
		"consumed", application.Consumed,
		"remaining", application.Remaining,
	)
	return application, nil
}

// checkEligibility evaluates the program rule against order facts.
// An empty rule accepts every order.
func (s *Service) checkEligibility(ctx context.Context, program *Program, order *saleorder.SaleOrder) (bool, error) {
	if program.Rule == "" {
		return true, nil
	}

	rule, err := s.compiledRule(program)
	if err != nil {
		return false, err
	}

	orderCur, err := s.currencies.GetByID(ctx, order.CurrencyID)
	if err != nil {
		return false, err
	}
	p, err := s.partners.GetByID(ctx, order.PartnerID)
	if err != nil {
		return false, err
	}

	productIDs := make([]string, 0, len(order.Lines))
	for _, line := range order.Lines {
		productIDs = append(productIDs, line.ProductID.String())
	}

	return rule.Eligible(OrderFacts{
		Amount:      order.TotalAmount.InexactFloat64(),
		CurrencyISO: orderCur.ISO(),
		PartnerCode: p.Code,
		ProductIDs:  productIDs,
		OrderDate:   order.Date,
	})
}

func (s *Service) compiledRule(program *Program) (*Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.rules[program.ID]; ok && cached.source == program.Rule {
		return cached.rule, nil
	}

	rule, err := CompileRule(program.Rule)
	if err != nil {
		return nil, err
	}
	s.rules[program.ID] = compiledRule{source: program.Rule, rule: rule}
	return rule, nil
}

// GetByCode retrieves a coupon with its consumptions.
func (s *Service) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	c, err := s.coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	consumptions, err := s.coupons.GetConsumptions(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("get consumptions: %w", err)
	}
	c.Consumptions = consumptions
	return c, nil
}
