// Package coupon provides coupon programs with CEL eligibility rules
// and multi-use coupons whose balance is consumed by orders.
package coupon

import (
	"context"
	"time"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/entity"
	"saleflow/internal/core/id"
	"saleflow/internal/core/types"
	"saleflow/internal/domain"
)

// Program defines a coupon campaign.
type Program struct {
	entity.Catalog

	// CodePrefix starts every coupon code of this program
	CodePrefix string `db:"code_prefix" json:"codePrefix"`

	// RewardAmount is the initial balance of generated coupons
	RewardAmount types.Money `db:"reward_amount" json:"rewardAmount"`

	// CurrencyISO is the currency of the reward amount
	CurrencyISO string `db:"currency_iso" json:"currencyIso"`

	// Rule is a CEL expression over order facts (amount, currency,
	// partner_code, product_ids, order_date); empty accepts every order
	Rule string `db:"rule" json:"rule,omitempty"`

	// Active switches the program on and off
	Active bool `db:"active" json:"active"`
}

// NewProgram creates an active program.
func NewProgram(code, name, codePrefix string, reward types.Money, currencyISO string) *Program {
	return &Program{
		Catalog:      entity.NewCatalog(code, name),
		CodePrefix:   codePrefix,
		RewardAmount: reward,
		CurrencyISO:  currencyISO,
		Active:       true,
	}
}

// Validate implements entity.Validatable interface.
func (p *Program) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.CodePrefix == "" {
		return apperror.NewValidation("code prefix is required").
			WithDetail("field", "codePrefix")
	}

	if !p.RewardAmount.IsPositive() {
		return apperror.NewValidation("reward amount must be positive").
			WithDetail("field", "rewardAmount")
	}

	if p.CurrencyISO == "" {
		return apperror.NewValidation("currency is required").
			WithDetail("field", "currencyIso")
	}

	if p.Rule != "" {
		if _, err := CompileRule(p.Rule); err != nil {
			return err
		}
	}

	return nil
}

// CouponState is the lifecycle state of a coupon.
type CouponState string

const (
	StateActive  CouponState = "active"
	StateUsed    CouponState = "used"
	StateExpired CouponState = "expired"
)

// Coupon is a multi-use voucher: its balance is consumed order by order
// until nothing remains.
type Coupon struct {
	entity.Catalog

	// ProgramID links the coupon to its program
	ProgramID id.ID `db:"program_id" json:"programId"`

	// InitialAmount is the starting balance, in the program currency
	InitialAmount types.Money `db:"initial_amount" json:"initialAmount"`

	State CouponState `db:"state" json:"state"`

	// Table part: consumptions by orders
	Consumptions []Consumption `db:"-" json:"consumptions"`
}

// Consumption records one order eating part of a coupon's balance.
type Consumption struct {
	ID       id.ID       `db:"id" json:"id"`
	CouponID id.ID       `db:"coupon_id" json:"couponId"`
	OrderID  id.ID       `db:"order_id" json:"orderId"`
	Amount   types.Money `db:"amount" json:"amount"`

	ConsumedAt time.Time `db:"consumed_at" json:"consumedAt"`
}

// NewCoupon creates an active coupon for a program. The code doubles as
// the voucher code handed to the customer.
func NewCoupon(code string, program *Program) *Coupon {
	return &Coupon{
		Catalog:       entity.NewCatalog(code, code),
		ProgramID:     program.ID,
		InitialAmount: program.RewardAmount,
		State:         StateActive,
	}
}

// Remaining returns the unconsumed balance.
func (c *Coupon) Remaining() types.Money {
	remaining := c.InitialAmount
	for _, cons := range c.Consumptions {
		remaining = remaining.Sub(cons.Amount)
	}
	return remaining
}

// Consume reduces the balance by amount for an order. Consuming more
// than the remaining balance is a business rule violation; draining the
// balance to zero marks the coupon used.
func (c *Coupon) Consume(orderID id.ID, amount types.Money) error {
	if c.State != StateActive {
		return apperror.NewCouponExhausted(c.Code, "0")
	}

	if !amount.IsPositive() {
		return apperror.NewValidation("consumption amount must be positive").
			WithDetail("field", "amount")
	}

	remaining := c.Remaining()
	if amount.GreaterThan(remaining) {
		return apperror.NewCouponExhausted(c.Code, remaining.String())
	}

	c.Consumptions = append(c.Consumptions, Consumption{
		ID:         id.New(),
		CouponID:   c.ID,
		OrderID:    orderID,
		Amount:     amount,
		ConsumedAt: time.Now().UTC(),
	})

	if c.Remaining().IsZero() {
		c.State = StateUsed
	}
	return nil
}

// Validate implements entity.Validatable interface.
func (c *Coupon) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(c.ProgramID) {
		return apperror.NewValidation("program is required").
			WithDetail("field", "programId")
	}

	if !c.InitialAmount.IsPositive() {
		return apperror.NewValidation("initial amount must be positive").
			WithDetail("field", "initialAmount")
	}

	return nil
}

// ProgramRepository defines data access for coupon programs.
type ProgramRepository interface {
	domain.CatalogRepository[*Program]
}

// CouponRepository defines data access for coupons.
type CouponRepository interface {
	domain.CatalogRepository[*Coupon]

	// CreateBatch inserts generated coupons in one round trip.
	CreateBatch(ctx context.Context, coupons []*Coupon) error

	GetConsumptions(ctx context.Context, couponID id.ID) ([]Consumption, error)
	SaveConsumptions(ctx context.Context, couponID id.ID, consumptions []Consumption) error
}
