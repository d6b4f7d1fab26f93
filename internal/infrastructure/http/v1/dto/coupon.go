package dto

import (
	"time"

	"saleflow/internal/core/entity"
	"saleflow/internal/core/id"
	"saleflow/internal/core/types"
	"saleflow/internal/domain/coupon"
)

// --- Program CRUD ---

// CreateProgramRequest is the request body for creating a coupon program.
type CreateProgramRequest struct {
	Code         string            `json:"code"`
	Name         string            `json:"name" binding:"required"`
	CodePrefix   string            `json:"codePrefix" binding:"required"`
	RewardAmount types.Money       `json:"rewardAmount" binding:"required"`
	CurrencyISO  string            `json:"currencyIso" binding:"required"`
	Rule         string            `json:"rule"`
	Active       bool              `json:"active"`
	Attributes   entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProgramRequest) ToEntity() *coupon.Program {
	p := coupon.NewProgram(r.Code, r.Name, r.CodePrefix, r.RewardAmount, r.CurrencyISO)
	p.Rule = r.Rule
	p.Active = r.Active
	p.Attributes = r.Attributes
	return p
}

// UpdateProgramRequest is the request body for updating a coupon program.
type UpdateProgramRequest struct {
	Code         string            `json:"code"`
	Name         string            `json:"name" binding:"required"`
	CodePrefix   string            `json:"codePrefix" binding:"required"`
	RewardAmount types.Money       `json:"rewardAmount" binding:"required"`
	CurrencyISO  string            `json:"currencyIso" binding:"required"`
	Rule         string            `json:"rule"`
	Active       bool              `json:"active"`
	Attributes   entity.Attributes `json:"attributes"`
	Version      int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProgramRequest) ApplyTo(p *coupon.Program) {
	p.Code = r.Code
	p.Name = r.Name
	p.CodePrefix = r.CodePrefix
	p.RewardAmount = r.RewardAmount
	p.CurrencyISO = r.CurrencyISO
	p.Rule = r.Rule
	p.Active = r.Active
	p.Attributes = r.Attributes
	p.Version = r.Version
}

// ProgramResponse is the API representation of a coupon program.
type ProgramResponse struct {
	CatalogResponse
	CodePrefix   string      `json:"codePrefix"`
	RewardAmount types.Money `json:"rewardAmount"`
	CurrencyISO  string      `json:"currencyIso"`
	Rule         string      `json:"rule,omitempty"`
	Active       bool        `json:"active"`
}

// FromProgram converts domain entity to response DTO.
func FromProgram(p *coupon.Program) *ProgramResponse {
	return &ProgramResponse{
		CatalogResponse: FromCatalog(p.Catalog),
		CodePrefix:      p.CodePrefix,
		RewardAmount:    p.RewardAmount,
		CurrencyISO:     p.CurrencyISO,
		Rule:            p.Rule,
		Active:          p.Active,
	}
}

// --- Coupons ---

// GenerateCouponsRequest mints coupons for a program.
type GenerateCouponsRequest struct {
	Count int `json:"count" binding:"required,min=1,max=1000"`
}

// ConsumptionResponse is one order's bite of a coupon balance.
type ConsumptionResponse struct {
	ID         id.ID       `json:"id"`
	OrderID    id.ID       `json:"orderId"`
	Amount     types.Money `json:"amount"`
	ConsumedAt time.Time   `json:"consumedAt"`
}

// CouponResponse is the API representation of a coupon.
type CouponResponse struct {
	ID            id.ID                 `json:"id"`
	Code          string                `json:"code"`
	ProgramID     id.ID                 `json:"programId"`
	InitialAmount types.Money           `json:"initialAmount"`
	Remaining     types.Money           `json:"remaining"`
	State         string                `json:"state"`
	Consumptions  []ConsumptionResponse `json:"consumptions"`
}

// FromCoupon converts domain entity to response DTO.
func FromCoupon(c *coupon.Coupon) *CouponResponse {
	consumptions := make([]ConsumptionResponse, len(c.Consumptions))
	for i, cons := range c.Consumptions {
		consumptions[i] = ConsumptionResponse{
			ID:         cons.ID,
			OrderID:    cons.OrderID,
			Amount:     cons.Amount,
			ConsumedAt: cons.ConsumedAt,
		}
	}
	return &CouponResponse{
		ID:            c.ID,
		Code:          c.Code,
		ProgramID:     c.ProgramID,
		InitialAmount: c.InitialAmount,
		Remaining:     c.Remaining(),
		State:         string(c.State),
		Consumptions:  consumptions,
	}
}
