package dto

import (
	"time"

	"saleflow/internal/core/entity"
	"saleflow/internal/core/id"
	"saleflow/internal/core/types"
	"saleflow/internal/domain/pricing"
)

// --- Pricelist CRUD ---

// CreatePricelistRequest is the request body for creating a pricelist.
type CreatePricelistRequest struct {
	Code       string            `json:"code"`
	Name       string            `json:"name" binding:"required"`
	CurrencyID *string           `json:"currencyId"`
	Active     bool              `json:"active"`
	Attributes entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreatePricelistRequest) ToEntity() *pricing.Pricelist {
	p := pricing.NewPricelist(r.Code, r.Name)
	p.CurrencyID = r.CurrencyID
	p.Active = r.Active
	p.Attributes = r.Attributes
	return p
}

// UpdatePricelistRequest is the request body for updating a pricelist.
type UpdatePricelistRequest struct {
	Code       string            `json:"code"`
	Name       string            `json:"name" binding:"required"`
	CurrencyID *string           `json:"currencyId,omitempty"`
	Active     bool              `json:"active"`
	Attributes entity.Attributes `json:"attributes"`
	Version    int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdatePricelistRequest) ApplyTo(p *pricing.Pricelist) {
	p.Code = r.Code
	p.Name = r.Name
	p.CurrencyID = r.CurrencyID
	p.Active = r.Active
	p.Attributes = r.Attributes
	p.Version = r.Version
}

// PricelistResponse is the API representation of a pricelist.
type PricelistResponse struct {
	CatalogResponse
	CurrencyID *string `json:"currencyId,omitempty"`
	Active     bool    `json:"active"`
}

// FromPricelist converts domain entity to response DTO.
func FromPricelist(p *pricing.Pricelist) *PricelistResponse {
	return &PricelistResponse{
		CatalogResponse: FromCatalog(p.Catalog),
		CurrencyID:      p.CurrencyID,
		Active:          p.Active,
	}
}

// --- Price resolution ---

// PriceQuery selects cached prices for a product set at a date.
type PriceQuery struct {
	PricelistID id.ID      `form:"pricelist" binding:"required"`
	ProductIDs  []id.ID    `form:"products" binding:"required"`
	AtDate      *time.Time `form:"atDate" time_format:"2006-01-02"`
}

// ResolvedPrice is one product's resolved price.
type ResolvedPrice struct {
	ProductID id.ID       `json:"productId"`
	Price     types.Money `json:"price"`
}

// PricesResponse lists resolved prices.
type PricesResponse struct {
	PricelistID id.ID           `json:"pricelistId"`
	AtDate      time.Time       `json:"atDate"`
	Prices      []ResolvedPrice `json:"prices"`
}

// --- Cache refresh ---

// RefreshRequest triggers a cache recompute for one pricelist.
type RefreshRequest struct {
	PricelistID id.ID   `json:"pricelistId" binding:"required"`
	ProductIDs  []id.ID `json:"productIds" binding:"required"`
}

// RefreshResponse reports the recomputed entry counts.
type RefreshResponse struct {
	PricelistID  id.ID `json:"pricelistId"`
	BaseEntries  int   `json:"baseEntries"`
	DatedEntries int   `json:"datedEntries"`
}

// FromRefreshResult converts the domain refresh summary.
func FromRefreshResult(r pricing.RefreshResult) *RefreshResponse {
	return &RefreshResponse{
		PricelistID:  r.PricelistID,
		BaseEntries:  r.BaseEntries,
		DatedEntries: r.DatedEntries,
	}
}
