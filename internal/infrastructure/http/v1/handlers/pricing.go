package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/id"
	"saleflow/internal/core/security"
	"saleflow/internal/domain/pricing"
	"saleflow/internal/infrastructure/http/v1/dto"
)

// PricelistHTTPHandler is the catalog handler specialized for pricelists.
type PricelistHTTPHandler = CatalogHandler[
	*pricing.Pricelist,
	dto.CreatePricelistRequest,
	dto.UpdatePricelistRequest,
]

// NewPricelistHandler wires the generic catalog handler to the pricing service.
func NewPricelistHandler(
	base *BaseHandler,
	service *pricing.Service,
) *PricelistHTTPHandler {

	config := CatalogHandlerConfig[
		*pricing.Pricelist,
		dto.CreatePricelistRequest,
		dto.UpdatePricelistRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "pricelist",

		MapCreateDTO: func(req dto.CreatePricelistRequest) *pricing.Pricelist {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdatePricelistRequest, existing *pricing.Pricelist) *pricing.Pricelist {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *pricing.Pricelist) any {
			return dto.FromPricelist(entity)
		},
	}

	return NewCatalogHandler(base, config)
}

// PriceHandler handles price resolution and cache refresh endpoints.
type PriceHandler struct {
	*BaseHandler
	prices *pricing.Service
	flags  security.FeatureFlagProvider
}

// NewPriceHandler creates a new price handler.
func NewPriceHandler(base *BaseHandler, prices *pricing.Service, flags security.FeatureFlagProvider) *PriceHandler {
	return &PriceHandler{
		BaseHandler: base,
		prices:      prices,
		flags:       flags,
	}
}

// GetPrices handles GET /prices?pricelist=...&products=...&atDate=...
// Prices come from the cache only; a product without a cache entry is
// omitted from the response.
func (h *PriceHandler) GetPrices(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.PriceQuery
	if !h.BindQuery(c, &query) {
		return
	}

	atDate := time.Now()
	if query.AtDate != nil {
		atDate = *query.AtDate
	}

	prices, err := h.prices.GetPrices(ctx, query.PricelistID, query.ProductIDs, atDate)
	if err != nil {
		h.Error(c, err)
		return
	}

	// Preserve the request ordering
	resolved := make([]dto.ResolvedPrice, 0, len(prices))
	for _, productID := range query.ProductIDs {
		price, ok := prices[productID]
		if !ok {
			continue
		}
		resolved = append(resolved, dto.ResolvedPrice{ProductID: productID, Price: price})
	}

	c.JSON(http.StatusOK, dto.PricesResponse{
		PricelistID: query.PricelistID,
		AtDate:      atDate,
		Prices:      resolved,
	})
}

// Refresh handles POST /prices/refresh. The cache recompute for the
// whole catalog runs in the background worker; this endpoint serves
// targeted refreshes after rule edits.
func (h *PriceHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	if !h.flags.IsEnabled(ctx, security.FlagPriceCacheRefresh) {
		h.Error(c, apperror.NewBusinessRule("PRICE_REFRESH_DISABLED",
			"price cache refresh is currently disabled"))
		return
	}

	var req dto.RefreshRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.prices.Refresh(ctx, req.PricelistID, req.ProductIDs)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromRefreshResult(result))
}

// CheckDuplicates handles GET /prices/duplicates?pricelist=...
// Responds 200 when the cache is consistent, 409 when a duplicate
// entry exists.
func (h *PriceHandler) CheckDuplicates(c *gin.Context) {
	pricelistID, err := id.Parse(c.Query("pricelist"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid pricelist format"))
		return
	}

	if err := h.prices.CheckDuplicates(c.Request.Context(), pricelistID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "no duplicate cache entries")
}
