package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/id"
	"saleflow/internal/domain"
	"saleflow/internal/domain/coupon"
	"saleflow/internal/infrastructure/http/v1/dto"
)

// ProgramHTTPHandler is the catalog handler specialized for coupon programs.
type ProgramHTTPHandler = CatalogHandler[
	*coupon.Program,
	dto.CreateProgramRequest,
	dto.UpdateProgramRequest,
]

// NewProgramHandler wires the generic catalog handler to the program catalog.
func NewProgramHandler(
	base *BaseHandler,
	service *domain.CatalogService[*coupon.Program],
) *ProgramHTTPHandler {

	config := CatalogHandlerConfig[
		*coupon.Program,
		dto.CreateProgramRequest,
		dto.UpdateProgramRequest,
	]{
		Service:    service,
		EntityName: "coupon program",

		MapCreateDTO: func(req dto.CreateProgramRequest) *coupon.Program {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateProgramRequest, existing *coupon.Program) *coupon.Program {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *coupon.Program) any {
			return dto.FromProgram(entity)
		},
	}

	return NewCatalogHandler(base, config)
}

// CouponHandler handles coupon generation and lookup.
type CouponHandler struct {
	*BaseHandler
	coupons *coupon.Service
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(base *BaseHandler, coupons *coupon.Service) *CouponHandler {
	return &CouponHandler{
		BaseHandler: base,
		coupons:     coupons,
	}
}

// Generate handles POST /coupon-programs/:id/generate.
func (h *CouponHandler) Generate(c *gin.Context) {
	programID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.GenerateCouponsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	coupons, err := h.coupons.Generate(c.Request.Context(), programID, req.Count)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.CouponResponse, len(coupons))
	for i, cp := range coupons {
		items[i] = dto.FromCoupon(cp)
	}

	response := gin.H{"items": items, "count": len(items)}
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// GetByCode handles GET /coupons/:code.
func (h *CouponHandler) GetByCode(c *gin.Context) {
	cp, err := h.coupons.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromCoupon(cp))
}
