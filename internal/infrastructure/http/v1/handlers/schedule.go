package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"saleflow/internal/domain/schedule"
	"saleflow/internal/infrastructure/http/v1/dto"
)

// ScheduleHandler exposes the delivery date pipeline as stateless
// computation endpoints. All configuration comes in the request body;
// nothing is looked up.
type ScheduleHandler struct {
	*BaseHandler
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(base *BaseHandler) *ScheduleHandler {
	return &ScheduleHandler{BaseHandler: base}
}

// ProcurementDates handles POST /schedule/procurement-dates.
func (h *ScheduleHandler) ProcurementDates(c *gin.Context) {
	var req dto.ProcurementDatesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	line := req.ToOrderLine()
	dates, err := schedule.ComputeProcurementDates(line, line.InitialEstimate(req.OrderDate))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProcurementDatesResponse{
		DatePlanned:  dates.DatePlanned,
		DateDeadline: dates.DateDeadline,
	})
}

// ExpectedDate handles POST /schedule/expected-date.
func (h *ScheduleHandler) ExpectedDate(c *gin.Context) {
	var req dto.ExpectedDateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	line := req.ToOrderLine()
	expected, err := schedule.ComputeExpectedDate(line, line.InitialEstimate(req.OrderDate))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ExpectedDateResponse{ExpectedDate: expected})
}
