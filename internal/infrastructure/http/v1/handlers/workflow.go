package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/security"
	"saleflow/internal/domain/workflow"
	"saleflow/internal/infrastructure/http/v1/dto"
)

// ProcessHTTPHandler is the catalog handler specialized for workflow processes.
type ProcessHTTPHandler = CatalogHandler[
	*workflow.Process,
	dto.CreateProcessRequest,
	dto.UpdateProcessRequest,
]

// NewProcessHandler wires the generic catalog handler to the workflow service.
func NewProcessHandler(
	base *BaseHandler,
	service *workflow.Service,
) *ProcessHTTPHandler {

	config := CatalogHandlerConfig[
		*workflow.Process,
		dto.CreateProcessRequest,
		dto.UpdateProcessRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "workflow process",

		MapCreateDTO: func(req dto.CreateProcessRequest) *workflow.Process {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateProcessRequest, existing *workflow.Process) *workflow.Process {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *workflow.Process) any {
			return dto.FromProcess(entity)
		},
	}

	return NewCatalogHandler(base, config)
}

// WorkflowHandler triggers workflow runs by hand. The scheduled runs
// live in the background worker.
type WorkflowHandler struct {
	*BaseHandler
	runner *workflow.Runner
	flags  security.FeatureFlagProvider
}

// NewWorkflowHandler creates a new workflow handler.
func NewWorkflowHandler(base *BaseHandler, runner *workflow.Runner, flags security.FeatureFlagProvider) *WorkflowHandler {
	return &WorkflowHandler{
		BaseHandler: base,
		runner:      runner,
		flags:       flags,
	}
}

// Run handles POST /workflow/run.
func (h *WorkflowHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()

	if !h.flags.IsEnabled(ctx, security.FlagAutoWorkflow) {
		h.Error(c, apperror.NewBusinessRule("WORKFLOW_DISABLED",
			"automatic workflow is currently disabled"))
		return
	}

	report, err := h.runner.Run(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromRunReport(report))
}
