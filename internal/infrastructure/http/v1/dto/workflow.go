package dto

import (
	"saleflow/internal/core/entity"
	"saleflow/internal/domain/workflow"
)

// --- Process CRUD ---

// CreateProcessRequest is the request body for creating a workflow process.
type CreateProcessRequest struct {
	Code                   string            `json:"code"`
	Name                   string            `json:"name" binding:"required"`
	ValidateOrder          bool              `json:"validateOrder"`
	CreateInvoice          bool              `json:"createInvoice"`
	ValidateInvoice        bool              `json:"validateInvoice"`
	InvoiceDateIsOrderDate bool              `json:"invoiceDateIsOrderDate"`
	SaleDone               bool              `json:"saleDone"`
	Enabled                bool              `json:"enabled"`
	Attributes             entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProcessRequest) ToEntity() *workflow.Process {
	p := workflow.NewProcess(r.Code, r.Name)
	p.ValidateOrder = r.ValidateOrder
	p.CreateInvoice = r.CreateInvoice
	p.ValidateInvoice = r.ValidateInvoice
	p.InvoiceDateIsOrderDate = r.InvoiceDateIsOrderDate
	p.SaleDone = r.SaleDone
	p.Enabled = r.Enabled
	p.Attributes = r.Attributes
	return p
}

// UpdateProcessRequest is the request body for updating a workflow process.
type UpdateProcessRequest struct {
	Code                   string            `json:"code"`
	Name                   string            `json:"name" binding:"required"`
	ValidateOrder          bool              `json:"validateOrder"`
	CreateInvoice          bool              `json:"createInvoice"`
	ValidateInvoice        bool              `json:"validateInvoice"`
	InvoiceDateIsOrderDate bool              `json:"invoiceDateIsOrderDate"`
	SaleDone               bool              `json:"saleDone"`
	Enabled                bool              `json:"enabled"`
	Attributes             entity.Attributes `json:"attributes"`
	Version                int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProcessRequest) ApplyTo(p *workflow.Process) {
	p.Code = r.Code
	p.Name = r.Name
	p.ValidateOrder = r.ValidateOrder
	p.CreateInvoice = r.CreateInvoice
	p.ValidateInvoice = r.ValidateInvoice
	p.InvoiceDateIsOrderDate = r.InvoiceDateIsOrderDate
	p.SaleDone = r.SaleDone
	p.Enabled = r.Enabled
	p.Attributes = r.Attributes
	p.Version = r.Version
}

// ProcessResponse is the API representation of a workflow process.
type ProcessResponse struct {
	CatalogResponse
	ValidateOrder          bool `json:"validateOrder"`
	CreateInvoice          bool `json:"createInvoice"`
	ValidateInvoice        bool `json:"validateInvoice"`
	InvoiceDateIsOrderDate bool `json:"invoiceDateIsOrderDate"`
	SaleDone               bool `json:"saleDone"`
	Enabled                bool `json:"enabled"`
}

// FromProcess converts domain entity to response DTO.
func FromProcess(p *workflow.Process) *ProcessResponse {
	return &ProcessResponse{
		CatalogResponse:        FromCatalog(p.Catalog),
		ValidateOrder:          p.ValidateOrder,
		CreateInvoice:          p.CreateInvoice,
		ValidateInvoice:        p.ValidateInvoice,
		InvoiceDateIsOrderDate: p.InvoiceDateIsOrderDate,
		SaleDone:               p.SaleDone,
		Enabled:                p.Enabled,
	}
}

// --- Run ---

// RunReportResponse summarizes one workflow run.
type RunReportResponse struct {
	Processes         int `json:"processes"`
	OrdersConfirmed   int `json:"ordersConfirmed"`
	InvoicesCreated   int `json:"invoicesCreated"`
	InvoicesValidated int `json:"invoicesValidated"`
	OrdersDone        int `json:"ordersDone"`
	Skipped           int `json:"skipped"`
	Failures          int `json:"failures"`
}

// FromRunReport converts the domain run report.
func FromRunReport(r workflow.Report) *RunReportResponse {
	return &RunReportResponse{
		Processes:         r.Processes,
		OrdersConfirmed:   r.OrdersConfirmed,
		InvoicesCreated:   r.InvoicesCreated,
		InvoicesValidated: r.InvoicesValidated,
		OrdersDone:        r.OrdersDone,
		Skipped:           r.Skipped,
		Failures:          r.Failures,
	}
}
