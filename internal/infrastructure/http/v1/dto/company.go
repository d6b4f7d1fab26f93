package dto

import (
	"saleflow/internal/core/entity"
	"saleflow/internal/core/id"
	"saleflow/internal/domain/catalogs/company"
)

// --- Request DTOs ---

// CreateCompanyRequest is the request body for creating a company.
type CreateCompanyRequest struct {
	Code               string            `json:"code"`
	Name               string            `json:"name" binding:"required"`
	FullName           *string           `json:"fullName"`
	BaseCurrencyID     id.ID             `json:"baseCurrencyId" binding:"required"`
	SecurityLeadDays   float64           `json:"securityLeadDays"`
	DefaultWarehouseID *id.ID            `json:"defaultWarehouseId"`
	AutoConfirm        bool              `json:"autoConfirm"`
	AutoInvoice        bool              `json:"autoInvoice"`
	IsDefault          bool              `json:"isDefault"`
	Attributes         entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCompanyRequest) ToEntity() *company.Company {
	c := company.NewCompany(r.Code, r.Name, r.BaseCurrencyID)
	c.FullName = r.FullName
	c.SecurityLeadDays = r.SecurityLeadDays
	c.DefaultWarehouseID = r.DefaultWarehouseID
	c.AutoConfirm = r.AutoConfirm
	c.AutoInvoice = r.AutoInvoice
	c.IsDefault = r.IsDefault
	c.Attributes = r.Attributes
	return c
}

// UpdateCompanyRequest is the request body for updating a company.
type UpdateCompanyRequest struct {
	Code               string            `json:"code"`
	Name               string            `json:"name" binding:"required"`
	FullName           *string           `json:"fullName,omitempty"`
	BaseCurrencyID     id.ID             `json:"baseCurrencyId" binding:"required"`
	SecurityLeadDays   float64           `json:"securityLeadDays"`
	DefaultWarehouseID *id.ID            `json:"defaultWarehouseId,omitempty"`
	AutoConfirm        bool              `json:"autoConfirm"`
	AutoInvoice        bool              `json:"autoInvoice"`
	IsDefault          bool              `json:"isDefault"`
	Attributes         entity.Attributes `json:"attributes"`
	Version            int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCompanyRequest) ApplyTo(c *company.Company) {
	c.Code = r.Code
	c.Name = r.Name
	c.FullName = r.FullName
	c.BaseCurrencyID = r.BaseCurrencyID
	c.SecurityLeadDays = r.SecurityLeadDays
	c.DefaultWarehouseID = r.DefaultWarehouseID
	c.AutoConfirm = r.AutoConfirm
	c.AutoInvoice = r.AutoInvoice
	c.IsDefault = r.IsDefault
	c.Attributes = r.Attributes
	c.Version = r.Version
}

// --- Response DTOs ---

// CompanyResponse is the API representation of a company.
type CompanyResponse struct {
	CatalogResponse
	FullName           *string `json:"fullName,omitempty"`
	BaseCurrencyID     id.ID   `json:"baseCurrencyId"`
	SecurityLeadDays   float64 `json:"securityLeadDays"`
	DefaultWarehouseID *id.ID  `json:"defaultWarehouseId,omitempty"`
	AutoConfirm        bool    `json:"autoConfirm"`
	AutoInvoice        bool    `json:"autoInvoice"`
	IsDefault          bool    `json:"isDefault"`
}

// FromCompany converts domain entity to response DTO.
func FromCompany(c *company.Company) *CompanyResponse {
	return &CompanyResponse{
		CatalogResponse:    FromCatalog(c.Catalog),
		FullName:           c.FullName,
		BaseCurrencyID:     c.BaseCurrencyID,
		SecurityLeadDays:   c.SecurityLeadDays,
		DefaultWarehouseID: c.DefaultWarehouseID,
		AutoConfirm:        c.AutoConfirm,
		AutoInvoice:        c.AutoInvoice,
		IsDefault:          c.IsDefault,
	}
}
