package dto

import (
	"saleflow/internal/core/entity"
	"saleflow/internal/domain/catalogs/warehouse"
	"saleflow/internal/domain/schedule"
)

// --- Request DTOs ---

// CreateWarehouseRequest is the request body for creating a warehouse.
type CreateWarehouseRequest struct {
	Code             string            `json:"code"`
	Name             string            `json:"name" binding:"required"`
	Address          *string           `json:"address"`
	IsActive         bool              `json:"isActive"`
	IsDefault        bool              `json:"isDefault"`
	Calendar         schedule.WeekSpec `json:"calendar"`
	ApplyCutoff      bool              `json:"applyCutoff"`
	CutoffHour       int               `json:"cutoffHour"`
	CutoffMinute     int               `json:"cutoffMinute"`
	CutoffTimezone   string            `json:"cutoffTimezone"`
	SecurityLeadDays float64           `json:"securityLeadDays"`
	Description      *string           `json:"description"`
	ParentID         *string           `json:"parentId"`
	IsFolder         bool              `json:"isFolder"`
	Attributes       entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateWarehouseRequest) ToEntity() *warehouse.Warehouse {
	wh := warehouse.NewWarehouse(r.Code, r.Name)
	wh.Address = r.Address
	wh.IsActive = r.IsActive
	wh.IsDefault = r.IsDefault
	wh.Calendar = r.Calendar
	wh.ApplyCutoff = r.ApplyCutoff
	wh.CutoffHour = r.CutoffHour
	wh.CutoffMinute = r.CutoffMinute
	wh.CutoffTimezone = r.CutoffTimezone
	wh.SecurityLeadDays = r.SecurityLeadDays
	wh.Description = r.Description
	wh.ParentID = r.ParentID
	wh.IsFolder = r.IsFolder
	wh.Attributes = r.Attributes
	return wh
}

// UpdateWarehouseRequest is the request body for updating a warehouse.
type UpdateWarehouseRequest struct {
	Code             string            `json:"code"`
	Name             string            `json:"name" binding:"required"`
	Address          *string           `json:"address,omitempty"`
	IsActive         bool              `json:"isActive"`
	IsDefault        bool              `json:"isDefault"`
	Calendar         schedule.WeekSpec `json:"calendar"`
	ApplyCutoff      bool              `json:"applyCutoff"`
	CutoffHour       int               `json:"cutoffHour"`
	CutoffMinute     int               `json:"cutoffMinute"`
	CutoffTimezone   string            `json:"cutoffTimezone"`
	SecurityLeadDays float64           `json:"securityLeadDays"`
	Description      *string           `json:"description,omitempty"`
	ParentID         *string           `json:"parentId,omitempty"`
	IsFolder         bool              `json:"isFolder"`
	Attributes       entity.Attributes `json:"attributes"`
	Version          int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateWarehouseRequest) ApplyTo(wh *warehouse.Warehouse) {
	wh.Code = r.Code
	wh.Name = r.Name
	wh.Address = r.Address
	wh.IsActive = r.IsActive
	wh.IsDefault = r.IsDefault
	wh.Calendar = r.Calendar
	wh.ApplyCutoff = r.ApplyCutoff
	wh.CutoffHour = r.CutoffHour
	wh.CutoffMinute = r.CutoffMinute
	wh.CutoffTimezone = r.CutoffTimezone
	wh.SecurityLeadDays = r.SecurityLeadDays
	wh.Description = r.Description
	wh.ParentID = r.ParentID
	wh.IsFolder = r.IsFolder
	wh.Attributes = r.Attributes
	wh.Version = r.Version
}

// --- Response DTOs ---

// WarehouseResponse is the API representation of a warehouse.
type WarehouseResponse struct {
	CatalogResponse
	Address          *string           `json:"address,omitempty"`
	IsActive         bool              `json:"isActive"`
	IsDefault        bool              `json:"isDefault"`
	Calendar         schedule.WeekSpec `json:"calendar"`
	ApplyCutoff      bool              `json:"applyCutoff"`
	CutoffHour       int               `json:"cutoffHour"`
	CutoffMinute     int               `json:"cutoffMinute"`
	CutoffTimezone   string            `json:"cutoffTimezone,omitempty"`
	SecurityLeadDays float64           `json:"securityLeadDays"`
	Description      *string           `json:"description,omitempty"`
}

// FromWarehouse converts domain entity to response DTO.
func FromWarehouse(wh *warehouse.Warehouse) *WarehouseResponse {
	return &WarehouseResponse{
		CatalogResponse:  FromCatalog(wh.Catalog),
		Address:          wh.Address,
		IsActive:         wh.IsActive,
		IsDefault:        wh.IsDefault,
		Calendar:         wh.Calendar,
		ApplyCutoff:      wh.ApplyCutoff,
		CutoffHour:       wh.CutoffHour,
		CutoffMinute:     wh.CutoffMinute,
		CutoffTimezone:   wh.CutoffTimezone,
		SecurityLeadDays: wh.SecurityLeadDays,
		Description:      wh.Description,
	}
}
