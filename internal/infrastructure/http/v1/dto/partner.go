package dto

import (
	"saleflow/internal/core/entity"
	"saleflow/internal/core/id"
	"saleflow/internal/domain/catalogs/partner"
	"saleflow/internal/domain/schedule"
)

// --- Request DTOs ---

// CreatePartnerRequest is the request body for creating a partner.
type CreatePartnerRequest struct {
	Code               string                      `json:"code"`
	Name               string                      `json:"name" binding:"required"`
	Type               partner.PartnerType         `json:"type" binding:"required"`
	FullName           *string                     `json:"fullName"`
	Address            *string                     `json:"address"`
	Phone              *string                     `json:"phone"`
	Email              *string                     `json:"email"`
	PricelistID        *id.ID                      `json:"pricelistId"`
	DeliveryPreference schedule.ShippingPreference `json:"deliveryPreference"`
	TimeWindows        schedule.DeliveryWindows    `json:"timeWindows"`
	UseOwnCutoff       bool                        `json:"useOwnCutoff"`
	CutoffHour         int                         `json:"cutoffHour"`
	CutoffMinute       int                         `json:"cutoffMinute"`
	CutoffTimezone     string                      `json:"cutoffTimezone"`
	Comment            *string                     `json:"comment"`
	ParentID           *string                     `json:"parentId"`
	IsFolder           bool                        `json:"isFolder"`
	Attributes         entity.Attributes           `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreatePartnerRequest) ToEntity() *partner.Partner {
	p := partner.NewPartner(r.Code, r.Name, r.Type)
	p.FullName = r.FullName
	p.Address = r.Address
	p.Phone = r.Phone
	p.Email = r.Email
	p.PricelistID = r.PricelistID
	if r.DeliveryPreference != "" {
		p.DeliveryPreference = r.DeliveryPreference
	}
	p.TimeWindows = r.TimeWindows
	p.UseOwnCutoff = r.UseOwnCutoff
	p.CutoffHour = r.CutoffHour
	p.CutoffMinute = r.CutoffMinute
	p.CutoffTimezone = r.CutoffTimezone
	p.Comment = r.Comment
	p.ParentID = r.ParentID
	p.IsFolder = r.IsFolder
	p.Attributes = r.Attributes
	return p
}

// UpdatePartnerRequest is the request body for updating a partner.
type UpdatePartnerRequest struct {
	Code               string                      `json:"code"`
	Name               string                      `json:"name" binding:"required"`
	Type               partner.PartnerType         `json:"type" binding:"required"`
	FullName           *string                     `json:"fullName,omitempty"`
	Address            *string                     `json:"address,omitempty"`
	Phone              *string                     `json:"phone,omitempty"`
	Email              *string                     `json:"email,omitempty"`
	PricelistID        *id.ID                      `json:"pricelistId,omitempty"`
	DeliveryPreference schedule.ShippingPreference `json:"deliveryPreference"`
	TimeWindows        schedule.DeliveryWindows    `json:"timeWindows"`
	UseOwnCutoff       bool                        `json:"useOwnCutoff"`
	CutoffHour         int                         `json:"cutoffHour"`
	CutoffMinute       int                         `json:"cutoffMinute"`
	CutoffTimezone     string                      `json:"cutoffTimezone"`
	Comment            *string                     `json:"comment,omitempty"`
	ParentID           *string                     `json:"parentId,omitempty"`
	IsFolder           bool                        `json:"isFolder"`
	Attributes         entity.Attributes           `json:"attributes"`
	Version            int                         `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdatePartnerRequest) ApplyTo(p *partner.Partner) {
	p.Code = r.Code
	p.Name = r.Name
	p.Type = r.Type
	p.FullName = r.FullName
	p.Address = r.Address
	p.Phone = r.Phone
	p.Email = r.Email
	p.PricelistID = r.PricelistID
	p.DeliveryPreference = r.DeliveryPreference
	p.TimeWindows = r.TimeWindows
	p.UseOwnCutoff = r.UseOwnCutoff
	p.CutoffHour = r.CutoffHour
	p.CutoffMinute = r.CutoffMinute
	p.CutoffTimezone = r.CutoffTimezone
	p.Comment = r.Comment
	p.ParentID = r.ParentID
	p.IsFolder = r.IsFolder
	p.Attributes = r.Attributes
	p.Version = r.Version
}

// --- Response DTOs ---

// PartnerResponse is the API representation of a partner.
type PartnerResponse struct {
	CatalogResponse
	Type               partner.PartnerType         `json:"type"`
	FullName           *string                     `json:"fullName,omitempty"`
	Address            *string                     `json:"address,omitempty"`
	Phone              *string                     `json:"phone,omitempty"`
	Email              *string                     `json:"email,omitempty"`
	PricelistID        *id.ID                      `json:"pricelistId,omitempty"`
	DeliveryPreference schedule.ShippingPreference `json:"deliveryPreference"`
	TimeWindows        schedule.DeliveryWindows    `json:"timeWindows"`
	UseOwnCutoff       bool                        `json:"useOwnCutoff"`
	CutoffHour         int                         `json:"cutoffHour"`
	CutoffMinute       int                         `json:"cutoffMinute"`
	CutoffTimezone     string                      `json:"cutoffTimezone,omitempty"`
	Comment            *string                     `json:"comment,omitempty"`
}

// FromPartner converts domain entity to response DTO.
func FromPartner(p *partner.Partner) *PartnerResponse {
	return &PartnerResponse{
		CatalogResponse:    FromCatalog(p.Catalog),
		Type:               p.Type,
		FullName:           p.FullName,
		Address:            p.Address,
		Phone:              p.Phone,
		Email:              p.Email,
		PricelistID:        p.PricelistID,
		DeliveryPreference: p.DeliveryPreference,
		TimeWindows:        p.TimeWindows,
		UseOwnCutoff:       p.UseOwnCutoff,
		CutoffHour:         p.CutoffHour,
		CutoffMinute:       p.CutoffMinute,
		CutoffTimezone:     p.CutoffTimezone,
		Comment:            p.Comment,
	}
}
