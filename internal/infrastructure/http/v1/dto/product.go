package dto

import (
	"github.com/shopspring/decimal"

	"saleflow/internal/core/entity"
	"saleflow/internal/domain/catalogs/product"
)

// --- Request DTOs ---

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	Code             string              `json:"code"`
	Name             string              `json:"name" binding:"required"`
	Type             product.ProductType `json:"type" binding:"required"`
	SKU              *string             `json:"sku"`
	Barcode          *string             `json:"barcode"`
	BaseUnitID       *string             `json:"baseUnitId"`
	ListPrice        decimal.Decimal     `json:"listPrice"`
	CustomerLeadDays float64             `json:"customerLeadDays"`
	SaleOK           bool                `json:"saleOk"`
	Weight           decimal.Decimal     `json:"weight"`
	Description      *string             `json:"description"`
	ParentID         *string             `json:"parentId"`
	IsFolder         bool                `json:"isFolder"`
	Attributes       entity.Attributes   `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.Code, r.Name, r.Type)
	p.SKU = r.SKU
	p.Barcode = r.Barcode
	p.BaseUnitID = r.BaseUnitID
	p.ListPrice = r.ListPrice
	p.CustomerLeadDays = r.CustomerLeadDays
	p.SaleOK = r.SaleOK
	p.Weight = r.Weight
	p.Description = r.Description
	p.ParentID = r.ParentID
	p.IsFolder = r.IsFolder
	p.Attributes = r.Attributes
	return p
}

// UpdateProductRequest is the request body for updating a product.
type UpdateProductRequest struct {
	Code             string              `json:"code"`
	Name             string              `json:"name" binding:"required"`
	Type             product.ProductType `json:"type" binding:"required"`
	SKU              *string             `json:"sku,omitempty"`
	Barcode          *string             `json:"barcode,omitempty"`
	BaseUnitID       *string             `json:"baseUnitId,omitempty"`
	ListPrice        decimal.Decimal     `json:"listPrice"`
	CustomerLeadDays float64             `json:"customerLeadDays"`
	SaleOK           bool                `json:"saleOk"`
	Weight           decimal.Decimal     `json:"weight"`
	Description      *string             `json:"description,omitempty"`
	ParentID         *string             `json:"parentId,omitempty"`
	IsFolder         bool                `json:"isFolder"`
	Attributes       entity.Attributes   `json:"attributes"`
	Version          int                 `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	p.Code = r.Code
	p.Name = r.Name
	p.Type = r.Type
	p.SKU = r.SKU
	p.Barcode = r.Barcode
	p.BaseUnitID = r.BaseUnitID
	p.ListPrice = r.ListPrice
	p.CustomerLeadDays = r.CustomerLeadDays
	p.SaleOK = r.SaleOK
	p.Weight = r.Weight
	p.Description = r.Description
	p.ParentID = r.ParentID
	p.IsFolder = r.IsFolder
	p.Attributes = r.Attributes
	p.Version = r.Version
}

// --- Response DTOs ---

// ProductResponse is the API representation of a product.
type ProductResponse struct {
	CatalogResponse
	Type             product.ProductType `json:"type"`
	SKU              *string             `json:"sku,omitempty"`
	Barcode          *string             `json:"barcode,omitempty"`
	BaseUnitID       *string             `json:"baseUnitId,omitempty"`
	ListPrice        decimal.Decimal     `json:"listPrice"`
	CustomerLeadDays float64             `json:"customerLeadDays"`
	SaleOK           bool                `json:"saleOk"`
	Weight           decimal.Decimal     `json:"weight"`
	Description      *string             `json:"description,omitempty"`
}

// FromProduct converts domain entity to response DTO.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		CatalogResponse:  FromCatalog(p.Catalog),
		Type:             p.Type,
		SKU:              p.SKU,
		Barcode:          p.Barcode,
		BaseUnitID:       p.BaseUnitID,
		ListPrice:        p.ListPrice,
		CustomerLeadDays: p.CustomerLeadDays,
		SaleOK:           p.SaleOK,
		Weight:           p.Weight,
		Description:      p.Description,
	}
}
