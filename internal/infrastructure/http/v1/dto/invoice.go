package dto

import (
	"saleflow/internal/core/id"
	"saleflow/internal/core/types"
	"saleflow/internal/domain/documents/invoice"
)

// --- Response DTOs ---

// InvoiceLineResponse is the API representation of an invoice line.
type InvoiceLineResponse struct {
	LineID    id.ID       `json:"lineId"`
	LineNo    int         `json:"lineNo"`
	ProductID id.ID       `json:"productId"`
	Quantity  float64     `json:"quantity"`
	UnitPrice types.Money `json:"unitPrice"`
	Amount    types.Money `json:"amount"`
}

// InvoiceResponse is the API representation of an invoice.
type InvoiceResponse struct {
	DocumentResponse
	OrderID       id.ID                 `json:"orderId"`
	PartnerID     id.ID                 `json:"partnerId"`
	CompanyID     id.ID                 `json:"companyId"`
	CurrencyID    id.ID                 `json:"currencyId"`
	State         string                `json:"state"`
	TotalQuantity float64               `json:"totalQuantity"`
	TotalAmount   types.Money           `json:"totalAmount"`
	Lines         []InvoiceLineResponse `json:"lines"`
}

// FromInvoice converts a domain invoice.
func FromInvoice(inv *invoice.Invoice) *InvoiceResponse {
	lines := make([]InvoiceLineResponse, len(inv.Lines))
	for i, l := range inv.Lines {
		lines[i] = InvoiceLineResponse{
			LineID:    l.LineID,
			LineNo:    l.LineNo,
			ProductID: l.ProductID,
			Quantity:  l.Quantity.Float64(),
			UnitPrice: l.UnitPrice,
			Amount:    l.Amount,
		}
	}

	return &InvoiceResponse{
		DocumentResponse: FromDocument(inv.Document),
		OrderID:          inv.OrderID,
		PartnerID:        inv.PartnerID,
		CompanyID:        inv.CompanyID,
		CurrencyID:       inv.CurrencyID,
		State:            string(inv.State),
		TotalQuantity:    inv.TotalQuantity.Float64(),
		TotalAmount:      inv.TotalAmount,
		Lines:            lines,
	}
}
