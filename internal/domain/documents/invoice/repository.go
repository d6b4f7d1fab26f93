package invoice

import (
	"context"
	"time"

	"saleflow/internal/core/id"
	"saleflow/internal/domain"
)

// Repository defines operations for invoice documents.
type Repository interface {
	Create(ctx context.Context, doc *Invoice) error
	GetByID(ctx context.Context, docID id.ID) (*Invoice, error)
	GetByOrder(ctx context.Context, orderID id.ID) (*Invoice, error)
	Update(ctx context.Context, doc *Invoice) error

	GetLines(ctx context.Context, docID id.ID) ([]InvoiceLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []InvoiceLine) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error)
	GetForUpdate(ctx context.Context, docID id.ID) (*Invoice, error)
}

// ListFilter for filtering invoices.
type ListFilter struct {
	domain.ListFilter

	PartnerID *id.ID
	OrderID   *id.ID
	State     *State
	DateFrom  *time.Time
	DateTo    *time.Time
}
