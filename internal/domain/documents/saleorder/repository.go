package saleorder

import (
	"context"
	"time"

	"saleflow/internal/core/id"
	"saleflow/internal/domain"
)

// Repository defines operations for sale order documents.
type Repository interface {
	Create(ctx context.Context, doc *SaleOrder) error
	GetByID(ctx context.Context, docID id.ID) (*SaleOrder, error)
	GetByNumber(ctx context.Context, number string) (*SaleOrder, error)
	Update(ctx context.Context, doc *SaleOrder) error
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]SaleOrderLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []SaleOrderLine) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*SaleOrder], error)
	GetForUpdate(ctx context.Context, docID id.ID) (*SaleOrder, error)
}

// ActivityRepository stores validation activities.
type ActivityRepository interface {
	Create(ctx context.Context, activity *ValidationActivity) error
	GetByID(ctx context.Context, activityID id.ID) (*ValidationActivity, error)
	Update(ctx context.Context, activity *ValidationActivity) error

	// ListOpen returns the activities of an order that are not done yet.
	ListOpen(ctx context.Context, orderID id.ID) ([]*ValidationActivity, error)
	ListByOrder(ctx context.Context, orderID id.ID) ([]*ValidationActivity, error)
}

// ListFilter for filtering sale orders.
type ListFilter struct {
	domain.ListFilter

	PartnerID   *id.ID
	WarehouseID *id.ID
	State       *State
	ProcessID   *id.ID
	Invoiced    *bool
	DateFrom    *time.Time
	DateTo      *time.Time
}
