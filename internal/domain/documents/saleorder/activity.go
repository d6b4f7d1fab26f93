package saleorder

import (
	"context"
	"time"

	"saleflow/internal/core/apperror"
	"saleflow/internal/core/id"
)

// ValidationActivity is a manual check that must be completed before an
// order can be confirmed.
type ValidationActivity struct {
	ID      id.ID `db:"id" json:"id"`
	OrderID id.ID `db:"order_id" json:"orderId"`

	// Title describes the check ("verify credit limit", ...)
	Title string `db:"title" json:"title"`

	// Note is free-form detail added when the activity is completed
	Note string `db:"note" json:"note,omitempty"`

	Done   bool       `db:"done" json:"done"`
	DoneAt *time.Time `db:"done_at" json:"doneAt,omitempty"`
	DoneBy string     `db:"done_by" json:"doneBy,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewValidationActivity creates an open activity for an order.
func NewValidationActivity(orderID id.ID, title string) *ValidationActivity {
	return &ValidationActivity{
		ID:        id.New(),
		OrderID:   orderID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks activity invariants.
func (a *ValidationActivity) Validate(ctx context.Context) error {
	if id.IsNil(a.OrderID) {
		return apperror.NewValidation("order is required").
			WithDetail("field", "orderId")
	}
	if a.Title == "" {
		return apperror.NewValidation("title is required").
			WithDetail("field", "title")
	}
	return nil
}

// Complete marks the activity as done.
func (a *ValidationActivity) Complete(doneBy, note string) {
	now := time.Now().UTC()
	a.Done = true
	a.DoneAt = &now
	a.DoneBy = doneBy
	if note != "" {
		a.Note = note
	}
}
