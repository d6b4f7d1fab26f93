package invoice

import (
	"context"
	"time"

	"saleflow/internal/core/apperror"
)

// PostingPolicy guards invoice validation against closed accounting
// periods.
type PostingPolicy interface {
	// CanValidate checks whether an invoice dated docDate may be
	// validated.
	CanValidate(ctx context.Context, docDate time.Time) error

	// ClosedUntil returns the date before which the period is closed.
	ClosedUntil(ctx context.Context) time.Time
}

// StrictPolicy forbids validating invoices into a closed period.
type StrictPolicy struct {
	closedUntil time.Time
}

// NewStrictPolicy creates a policy that rejects dates before closedUntil.
func NewStrictPolicy(closedUntil time.Time) *StrictPolicy {
	return &StrictPolicy{closedUntil: closedUntil}
}

func (p *StrictPolicy) CanValidate(ctx context.Context, docDate time.Time) error {
	if docDate.Before(p.closedUntil) {
		return apperror.NewPeriodClosed(p.closedUntil.Format("2006-01"))
	}
	return nil
}

func (p *StrictPolicy) ClosedUntil(ctx context.Context) time.Time {
	return p.closedUntil
}

// OpenPolicy allows all dates (development and testing).
type OpenPolicy struct{}

func (OpenPolicy) CanValidate(ctx context.Context, docDate time.Time) error { return nil }
func (OpenPolicy) ClosedUntil(ctx context.Context) time.Time                { return time.Time{} }
