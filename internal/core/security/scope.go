// Package security provides authorization and access control.
package security

import (
	"context"

	appctx "saleflow/internal/core/context"
	"saleflow/internal/core/apperror"
)

// AccessScope carries the identity of the current request for
// authorization decisions and consistent logging/audit context.
type AccessScope struct {
	// UserID is the authenticated user
	UserID string

	// IsAdmin grants access to administrative operations
	IsAdmin bool
}

// NewAccessScope creates AccessScope from context.
func NewAccessScope(ctx context.Context) *AccessScope {
	user := appctx.GetUser(ctx)
	if user == nil {
		return &AccessScope{}
	}

	return &AccessScope{
		UserID:  user.UserID,
		IsAdmin: user.IsAdmin,
	}
}

// RequireAdmin returns error if the scope lacks admin rights.
func (s *AccessScope) RequireAdmin() error {
	if !s.IsAdmin {
		return apperror.NewForbidden("administrator rights required")
	}
	return nil
}

// --- Context-based scope access ---

type scopeKey struct{}

// WithScope adds AccessScope to context.
func WithScope(ctx context.Context, scope *AccessScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// GetScope returns AccessScope from context.
func GetScope(ctx context.Context) *AccessScope {
	if v, ok := ctx.Value(scopeKey{}).(*AccessScope); ok {
		return v
	}
	return NewAccessScope(ctx)
}
