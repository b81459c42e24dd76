// Package identity resolves the authenticated user for a checkout
// attempt. Absence of identity is a recoverable condition, not a fault:
// providers return a nil user for anonymous callers.
package identity

import (
	"context"
)

// User is the authenticated shopper.
type User struct {
	Email string `json:"email"`
}

// Provider resolves the current user. A nil user with a nil error means
// no authenticated identity is present.
type Provider interface {
	CurrentUser(ctx context.Context) (*User, error)
}

// Static always returns the configured user (possibly nil).
// Used in tests and single-user local setups.
type Static struct {
	User *User
}

// NewStatic creates a provider fixed to the given user.
func NewStatic(user *User) *Static {
	return &Static{User: user}
}

// CurrentUser returns the configured user.
func (s *Static) CurrentUser(ctx context.Context) (*User, error) {
	if s == nil {
		return nil, nil
	}
	return s.User, nil
}

var _ Provider = (*Static)(nil)
