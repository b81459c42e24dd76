// Package cart defines the cart collaborator contract consumed by the
// checkout core. Lines are unique by slug; quantities below 1 are
// rejected at this boundary and never reach the gate.
package cart

import (
	"context"
	"errors"

	"github.com/nudgekit/core/pkg/money"
)

var (
	// ErrInvalidQuantity indicates a quantity below 1.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrNotFound indicates no line exists for the given slug.
	ErrNotFound = errors.New("cart line not found")
)

// Line is one cart entry. Price is per unit.
type Line struct {
	Slug     string      `json:"slug"`
	Title    string      `json:"title"`
	Price    money.Money `json:"price"`
	Quantity int64       `json:"quantity"`
	Image    string      `json:"image"`
	Category string      `json:"category"`
}

// Subtotal returns price times quantity for this line.
func (l Line) Subtotal() money.Money {
	return l.Price.Mul(l.Quantity)
}

// Cart is the externally owned cart the core reads and, on an accepted
// alternative nudge, mutates through. Implementations must serialize
// mutations so Total never observes a half-applied change.
type Cart interface {
	Items(ctx context.Context) ([]Line, error)
	AddItem(ctx context.Context, line Line) error
	RemoveItem(ctx context.Context, slug string) error
	UpdateQuantity(ctx context.Context, slug string, qty int64) error
	Clear(ctx context.Context) error
	// Total is computed from current lines on every call, never cached.
	Total(ctx context.Context) (money.Money, error)
}
