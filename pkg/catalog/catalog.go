// Package catalog provides the cheaper-alternative lookup used by the
// nudge decision engine. The lookup is a deterministic catalog query;
// on any source fault callers must degrade to "already cheapest" and
// never block checkout.
package catalog

import (
	"context"
	"errors"

	"github.com/nudgekit/core/pkg/cart"
	"github.com/nudgekit/core/pkg/money"
)

// ErrUnavailable indicates the lookup source cannot be reached.
// Callers must treat this identically to AlreadyCheapest=true.
var ErrUnavailable = errors.New("catalog lookup unavailable")

// Product is one catalog entry.
type Product struct {
	Slug     string      `json:"slug"`
	Name     string      `json:"name"`
	Price    money.Money `json:"price"`
	Image    string      `json:"image"`
	Category string      `json:"category"`
}

// Alternative is the result of a cheaper-alternative lookup.
// When AlreadyCheapest is true the embedded product echoes the queried
// item and no cheaper same-category product exists.
type Alternative struct {
	Product
	AlreadyCheapest bool `json:"already_cheapest"`
}

// Lookup finds the cheapest in-category alternative for a cart line.
type Lookup interface {
	// FindCheaperAlternative returns a strictly cheaper same-category
	// product, or the input's own details with AlreadyCheapest=true.
	// An unknown category yields the conservative already-cheapest
	// default; a fabricated alternative is never returned.
	FindCheaperAlternative(ctx context.Context, item cart.Line) (Alternative, error)
}

// echo builds the conservative already-cheapest result for an item.
func echo(item cart.Line) Alternative {
	return Alternative{
		Product: Product{
			Slug:     item.Slug,
			Name:     item.Title,
			Price:    item.Price,
			Image:    item.Image,
			Category: item.Category,
		},
		AlreadyCheapest: true,
	}
}
