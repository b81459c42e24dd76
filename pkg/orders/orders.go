// Package orders persists committed checkout attempts as immutable
// order snapshots in an append-only store.
package orders

import (
	"context"
	"time"

	"github.com/nudgekit/core/pkg/cart"
	"github.com/nudgekit/core/pkg/money"
)

// Order is the snapshot produced by a successful commit.
// Immutable once created.
type Order struct {
	ID        string      `json:"id"`
	Items     []cart.Line `json:"items"`
	Total     money.Money `json:"total"`
	CreatedAt time.Time   `json:"created_at"`
	UserEmail string      `json:"user_email"`
}

// Store is the append-only order persistence contract.
type Store interface {
	AppendOrder(ctx context.Context, order Order) error
	ListOrders(ctx context.Context, limit int) ([]Order, error)
}
