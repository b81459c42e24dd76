package orders

import (
	"context"
	"sync"

	"github.com/nudgekit/core/pkg/cart"
)

// Memory implements Store in memory.
// Thread-safe via RWMutex.
type Memory struct {
	mu     sync.RWMutex
	orders []Order
}

// NewMemory creates an empty in-memory order store.
func NewMemory() *Memory {
	return &Memory{}
}

// AppendOrder records an order snapshot.
func (s *Memory) AppendOrder(ctx context.Context, order Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := order
	snapshot.Items = append([]cart.Line(nil), order.Items...)
	s.orders = append(s.orders, snapshot)
	return nil
}

// ListOrders returns the most recent orders first, up to limit.
func (s *Memory) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.orders) {
		limit = len(s.orders)
	}
	out := make([]Order, 0, limit)
	for i := len(s.orders) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.orders[i])
	}
	return out, nil
}

var _ Store = (*Memory)(nil)
