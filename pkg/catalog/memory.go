package catalog

import (
	"context"
	"sync"

	"github.com/nudgekit/core/pkg/cart"
)

// Memory implements Lookup over an in-memory product list.
// Thread-safe via RWMutex.
type Memory struct {
	mu       sync.RWMutex
	products []Product
}

// NewMemory creates a lookup over the given products.
func NewMemory(products ...Product) *Memory {
	m := &Memory{}
	m.products = append(m.products, products...)
	return m
}

// Add registers additional products.
func (m *Memory) Add(products ...Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = append(m.products, products...)
}

// FindCheaperAlternative scans the item's category for the cheapest
// strictly cheaper product.
func (m *Memory) FindCheaperAlternative(ctx context.Context, item cart.Line) (Alternative, error) {
	if err := ctx.Err(); err != nil {
		return Alternative{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best *Product
	for i := range m.products {
		p := m.products[i]
		if p.Category != item.Category || p.Slug == item.Slug {
			continue
		}
		if !p.Price.LessThan(item.Price) {
			continue
		}
		if best == nil || p.Price.LessThan(best.Price) {
			best = &m.products[i]
		}
	}
	if best == nil {
		return echo(item), nil
	}
	return Alternative{Product: *best}, nil
}

var _ Lookup = (*Memory)(nil)
