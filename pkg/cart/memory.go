package cart

import (
	"context"
	"sync"

	"github.com/nudgekit/core/pkg/money"
)

// Memory implements Cart in memory.
// Thread-safe via RWMutex; all reads return copies.
type Memory struct {
	mu    sync.RWMutex
	lines []Line
}

// NewMemory creates an empty in-memory cart.
func NewMemory() *Memory {
	return &Memory{}
}

// Items returns a copy of the current lines.
func (c *Memory) Items(ctx context.Context) ([]Line, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out, nil
}

// AddItem appends a line, or accumulates quantity when the slug exists.
func (c *Memory) AddItem(ctx context.Context, line Line) error {
	if line.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if line.Price.IsNegative() {
		return ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].Slug == line.Slug {
			c.lines[i].Quantity += line.Quantity
			return nil
		}
	}
	c.lines = append(c.lines, line)
	return nil
}

// RemoveItem deletes the line with the given slug.
func (c *Memory) RemoveItem(ctx context.Context, slug string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].Slug == slug {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// UpdateQuantity replaces the quantity for an existing line.
func (c *Memory) UpdateQuantity(ctx context.Context, slug string, qty int64) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].Slug == slug {
			c.lines[i].Quantity = qty
			return nil
		}
	}
	return ErrNotFound
}

// Clear removes all lines.
func (c *Memory) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	return nil
}

// Total sums price times quantity over current lines.
func (c *Memory) Total(ctx context.Context) (money.Money, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := money.New(0, money.DefaultCurrency)
	for _, line := range c.lines {
		sum, err := total.Add(line.Subtotal())
		if err != nil {
			return money.Money{}, err
		}
		total = sum
	}
	return total, nil
}

var _ Cart = (*Memory)(nil)
