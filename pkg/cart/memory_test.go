package cart_test

import (
	"context"
	"testing"

	"github.com/nudgekit/core/pkg/cart"
	"github.com/nudgekit/core/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(slug string, cents int64, qty int64) cart.Line {
	return cart.Line{
		Slug:     slug,
		Title:    slug,
		Price:    money.New(cents, "EUR"),
		Quantity: qty,
		Category: "misc",
	}
}

func TestAddItemAccumulatesBySlug(t *testing.T) {
	c := cart.NewMemory()
	ctx := context.Background()

	require.NoError(t, c.AddItem(ctx, line("mug", 1000, 1)))
	require.NoError(t, c.AddItem(ctx, line("mug", 1000, 2)))

	items, err := c.Items(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].Quantity)
}

func TestAddItemRejectsInvalidQuantity(t *testing.T) {
	c := cart.NewMemory()
	err := c.AddItem(context.Background(), line("mug", 1000, 0))
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
}

func TestUpdateQuantity(t *testing.T) {
	c := cart.NewMemory()
	ctx := context.Background()
	require.NoError(t, c.AddItem(ctx, line("mug", 1000, 1)))

	require.NoError(t, c.UpdateQuantity(ctx, "mug", 5))
	items, _ := c.Items(ctx)
	assert.Equal(t, int64(5), items[0].Quantity)

	assert.ErrorIs(t, c.UpdateQuantity(ctx, "mug", 0), cart.ErrInvalidQuantity)
	assert.ErrorIs(t, c.UpdateQuantity(ctx, "ghost", 2), cart.ErrNotFound)
}

func TestRemoveItem(t *testing.T) {
	c := cart.NewMemory()
	ctx := context.Background()
	require.NoError(t, c.AddItem(ctx, line("mug", 1000, 1)))
	require.NoError(t, c.AddItem(ctx, line("hat", 2000, 1)))

	require.NoError(t, c.RemoveItem(ctx, "mug"))
	items, _ := c.Items(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, "hat", items[0].Slug)

	assert.ErrorIs(t, c.RemoveItem(ctx, "mug"), cart.ErrNotFound)
}

func TestTotalTracksMutations(t *testing.T) {
	c := cart.NewMemory()
	ctx := context.Background()
	require.NoError(t, c.AddItem(ctx, line("mug", 1000, 2)))
	require.NoError(t, c.AddItem(ctx, line("hat", 2500, 1)))

	total, err := c.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4500), total.Cents)

	require.NoError(t, c.UpdateQuantity(ctx, "mug", 1))
	total, err = c.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3500), total.Cents)

	require.NoError(t, c.Clear(ctx))
	total, err = c.Total(ctx)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}
