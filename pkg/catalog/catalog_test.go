package catalog_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/nudgekit/core/pkg/cart"
	"github.com/nudgekit/core/pkg/catalog"
	"github.com/nudgekit/core/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func item(slug, category string, cents int64) cart.Line {
	return cart.Line{
		Slug:     slug,
		Title:    slug,
		Price:    money.New(cents, "EUR"),
		Quantity: 1,
		Category: category,
	}
}

func mugs() []catalog.Product {
	return []catalog.Product{
		{Slug: "mug-deluxe", Name: "Deluxe Mug", Price: money.New(5000, "EUR"), Category: "mugs"},
		{Slug: "mug-basic", Name: "Basic Mug", Price: money.New(3000, "EUR"), Category: "mugs"},
		{Slug: "mug-mid", Name: "Mid Mug", Price: money.New(4000, "EUR"), Category: "mugs"},
		{Slug: "hat-only", Name: "Only Hat", Price: money.New(9000, "EUR"), Category: "hats"},
	}
}

func TestMemoryFindsCheapestInCategory(t *testing.T) {
	lookup := catalog.NewMemory(mugs()...)

	alt, err := lookup.FindCheaperAlternative(context.Background(), item("mug-deluxe", "mugs", 5000))
	require.NoError(t, err)
	assert.False(t, alt.AlreadyCheapest)
	assert.Equal(t, "mug-basic", alt.Slug)
	assert.True(t, alt.Price.LessThan(money.New(5000, "EUR")))
}

func TestMemoryAlreadyCheapest(t *testing.T) {
	lookup := catalog.NewMemory(mugs()...)

	alt, err := lookup.FindCheaperAlternative(context.Background(), item("mug-basic", "mugs", 3000))
	require.NoError(t, err)
	assert.True(t, alt.AlreadyCheapest)
	assert.Equal(t, int64(3000), alt.Price.Cents)
	assert.Equal(t, "mug-basic", alt.Slug)
}

func TestMemoryUnknownCategoryIsConservative(t *testing.T) {
	lookup := catalog.NewMemory(mugs()...)

	alt, err := lookup.FindCheaperAlternative(context.Background(), item("widget", "widgets", 700))
	require.NoError(t, err)
	assert.True(t, alt.AlreadyCheapest)
	assert.Equal(t, int64(700), alt.Price.Cents)
}

func openSQLite(t *testing.T) *catalog.SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := catalog.NewSQLiteStore(db)
	require.NoError(t, err)
	require.NoError(t, store.Seed(context.Background(), mugs()))
	return store
}

func TestSQLiteFindsCheapestInCategory(t *testing.T) {
	store := openSQLite(t)

	alt, err := store.FindCheaperAlternative(context.Background(), item("mug-deluxe", "mugs", 5000))
	require.NoError(t, err)
	assert.False(t, alt.AlreadyCheapest)
	assert.Equal(t, "mug-basic", alt.Slug)
	assert.Equal(t, int64(3000), alt.Price.Cents)
}

func TestSQLiteAlreadyCheapest(t *testing.T) {
	store := openSQLite(t)

	alt, err := store.FindCheaperAlternative(context.Background(), item("mug-basic", "mugs", 3000))
	require.NoError(t, err)
	assert.True(t, alt.AlreadyCheapest)
	assert.Equal(t, int64(3000), alt.Price.Cents)
}

func TestSQLiteUnknownCategory(t *testing.T) {
	store := openSQLite(t)

	alt, err := store.FindCheaperAlternative(context.Background(), item("widget", "widgets", 700))
	require.NoError(t, err)
	assert.True(t, alt.AlreadyCheapest)
}

func TestSQLiteSeedUpserts(t *testing.T) {
	store := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, store.Seed(ctx, []catalog.Product{
		{Slug: "mug-basic", Name: "Basic Mug", Price: money.New(2500, "EUR"), Category: "mugs"},
	}))

	alt, err := store.FindCheaperAlternative(ctx, item("mug-mid", "mugs", 4000))
	require.NoError(t, err)
	assert.Equal(t, int64(2500), alt.Price.Cents)
}
