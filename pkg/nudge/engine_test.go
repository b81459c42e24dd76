package nudge_test

import (
	"context"
	"testing"
	"time"

	"github.com/nudgekit/core/pkg/cart"
	"github.com/nudgekit/core/pkg/catalog"
	"github.com/nudgekit/core/pkg/money"
	"github.com/nudgekit/core/pkg/nudge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingLookup simulates an unreachable catalog source.
type failingLookup struct{}

func (failingLookup) FindCheaperAlternative(ctx context.Context, item cart.Line) (catalog.Alternative, error) {
	return catalog.Alternative{}, catalog.ErrUnavailable
}

func line(slug string, cents int64, qty int64) cart.Line {
	return cart.Line{
		Slug:     slug,
		Title:    slug,
		Price:    money.New(cents, "EUR"),
		Quantity: qty,
		Category: "mugs",
	}
}

func testCatalog() *catalog.Memory {
	return catalog.NewMemory(
		catalog.Product{Slug: "mug-basic", Name: "Basic Mug", Price: money.New(3000, "EUR"), Category: "mugs"},
	)
}

func testEngine() *nudge.Engine {
	return nudge.NewEngine(testCatalog(), nudge.Thresholds{
		BlockTotalCents:      20000,
		AlternativeLineCents: 4000,
		GentleItemCount:      5,
		BlockSeconds:         15,
	})
}

func TestEvaluateEmptyCart(t *testing.T) {
	engine := testEngine()
	got := engine.Evaluate(context.Background(), nil, money.New(0, "EUR"))
	assert.True(t, got.IsNone())
}

func TestEvaluateNoThresholdMet(t *testing.T) {
	engine := testEngine()
	lines := []cart.Line{line("mug-deluxe", 1000, 1)}
	got := engine.Evaluate(context.Background(), lines, money.New(1000, "EUR"))
	assert.Equal(t, nudge.TypeNone, got.Type)
}

func TestEvaluateBlockTakesPrecedence(t *testing.T) {
	engine := testEngine()
	// Total over block threshold AND a line over the alternative
	// threshold AND more items than the gentle threshold.
	lines := []cart.Line{line("mug-deluxe", 5000, 6)}
	got := engine.Evaluate(context.Background(), lines, money.New(30000, "EUR"))
	require.Equal(t, nudge.TypeBlock, got.Type)
	require.NotNil(t, got.Block)
	assert.Equal(t, 15*time.Second, got.Block.Duration)
}

func TestEvaluateAlternativeBeatsGentle(t *testing.T) {
	engine := testEngine()
	lines := []cart.Line{line("mug-deluxe", 5000, 6)}
	got := engine.Evaluate(context.Background(), lines, money.New(5000, "EUR"))
	require.Equal(t, nudge.TypeAlternative, got.Type)
	require.NotNil(t, got.Alternative)
	assert.Equal(t, "mug-deluxe", got.Alternative.Current.Slug)
	assert.Equal(t, "mug-basic", got.Alternative.Alternative.Slug)
}

func TestEvaluateGentleOnItemCount(t *testing.T) {
	engine := testEngine()
	lines := []cart.Line{line("mug-cheap", 100, 6)}
	got := engine.Evaluate(context.Background(), lines, money.New(600, "EUR"))
	require.Equal(t, nudge.TypeGentle, got.Type)
	require.NotNil(t, got.Gentle)
	assert.Equal(t, "mug-cheap", got.Gentle.ProductTitle)
}

func TestEvaluateTargetsPriciestLine(t *testing.T) {
	engine := testEngine()
	lines := []cart.Line{
		line("mug-mid", 4500, 1),
		line("mug-deluxe", 9000, 1),
	}
	got := engine.Evaluate(context.Background(), lines, money.New(13500, "EUR"))
	require.Equal(t, nudge.TypeAlternative, got.Type)
	assert.Equal(t, "mug-deluxe", got.Alternative.Current.Slug)
}

func TestBuildGentleEmptyCartPlaceholder(t *testing.T) {
	engine := testEngine()
	got := engine.BuildGentle(nil)
	require.Equal(t, nudge.TypeGentle, got.Type)
	assert.Equal(t, "your items", got.Gentle.ProductTitle)
}

func TestBuildAlternativeCheaperExists(t *testing.T) {
	engine := testEngine()
	got, err := engine.BuildAlternative(context.Background(), line("mug-deluxe", 5000, 2))
	require.NoError(t, err)
	require.Equal(t, nudge.TypeAlternative, got.Type)
	payload := got.Alternative
	assert.False(t, payload.Alternative.AlreadyCheapest)
	assert.True(t, payload.Alternative.Price.LessThan(payload.Current.Price))
	assert.Equal(t, int64(2000), payload.Savings.Cents)
}

func TestBuildAlternativeAlreadyCheapest(t *testing.T) {
	engine := testEngine()
	got, err := engine.BuildAlternative(context.Background(), line("mug-basic", 3000, 1))
	require.NoError(t, err)
	payload := got.Alternative
	assert.True(t, payload.Alternative.AlreadyCheapest)
	assert.Equal(t, int64(3000), payload.Alternative.Price.Cents)
	assert.True(t, payload.Savings.IsZero())
}

func TestBuildAlternativeDegradesOnLookupFault(t *testing.T) {
	engine := nudge.NewEngine(failingLookup{}, nudge.DefaultThresholds())
	got, err := engine.BuildAlternative(context.Background(), line("mug-deluxe", 5000, 1))
	require.NoError(t, err)
	payload := got.Alternative
	assert.True(t, payload.Alternative.AlreadyCheapest)
	assert.Equal(t, int64(5000), payload.Alternative.Price.Cents)
}

func TestEvaluateFallsThroughOnLookupFault(t *testing.T) {
	engine := nudge.NewEngine(failingLookup{}, nudge.Thresholds{
		AlternativeLineCents: 4000,
		GentleItemCount:      5,
		BlockSeconds:         15,
	})
	// Alternative rule matches but degrades to already-cheapest, which
	// is still a valid alternative nudge.
	lines := []cart.Line{line("mug-deluxe", 5000, 1)}
	got := engine.Evaluate(context.Background(), lines, money.New(5000, "EUR"))
	assert.Equal(t, nudge.TypeAlternative, got.Type)
}

func TestBuildBlockDefaults(t *testing.T) {
	engine := testEngine()

	got := engine.BuildBlock(0)
	require.Equal(t, nudge.TypeBlock, got.Type)
	assert.Equal(t, 15*time.Second, got.Block.Duration)

	got = engine.BuildBlock(30)
	assert.Equal(t, 30*time.Second, got.Block.Duration)
}

func TestDisabledRules(t *testing.T) {
	engine := nudge.NewEngine(testCatalog(), nudge.Thresholds{})
	lines := []cart.Line{line("mug-deluxe", 900000, 99)}
	got := engine.Evaluate(context.Background(), lines, money.New(1000000, "EUR"))
	assert.True(t, got.IsNone())
}
