//go:build property
// +build property

// Property-based tests for decision-engine precedence.
package nudge_test

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/nudgekit/core/pkg/cart"
	"github.com/nudgekit/core/pkg/money"
	"github.com/nudgekit/core/pkg/nudge"
)

// TestBlockPrecedenceProperty verifies that any cart whose total
// exceeds the block threshold evaluates to a block nudge regardless of
// what other rules would match.
func TestBlockPrecedenceProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	thresholds := nudge.DefaultThresholds()
	engine := nudge.NewEngine(failingLookup{}, thresholds)

	properties.Property("totals above the block threshold always block", prop.ForAll(
		func(excess int64, qty int64) bool {
			total := thresholds.BlockTotalCents + 1 + excess
			lines := []cart.Line{{
				Slug:     "item",
				Title:    "Item",
				Price:    money.New(total, "EUR"),
				Quantity: qty,
				Category: "misc",
			}}
			got := engine.Evaluate(context.Background(), lines, money.New(total, "EUR"))
			return got.Type == nudge.TypeBlock
		},
		gen.Int64Range(0, 1_000_000),
		gen.Int64Range(1, 100),
	))

	properties.Property("totals at or below the threshold never block", prop.ForAll(
		func(total int64) bool {
			lines := []cart.Line{{
				Slug:     "item",
				Title:    "Item",
				Price:    money.New(total, "EUR"),
				Quantity: 1,
				Category: "misc",
			}}
			got := engine.Evaluate(context.Background(), lines, money.New(total, "EUR"))
			return got.Type != nudge.TypeBlock
		},
		gen.Int64Range(0, nudge.DefaultThresholds().BlockTotalCents),
	))

	properties.TestingRun(t)
}
