package nudge

import (
	"context"
	"errors"
	"time"

	"github.com/nudgekit/core/pkg/cart"
	"github.com/nudgekit/core/pkg/catalog"
	"github.com/nudgekit/core/pkg/money"
)

// DefaultBlockSeconds is the cooldown applied when a block nudge is
// built without an explicit duration.
const DefaultBlockSeconds = 15

// emptyCartTitle is the gentle payload fallback for an empty cart.
const emptyCartTitle = "your items"

// Thresholds are the named policy parameters driving Evaluate.
// A zero or negative value disables the corresponding rule.
type Thresholds struct {
	// BlockTotalCents triggers a block nudge when the cart total
	// strictly exceeds it.
	BlockTotalCents int64
	// AlternativeLineCents triggers an alternative nudge when any
	// single line's unit price strictly exceeds it.
	AlternativeLineCents int64
	// GentleItemCount triggers a gentle nudge when the summed item
	// quantity strictly exceeds it.
	GentleItemCount int64
	// BlockSeconds is the cooldown used for threshold-driven blocks.
	BlockSeconds int
}

// DefaultThresholds returns the stock policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BlockTotalCents:      20000,
		AlternativeLineCents: 4000,
		GentleItemCount:      5,
		BlockSeconds:         DefaultBlockSeconds,
	}
}

// Engine produces nudge decisions. The catalog lookup is its only
// external dependency.
type Engine struct {
	lookup     catalog.Lookup
	thresholds Thresholds
}

// NewEngine creates an engine with the given lookup and thresholds.
func NewEngine(lookup catalog.Lookup, thresholds Thresholds) *Engine {
	return &Engine{lookup: lookup, thresholds: thresholds}
}

// Thresholds returns the active policy parameters.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Evaluate applies the automatic policy to the current cart. Precedence
// when multiple rules match is fixed: block > alternative > gentle.
// The alternative rule targets the priciest qualifying line; the
// catalog lookup inside BuildAlternative is the only suspending call.
func (e *Engine) Evaluate(ctx context.Context, lines []cart.Line, total money.Money) Nudge {
	if len(lines) == 0 {
		return None()
	}

	if e.thresholds.BlockTotalCents > 0 && total.Cents > e.thresholds.BlockTotalCents {
		return e.BuildBlock(e.thresholds.BlockSeconds)
	}

	if e.thresholds.AlternativeLineCents > 0 {
		if line, ok := priciestAbove(lines, e.thresholds.AlternativeLineCents); ok {
			built, err := e.BuildAlternative(ctx, line)
			if err == nil {
				return built
			}
			// Lookup faults never block checkout; fall through to the
			// next rule rather than surfacing a broken nudge.
		}
	}

	if e.thresholds.GentleItemCount > 0 && itemCount(lines) > e.thresholds.GentleItemCount {
		return e.BuildGentle(lines)
	}

	return None()
}

// BuildGentle constructs a gentle nudge from the first cart line.
// Never fails; an empty cart yields a generic placeholder title.
func (e *Engine) BuildGentle(lines []cart.Line) Nudge {
	title := emptyCartTitle
	if len(lines) > 0 && lines[0].Title != "" {
		title = lines[0].Title
	}
	return Nudge{
		Type:   TypeGentle,
		Gentle: &GentlePayload{ProductTitle: title},
	}
}

// BuildAlternative constructs an alternative nudge for the given line,
// consulting the catalog for the cheapest in-category substitute. A
// lookup fault degrades to the already-cheapest branch; any other error
// is returned as-is.
func (e *Engine) BuildAlternative(ctx context.Context, line cart.Line) (Nudge, error) {
	alt, err := e.lookup.FindCheaperAlternative(ctx, line)
	if err != nil {
		if !errors.Is(err, catalog.ErrUnavailable) {
			return Nudge{}, err
		}
		// Fail safe: pretend the item is already cheapest.
		alt = catalog.Alternative{
			Product: catalog.Product{
				Slug:     line.Slug,
				Name:     line.Title,
				Price:    line.Price,
				Image:    line.Image,
				Category: line.Category,
			},
			AlreadyCheapest: true,
		}
	}

	savings, serr := line.Price.Sub(alt.Price)
	if serr != nil {
		savings = money.New(0, line.Price.Currency)
	}
	return Nudge{
		Type: TypeAlternative,
		Alternative: &AlternativePayload{
			Current:     line,
			Alternative: alt,
			Savings:     savings,
		},
	}, nil
}

// BuildBlock constructs a block nudge with the given cooldown in
// seconds. Non-positive durations fall back to the default.
func (e *Engine) BuildBlock(seconds int) Nudge {
	if seconds <= 0 {
		seconds = DefaultBlockSeconds
	}
	return Nudge{
		Type:  TypeBlock,
		Block: &BlockPayload{Duration: time.Duration(seconds) * time.Second},
	}
}

func priciestAbove(lines []cart.Line, cents int64) (cart.Line, bool) {
	var (
		best  cart.Line
		found bool
	)
	for _, line := range lines {
		if line.Price.Cents <= cents {
			continue
		}
		if !found || best.Price.LessThan(line.Price) {
			best = line
			found = true
		}
	}
	return best, found
}

func itemCount(lines []cart.Line) int64 {
	var count int64
	for _, line := range lines {
		count += line.Quantity
	}
	return count
}
