// Package nudge decides whether a behavioral intervention must be shown
// before a checkout commits, and which variant applies. Decisions are
// deterministic given the configured thresholds; enforcement stays with
// the checkout gate.
package nudge

import (
	"time"

	"github.com/nudgekit/core/pkg/cart"
	"github.com/nudgekit/core/pkg/catalog"
	"github.com/nudgekit/core/pkg/money"
)

// Type enumerates nudge variants. TypeNone means no intervention is
// required.
type Type string

const (
	TypeNone        Type = "none"
	TypeGentle      Type = "gentle"
	TypeAlternative Type = "alternative"
	TypeBlock       Type = "block"
)

// Valid reports whether t is a known variant.
func (t Type) Valid() bool {
	switch t {
	case TypeNone, TypeGentle, TypeAlternative, TypeBlock:
		return true
	}
	return false
}

// GentlePayload carries the informational prompt content.
type GentlePayload struct {
	ProductTitle string `json:"product_title"`
}

// AlternativePayload carries both the current line and the looked-up
// alternative. Savings is the per-unit price delta (current minus
// alternative); zero when the item is already cheapest.
type AlternativePayload struct {
	Current     cart.Line           `json:"current"`
	Alternative catalog.Alternative `json:"alternative"`
	Savings     money.Money         `json:"savings"`
}

// BlockPayload carries the mandatory cooldown duration.
type BlockPayload struct {
	Duration time.Duration `json:"duration"`
}

// Nudge is the transient decision value surfaced to the presentation
// layer and consumed by the checkout gate. Exactly the payload matching
// Type is set; a TypeNone nudge carries no payload.
type Nudge struct {
	Type        Type                `json:"type"`
	Gentle      *GentlePayload      `json:"gentle,omitempty"`
	Alternative *AlternativePayload `json:"alternative,omitempty"`
	Block       *BlockPayload       `json:"block,omitempty"`
}

// None is the no-intervention decision.
func None() Nudge {
	return Nudge{Type: TypeNone}
}

// IsNone reports whether no intervention is required.
func (n Nudge) IsNone() bool {
	return n.Type == TypeNone
}
