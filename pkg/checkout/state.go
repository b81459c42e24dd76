// Package checkout implements the gate that interposes nudges between
// a checkout request and its commit. One attempt is processed at a
// time; all collaborators are constructor-injected interfaces.
package checkout

import (
	"errors"

	"github.com/nudgekit/core/pkg/notify"
	"github.com/nudgekit/core/pkg/nudge"
	"github.com/nudgekit/core/pkg/orders"
)

// State is the gate's position within a single checkout attempt.
type State string

const (
	StateIdle                  State = "idle"
	StateAwaitingIdentity      State = "awaiting_identity"
	StateAwaitingNudgeDecision State = "awaiting_nudge_decision"
	StateNudgeOpen             State = "nudge_open"
	StateBlocked               State = "blocked"
	StateCommitting            State = "committing"
	StateCommitted             State = "committed"
)

// Terminal reports whether the state ends an attempt.
func (s State) Terminal() bool {
	return s == StateIdle || s == StateCommitted
}

// Outcome is a shopper's response to an open nudge.
type Outcome string

const (
	OutcomeAccept Outcome = "accept"
	OutcomeReject Outcome = "reject"
)

// Valid reports whether o is a known outcome.
func (o Outcome) Valid() bool {
	return o == OutcomeAccept || o == OutcomeReject
}

var (
	// ErrIdentityMissing aborts an attempt when no authenticated user
	// is present. Recoverable and user-facing, not a system fault.
	ErrIdentityMissing = errors.New("no authenticated identity")
	// ErrAttemptInFlight rejects a second checkout request while an
	// attempt is open.
	ErrAttemptInFlight = errors.New("checkout attempt already in flight")
	// ErrOrderPersist surfaces an order-storage failure. The cart is
	// never cleared when this is returned.
	ErrOrderPersist = errors.New("order could not be persisted")
	// ErrNoNudgeOpen rejects a resolution when nothing is open.
	ErrNoNudgeOpen = errors.New("no nudge is open")
	// ErrNotBlocked rejects a block completion outside the blocked
	// state.
	ErrNotBlocked = errors.New("no block nudge is active")
	// ErrInvalidOutcome rejects an unknown or inapplicable outcome.
	ErrInvalidOutcome = errors.New("invalid nudge outcome")
)

// Result is the explicit value returned by every gate operation,
// replacing fire-and-forget UI callbacks so the machine is testable
// without a rendering layer.
type Result struct {
	State        State                `json:"state"`
	Nudge        *nudge.Nudge         `json:"nudge,omitempty"`
	Order        *orders.Order        `json:"order,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
}
