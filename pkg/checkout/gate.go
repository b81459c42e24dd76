package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nudgekit/core/pkg/cart"
	"github.com/nudgekit/core/pkg/identity"
	"github.com/nudgekit/core/pkg/notify"
	"github.com/nudgekit/core/pkg/nudge"
	"github.com/nudgekit/core/pkg/orders"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Gate orchestrates identity check, nudge decision, nudge resolution
// and commit for one checkout attempt at a time. A mutex serializes
// attempts: a second request while a nudge is open is rejected, never
// evaluated in parallel.
type Gate struct {
	mu       sync.Mutex
	cart     cart.Cart
	users    identity.Provider
	store    orders.Store
	engine   *nudge.Engine
	recorder nudge.Recorder
	notifier notify.Notifier
	logger   *slog.Logger
	tracer   trace.Tracer

	nudgesShown     metric.Int64Counter
	ordersCommitted metric.Int64Counter

	// Per-attempt state, reset on commit or abandonment.
	state      State
	attemptID  string
	userEmail  string
	canProceed bool
	open       *nudge.Nudge
}

// Option configures optional gate collaborators.
type Option func(*Gate)

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) { g.logger = logger }
}

// WithTracer enables tracing of gate operations.
func WithTracer(tracer trace.Tracer) Option {
	return func(g *Gate) { g.tracer = tracer }
}

// WithMeter registers checkout counters on the given meter.
func WithMeter(meter metric.Meter) Option {
	return func(g *Gate) {
		g.nudgesShown, _ = meter.Int64Counter("checkout.nudges_shown")
		g.ordersCommitted, _ = meter.Int64Counter("checkout.orders_committed")
	}
}

// NewGate wires the gate with its collaborators.
func NewGate(
	c cart.Cart,
	users identity.Provider,
	store orders.Store,
	engine *nudge.Engine,
	recorder nudge.Recorder,
	notifier notify.Notifier,
	opts ...Option,
) *Gate {
	g := &Gate{
		cart:     c,
		users:    users,
		store:    store,
		engine:   engine,
		recorder: recorder,
		notifier: notifier,
		logger:   slog.Default(),
		tracer:   noop.NewTracerProvider().Tracer("checkout"),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// State returns the current gate state for UI binding.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// CurrentNudge returns the open nudge, if any.
func (g *Gate) CurrentNudge() *nudge.Nudge {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.openCopy()
}

// RequestCheckout starts a checkout attempt: identity check, then nudge
// decision, then either commit or a surfaced nudge awaiting resolution.
func (g *Gate) RequestCheckout(ctx context.Context) (Result, error) {
	ctx, span := g.tracer.Start(ctx, "checkout.request")
	defer span.End()

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.state.Terminal() {
		return Result{State: g.state, Nudge: g.openCopy()}, ErrAttemptInFlight
	}

	g.attemptID = uuid.New().String()
	g.open = nil
	g.userEmail = ""
	g.state = StateAwaitingIdentity
	span.SetAttributes(attribute.String("checkout.attempt_id", g.attemptID))

	items, err := g.cart.Items(ctx)
	if err != nil {
		return g.reset(), fmt.Errorf("read cart: %w", err)
	}
	if len(items) == 0 {
		return g.warn(ctx, "Your cart is empty."), nil
	}

	user, err := g.users.CurrentUser(ctx)
	if err != nil {
		return g.reset(), fmt.Errorf("resolve identity: %w", err)
	}
	if user == nil {
		result := g.warn(ctx, "Please sign in before checking out.")
		return result, ErrIdentityMissing
	}
	g.userEmail = user.Email

	if g.canProceed {
		return g.commit(ctx)
	}

	g.state = StateAwaitingNudgeDecision
	total, err := g.cart.Total(ctx)
	if err != nil {
		return g.reset(), fmt.Errorf("compute total: %w", err)
	}

	decision := g.engine.Evaluate(ctx, items, total)
	if decision.IsNone() {
		return g.commit(ctx)
	}

	g.open = &decision
	if decision.Type == nudge.TypeBlock {
		g.state = StateBlocked
	} else {
		g.state = StateNudgeOpen
	}
	if g.nudgesShown != nil {
		g.nudgesShown.Add(ctx, 1, metric.WithAttributes(attribute.String("nudge.type", string(decision.Type))))
	}
	g.logger.InfoContext(ctx, "nudge opened",
		"attempt_id", g.attemptID, "nudge_type", decision.Type)
	return Result{State: g.state, Nudge: g.openCopy()}, nil
}

// openCopy returns a copy of the open nudge. Caller holds the mutex.
func (g *Gate) openCopy() *nudge.Nudge {
	if g.open == nil {
		return nil
	}
	copied := *g.open
	return &copied
}

// ResolveNudge applies the shopper's response to the open nudge and
// returns the resulting transition. A resolved nudge is cleared and
// never re-shown within the attempt.
func (g *Gate) ResolveNudge(ctx context.Context, outcome Outcome) (Result, error) {
	ctx, span := g.tracer.Start(ctx, "checkout.resolve")
	defer span.End()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.open == nil {
		return Result{State: g.state}, ErrNoNudgeOpen
	}
	if !outcome.Valid() {
		return Result{State: g.state}, ErrInvalidOutcome
	}

	open := *g.open
	if open.Type == nudge.TypeBlock && outcome == OutcomeAccept {
		// A block nudge resolves through CompleteBlock, not accept.
		return Result{State: g.state}, ErrInvalidOutcome
	}

	span.SetAttributes(
		attribute.String("nudge.type", string(open.Type)),
		attribute.String("nudge.outcome", string(outcome)),
	)
	g.recorder.Record(ctx, open.Type, outcome == OutcomeAccept)
	g.open = nil

	// Defensive reset: the cart may have emptied while the nudge was
	// open.
	items, err := g.cart.Items(ctx)
	if err != nil {
		return g.reset(), fmt.Errorf("read cart: %w", err)
	}
	if len(items) == 0 {
		return g.warn(ctx, "Your cart is empty."), nil
	}

	switch open.Type {
	case nudge.TypeGentle:
		if outcome == OutcomeAccept {
			// Shopper chose to reconsider; the attempt is abandoned.
			return g.reset(), nil
		}
		g.canProceed = true
		return g.commit(ctx)

	case nudge.TypeBlock:
		// Reject means "proceed anyway".
		g.canProceed = true
		return g.commit(ctx)

	case nudge.TypeAlternative:
		if outcome == OutcomeReject {
			// Shopper keeps the original item; the resolved nudge is
			// not re-shown, so the attempt proceeds to commit.
			return g.commit(ctx)
		}
		return g.acceptAlternative(ctx, open)
	}

	return Result{State: g.state}, ErrInvalidOutcome
}

// CompleteBlock finishes the block nudge's cooldown. It is the only
// path out of the blocked state and sets the one-shot bypass so no
// second nudge evaluation occurs for this attempt.
func (g *Gate) CompleteBlock(ctx context.Context) (Result, error) {
	ctx, span := g.tracer.Start(ctx, "checkout.complete_block")
	defer span.End()

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateBlocked || g.open == nil {
		return Result{State: g.state}, ErrNotBlocked
	}

	g.recorder.Record(ctx, nudge.TypeBlock, true)
	g.open = nil
	g.canProceed = true
	return g.commit(ctx)
}

// AbandonAttempt closes any open nudge without resolving it and resets
// the attempt. The cart is left untouched and no order is persisted.
func (g *Gate) AbandonAttempt() Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reset()
}

// commit builds the order snapshot, persists it and clears the cart.
// Caller holds the mutex. Effectively atomic for the caller: on a
// persist failure the cart is left untouched and no order exists.
func (g *Gate) commit(ctx context.Context) (Result, error) {
	g.state = StateCommitting

	items, err := g.cart.Items(ctx)
	if err != nil {
		return g.reset(), fmt.Errorf("read cart: %w", err)
	}
	if len(items) == 0 {
		return g.warn(ctx, "Your cart is empty."), nil
	}
	total, err := g.cart.Total(ctx)
	if err != nil {
		return g.reset(), fmt.Errorf("compute total: %w", err)
	}

	order := orders.Order{
		ID:        uuid.New().String(),
		Items:     items,
		Total:     total,
		CreatedAt: time.Now().UTC(),
		UserEmail: g.userEmail,
	}

	if err := g.store.AppendOrder(ctx, order); err != nil {
		g.logger.ErrorContext(ctx, "persist order",
			"attempt_id", g.attemptID, "error", err)
		notification := notify.Notification{
			Kind:    notify.KindError,
			Message: "We could not record your order. Your cart is unchanged.",
		}
		g.notifier.Notify(ctx, notification)
		result := g.reset()
		result.Notification = &notification
		return result, fmt.Errorf("%w: %v", ErrOrderPersist, err)
	}

	if err := g.cart.Clear(ctx); err != nil {
		// The order is recorded; an unclearable cart is logged rather
		// than surfaced as a failed checkout.
		g.logger.WarnContext(ctx, "clear cart after commit",
			"attempt_id", g.attemptID, "error", err)
	}

	if g.ordersCommitted != nil {
		g.ordersCommitted.Add(ctx, 1)
	}
	g.logger.InfoContext(ctx, "order committed",
		"attempt_id", g.attemptID, "order_id", order.ID, "total", order.Total.String())

	g.canProceed = false
	g.open = nil
	g.state = StateCommitted

	notification := notify.Notification{
		Kind:    notify.KindSuccess,
		Message: fmt.Sprintf("Order placed. Total %s.", order.Total),
	}
	g.notifier.Notify(ctx, notification)

	return Result{State: StateCommitted, Order: &order, Notification: &notification}, nil
}

// acceptAlternative applies the cart mutation for an accepted
// alternative nudge. Caller holds the mutex.
func (g *Gate) acceptAlternative(ctx context.Context, open nudge.Nudge) (Result, error) {
	payload := open.Alternative
	if payload == nil {
		return g.reset(), ErrInvalidOutcome
	}
	current := payload.Current

	if err := g.cart.RemoveItem(ctx, current.Slug); err != nil {
		return g.reset(), fmt.Errorf("remove original line: %w", err)
	}

	saved := current.Price.Mul(current.Quantity)
	if !payload.Alternative.AlreadyCheapest {
		replacement := cart.Line{
			Slug:     payload.Alternative.Slug,
			Title:    payload.Alternative.Name,
			Price:    payload.Alternative.Price,
			Quantity: current.Quantity,
			Image:    payload.Alternative.Image,
			Category: payload.Alternative.Category,
		}
		if err := g.cart.AddItem(ctx, replacement); err != nil {
			// Restore the original line so the cart is not left in a
			// half-mutated state.
			_ = g.cart.AddItem(ctx, current)
			return g.reset(), fmt.Errorf("add alternative line: %w", err)
		}
		saved = payload.Savings.Mul(current.Quantity)
	}

	notification := notify.Notification{
		Kind:    notify.KindSuccess,
		Message: fmt.Sprintf("You saved %s.", saved),
	}
	g.notifier.Notify(ctx, notification)

	// The attempt ends; the shopper may re-initiate checkout manually.
	result := g.reset()
	result.Notification = &notification
	return result, nil
}

// warn resets the attempt with a user-facing warning.
// Caller holds the mutex.
func (g *Gate) warn(ctx context.Context, message string) Result {
	notification := notify.Notification{Kind: notify.KindWarning, Message: message}
	g.notifier.Notify(ctx, notification)
	result := g.reset()
	result.Notification = &notification
	return result
}

// reset clears per-attempt state. Caller holds the mutex.
func (g *Gate) reset() Result {
	g.state = StateIdle
	g.attemptID = ""
	g.userEmail = ""
	g.canProceed = false
	g.open = nil
	return Result{State: StateIdle}
}
