package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/nudgekit/core/pkg/cart"
	"github.com/nudgekit/core/pkg/checkout"
	"github.com/nudgekit/core/pkg/identity"
	"github.com/nudgekit/core/pkg/money"
	"github.com/nudgekit/core/pkg/notify"
	"github.com/nudgekit/core/pkg/nudge"
	"github.com/nudgekit/core/pkg/orders"
)

const maxBodyBytes = 1 << 20 // 1MB limit

// Server exposes the checkout gate and cart over HTTP.
type Server struct {
	gate    *checkout.Gate
	cart    cart.Cart
	store   orders.Store
	logger  *slog.Logger
	limiter *RateLimiter
}

// NewServer wires the HTTP surface. The limiter may be nil to disable
// rate limiting (tests).
func NewServer(gate *checkout.Gate, c cart.Cart, store orders.Store, logger *slog.Logger, limiter *RateLimiter) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{gate: gate, cart: c, store: store, logger: logger, limiter: limiter}
}

// Routes returns the fully wired handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /v1/checkout", s.handleRequestCheckout)
	mux.HandleFunc("DELETE /v1/checkout", s.handleAbandon)
	mux.HandleFunc("POST /v1/nudge/resolve", s.handleResolveNudge)
	mux.HandleFunc("POST /v1/block/complete", s.handleCompleteBlock)
	mux.HandleFunc("GET /v1/state", s.handleState)

	mux.HandleFunc("GET /v1/cart", s.handleGetCart)
	mux.HandleFunc("POST /v1/cart/items", s.handleAddItem)
	mux.HandleFunc("PATCH /v1/cart/items/{slug}", s.handleUpdateQuantity)
	mux.HandleFunc("DELETE /v1/cart/items/{slug}", s.handleRemoveItem)
	mux.HandleFunc("DELETE /v1/cart", s.handleClearCart)

	mux.HandleFunc("GET /v1/orders", s.handleListOrders)

	var handler http.Handler = withBearerToken(mux)
	if s.limiter != nil {
		handler = s.limiter.Middleware(handler)
	}
	return handler
}

// withBearerToken moves an Authorization bearer token into the request
// context for the identity provider. Requests without one pass through;
// the gate decides what anonymity means.
func withBearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
			r = r.WithContext(identity.WithToken(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}

// gateResponse is the wire shape of a gate transition.
type gateResponse struct {
	State        checkout.State       `json:"state"`
	Nudge        *nudge.Nudge         `json:"nudge,omitempty"`
	Order        *orders.Order        `json:"order,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

func toGateResponse(result checkout.Result) gateResponse {
	return gateResponse{
		State:        result.State,
		Nudge:        result.Nudge,
		Order:        result.Order,
		Notification: result.Notification,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeGateError maps gate errors onto problem responses.
func (s *Server) writeGateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrIdentityMissing):
		WriteUnauthorized(w, "Sign in before checking out")
	case errors.Is(err, checkout.ErrAttemptInFlight):
		WriteConflict(w, "A checkout attempt is already in progress")
	case errors.Is(err, checkout.ErrNoNudgeOpen):
		WriteConflict(w, "No nudge is awaiting resolution")
	case errors.Is(err, checkout.ErrNotBlocked):
		WriteConflict(w, "Checkout is not blocked")
	case errors.Is(err, checkout.ErrInvalidOutcome):
		WriteBadRequest(w, "Unsupported outcome for the open nudge")
	case errors.Is(err, checkout.ErrOrderPersist):
		WriteBadGateway(w, "Order storage is unavailable. Your cart is unchanged.")
	default:
		WriteInternal(w, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRequestCheckout(w http.ResponseWriter, r *http.Request) {
	result, err := s.gate.RequestCheckout(r.Context())
	if err != nil {
		s.writeGateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGateResponse(result))
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toGateResponse(s.gate.AbandonAttempt()))
}

type resolveRequest struct {
	Outcome string `json:"outcome"`
}

func (s *Server) handleResolveNudge(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	outcome := checkout.Outcome(req.Outcome)
	if !outcome.Valid() {
		WriteBadRequest(w, "Outcome must be \"accept\" or \"reject\"")
		return
	}

	result, err := s.gate.ResolveNudge(r.Context(), outcome)
	if err != nil {
		s.writeGateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGateResponse(result))
}

func (s *Server) handleCompleteBlock(w http.ResponseWriter, r *http.Request) {
	result, err := s.gate.CompleteBlock(r.Context())
	if err != nil {
		s.writeGateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGateResponse(result))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gateResponse{
		State: s.gate.State(),
		Nudge: s.gate.CurrentNudge(),
	})
}

type cartResponse struct {
	Items []cart.Line `json:"items"`
	Total money.Money `json:"total"`
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	items, err := s.cart.Items(r.Context())
	if err != nil {
		WriteInternal(w, err)
		return
	}
	total, err := s.cart.Total(r.Context())
	if err != nil {
		WriteInternal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{Items: items, Total: total})
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var line cart.Line
	if err := json.NewDecoder(r.Body).Decode(&line); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}
	if line.Slug == "" {
		WriteBadRequest(w, "Missing required field: slug")
		return
	}

	if err := s.cart.AddItem(r.Context(), line); err != nil {
		if errors.Is(err, cart.ErrInvalidQuantity) {
			WriteBadRequest(w, "Quantity must be at least 1")
			return
		}
		WriteInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

func (s *Server) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid request body")
		return
	}

	err := s.cart.UpdateQuantity(r.Context(), r.PathValue("slug"), req.Quantity)
	switch {
	case errors.Is(err, cart.ErrNotFound):
		WriteNotFound(w, "No such cart line")
	case errors.Is(err, cart.ErrInvalidQuantity):
		WriteBadRequest(w, "Quantity must be at least 1")
	case err != nil:
		WriteInternal(w, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	err := s.cart.RemoveItem(r.Context(), r.PathValue("slug"))
	switch {
	case errors.Is(err, cart.ErrNotFound):
		WriteNotFound(w, "No such cart line")
	case err != nil:
		WriteInternal(w, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := s.cart.Clear(r.Context()); err != nil {
		WriteInternal(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			WriteBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	list, err := s.store.ListOrders(r.Context(), limit)
	if err != nil {
		WriteInternal(w, err)
		return
	}
	if list == nil {
		list = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, list)
}
