// Package notify carries user-facing notifications from the checkout
// core to whatever presentation layer the host wires in.
package notify

import (
	"context"
	"log/slog"
)

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Notification is one user-visible message.
type Notification struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Notifier delivers notifications to the presentation layer.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// SlogNotifier logs notifications through a structured logger.
// Suitable as a default sink when no UI is attached.
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier creates a notifier over the given logger.
// A nil logger falls back to slog.Default().
func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogNotifier{logger: logger}
}

// Notify logs the notification at a level matching its kind.
func (s *SlogNotifier) Notify(ctx context.Context, n Notification) {
	switch n.Kind {
	case KindWarning:
		s.logger.WarnContext(ctx, n.Message, "kind", n.Kind)
	case KindError:
		s.logger.ErrorContext(ctx, n.Message, "kind", n.Kind)
	default:
		s.logger.InfoContext(ctx, n.Message, "kind", n.Kind)
	}
}

var _ Notifier = (*SlogNotifier)(nil)
