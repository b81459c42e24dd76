package nudge

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Recorder records accept/reject outcomes per nudge type for later
// analysis. Recording is fire-and-forget: implementations must never
// block or fail the caller; storage errors are swallowed and logged.
type Recorder interface {
	Record(ctx context.Context, nudgeType Type, accepted bool)
}

// Interaction is one recorded nudge outcome.
type Interaction struct {
	ID        string    `json:"id"`
	NudgeType Type      `json:"nudge_type"`
	Accepted  bool      `json:"accepted"`
	Timestamp time.Time `json:"timestamp"`
}

// LogRecorder writes interactions as JSON lines to a configurable
// writer.
type LogRecorder struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewLogRecorder creates a recorder writing to os.Stdout.
func NewLogRecorder() *LogRecorder {
	return NewLogRecorderWithWriter(os.Stdout)
}

// NewLogRecorderWithWriter creates a recorder writing to the given
// writer. This allows injection for testing and custom sinks.
func NewLogRecorderWithWriter(w io.Writer) *LogRecorder {
	if w == nil {
		w = os.Stdout
	}
	return &LogRecorder{writer: w}
}

// Record writes one interaction line. Errors are logged, never
// propagated.
func (l *LogRecorder) Record(ctx context.Context, nudgeType Type, accepted bool) {
	interaction := Interaction{
		ID:        uuid.New().String(),
		NudgeType: nudgeType,
		Accepted:  accepted,
		Timestamp: time.Now().UTC(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bytes, err := json.Marshal(interaction)
	if err != nil {
		slog.Warn("record nudge interaction", "error", err)
		return
	}
	if _, err := l.writer.Write(append(bytes, '\n')); err != nil {
		slog.Warn("record nudge interaction", "error", err)
	}
}

var _ Recorder = (*LogRecorder)(nil)
