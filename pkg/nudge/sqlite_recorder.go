package nudge

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder appends interactions to a SQLite table.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder creates the recorder and applies its schema.
func NewSQLiteRecorder(db *sql.DB) (*SQLiteRecorder, error) {
	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	query := `
    CREATE TABLE IF NOT EXISTS nudge_interactions (
        id TEXT PRIMARY KEY,
        nudge_type TEXT NOT NULL,
        accepted INTEGER NOT NULL,
        recorded_at DATETIME NOT NULL
    );`
	_, err := r.db.ExecContext(context.Background(), query)
	return err
}

// Record appends one row. Insert errors are logged and swallowed; the
// caller never observes a recording fault.
func (r *SQLiteRecorder) Record(ctx context.Context, nudgeType Type, accepted bool) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO nudge_interactions (id, nudge_type, accepted, recorded_at)
		 VALUES (?, ?, ?, ?)`,
		uuid.New().String(), string(nudgeType), accepted,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		slog.Warn("record nudge interaction", "error", err)
	}
}

// Count returns how many interactions were recorded for a type and
// outcome. Used by analysis tooling and tests.
func (r *SQLiteRecorder) Count(ctx context.Context, nudgeType Type, accepted bool) (int64, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM nudge_interactions WHERE nudge_type = ? AND accepted = ?`,
		string(nudgeType), accepted)
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

var _ Recorder = (*SQLiteRecorder)(nil)
