package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nudgekit/core/pkg/cart"
	"github.com/nudgekit/core/pkg/money"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store against a SQLite orders table.
// Line items are stored as a JSON column.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the store and applies its schema.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	query := `
    CREATE TABLE IF NOT EXISTS orders (
        order_id TEXT PRIMARY KEY,
        user_email TEXT NOT NULL,
        total_cents INTEGER NOT NULL,
        currency TEXT NOT NULL DEFAULT 'EUR',
        items JSON NOT NULL,
        created_at DATETIME NOT NULL
    );`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// AppendOrder inserts one order row. Orders are never updated.
func (s *SQLiteStore) AppendOrder(ctx context.Context, order Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO orders (order_id, user_email, total_cents, currency, items, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		order.ID, order.UserEmail, order.Total.Cents, order.Total.Currency,
		string(itemsJSON), order.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// ListOrders returns the most recent orders first, up to limit.
func (s *SQLiteStore) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT order_id, user_email, total_cents, currency, items, created_at
		   FROM orders
		  ORDER BY created_at DESC
		  LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Order
	for rows.Next() {
		var (
			order     Order
			cents     int64
			currency  string
			itemsJSON string
			createdAt string
		)
		if err := rows.Scan(&order.ID, &order.UserEmail, &cents, &currency, &itemsJSON, &createdAt); err != nil {
			return nil, err
		}
		order.Total = money.New(cents, currency)
		order.CreatedAt = parseTime(createdAt)
		var items []cart.Line
		if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
			return nil, fmt.Errorf("unmarshal order items: %w", err)
		}
		order.Items = items
		out = append(out, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}

var _ Store = (*SQLiteStore)(nil)
