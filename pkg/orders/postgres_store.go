package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nudgekit/core/pkg/cart"
	"github.com/nudgekit/core/pkg/money"

	_ "github.com/lib/pq"
)

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over an existing connection.
// The orders table is expected to be provisioned by migrations.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// AppendOrder inserts one order row. Orders are never updated.
func (s *PostgresStore) AppendOrder(ctx context.Context, order Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO orders (order_id, user_email, total_cents, currency, items, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		order.ID, order.UserEmail, order.Total.Cents, order.Total.Currency,
		string(itemsJSON), order.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// ListOrders returns the most recent orders first, up to limit.
func (s *PostgresStore) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT order_id, user_email, total_cents, currency, items, created_at
		   FROM orders
		  ORDER BY created_at DESC
		  LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Order
	for rows.Next() {
		var (
			order     Order
			cents     int64
			currency  string
			itemsJSON string
		)
		if err := rows.Scan(&order.ID, &order.UserEmail, &cents, &currency, &itemsJSON, &order.CreatedAt); err != nil {
			return nil, err
		}
		order.Total = money.New(cents, currency)
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

var _ Store = (*PostgresStore)(nil)
