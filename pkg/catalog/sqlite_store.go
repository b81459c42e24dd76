package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nudgekit/core/pkg/cart"
	"github.com/nudgekit/core/pkg/money"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Lookup against a SQLite product table.
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
    CREATE TABLE IF NOT EXISTS products (
        slug TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        price_cents INTEGER NOT NULL,
        currency TEXT NOT NULL DEFAULT 'EUR',
        image TEXT,
        category TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_products_category ON products(category, price_cents);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// Seed upserts products into the catalog.
func (s *SQLiteStore) Seed(ctx context.Context, products []Product) error {
	query := `INSERT INTO products (slug, name, price_cents, currency, image, category)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (slug) DO UPDATE SET
			name = excluded.name,
			price_cents = excluded.price_cents,
			currency = excluded.currency,
			image = excluded.image,
			category = excluded.category`
	for _, p := range products {
		if _, err := s.db.ExecContext(ctx, query,
			p.Slug, p.Name, p.Price.Cents, p.Price.Currency, p.Image, p.Category,
		); err != nil {
			return fmt.Errorf("seed product %s: %w", p.Slug, err)
		}
	}
	return nil
}

// FindCheaperAlternative queries the cheapest strictly cheaper product
// in the item's category. Query faults map to ErrUnavailable so callers
// fail safe.
func (s *SQLiteStore) FindCheaperAlternative(ctx context.Context, item cart.Line) (Alternative, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT slug, name, price_cents, currency, image, category
		   FROM products
		  WHERE category = ? AND slug != ? AND price_cents < ?
		  ORDER BY price_cents ASC
		  LIMIT 1`,
		item.Category, item.Slug, item.Price.Cents,
	)

	var (
		p        Product
		cents    int64
		currency string
		image    sql.NullString
	)
	err := row.Scan(&p.Slug, &p.Name, &cents, &currency, &image, &p.Category)
	if err == sql.ErrNoRows {
		return echo(item), nil
	}
	if err != nil {
		return Alternative{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	p.Price = money.New(cents, currency)
	p.Image = image.String
	return Alternative{Product: p}, nil
}

var _ Lookup = (*SQLiteStore)(nil)
