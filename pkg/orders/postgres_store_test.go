package orders

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/nudgekit/core/pkg/cart"
	"github.com/nudgekit/core/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStoreAppend(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs("order-1", "a@example.com", int64(2000), "EUR", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.AppendOrder(ctx, Order{
		ID:        "order-1",
		Items:     []cart.Line{{Slug: "mug", Price: money.New(2000, "EUR"), Quantity: 1}},
		Total:     money.New(2000, "EUR"),
		CreatedAt: time.Now().UTC(),
		UserEmail: "a@example.com",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreAppendFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnError(assert.AnError)

	err = store.AppendOrder(context.Background(), Order{ID: "order-1", Total: money.New(100, "EUR")})
	assert.Error(t, err)
}

func TestPostgresStoreList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"order_id", "user_email", "total_cents", "currency", "items", "created_at"}).
		AddRow("order-2", "b@example.com", 3000, "EUR", `[{"slug":"hat","quantity":1}]`, now).
		AddRow("order-1", "a@example.com", 2000, "EUR", `[{"slug":"mug","quantity":2}]`, now.Add(-time.Minute))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT order_id, user_email, total_cents, currency, items, created_at")).
		WithArgs(10).
		WillReturnRows(rows)

	listed, err := store.ListOrders(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "order-2", listed[0].ID)
	assert.Equal(t, int64(3000), listed[0].Total.Cents)
	assert.Equal(t, "hat", listed[0].Items[0].Slug)
	assert.Equal(t, int64(2), listed[1].Items[0].Quantity)
}
