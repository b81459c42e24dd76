package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/nudgekit/core/pkg/config"
	"github.com/nudgekit/core/pkg/orders"
)

func runOrders(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	fs.SetOutput(stderr)
	limit := fs.Int("limit", 20, "maximum orders to list")
	jsonOut := fs.Bool("json", false, "output as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := config.Load()
	store, cleanup, err := openOrderStore(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening order store: %v\n", err)
		return 1
	}
	defer cleanup()

	list, err := store.ListOrders(context.Background(), *limit)
	if err != nil {
		fmt.Fprintf(stderr, "Error listing orders: %v\n", err)
		return 1
	}

	if *jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(list)
		return 0
	}

	if len(list) == 0 {
		fmt.Fprintln(stdout, "No orders recorded.")
		return 0
	}
	for _, order := range list {
		fmt.Fprintf(stdout, "%s  %s  %-30s %s  %d items\n",
			order.CreatedAt.Format("2006-01-02 15:04:05"),
			order.ID,
			order.UserEmail,
			order.Total,
			len(order.Items),
		)
	}
	return 0
}

func openOrderStore(cfg *config.Config) (orders.Store, func(), error) {
	if cfg.PostgresURL != "" {
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return orders.NewPostgresStore(db), func() { _ = db.Close() }, nil
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	store, err := orders.NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store, func() { _ = db.Close() }, nil
}
