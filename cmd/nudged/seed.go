package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/nudgekit/core/pkg/catalog"
	"github.com/nudgekit/core/pkg/config"
	"github.com/nudgekit/core/pkg/money"
	"gopkg.in/yaml.v3"
)

// seedProduct is the YAML shape of one catalog entry.
type seedProduct struct {
	Slug       string `yaml:"slug"`
	Name       string `yaml:"name"`
	PriceCents int64  `yaml:"price_cents"`
	Currency   string `yaml:"currency"`
	Image      string `yaml:"image"`
	Category   string `yaml:"category"`
}

func runSeed(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "YAML file with catalog products (REQUIRED)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *file == "" {
		fmt.Fprintln(stderr, "Error: --file is required")
		fs.Usage()
		return 2
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading %s: %v\n", *file, err)
		return 1
	}

	var entries []seedProduct
	if err := yaml.Unmarshal(data, &entries); err != nil {
		fmt.Fprintf(stderr, "Error parsing %s: %v\n", *file, err)
		return 1
	}
	if len(entries) == 0 {
		fmt.Fprintln(stderr, "Error: no products in file")
		return 1
	}

	products := make([]catalog.Product, 0, len(entries))
	for _, e := range entries {
		if e.Slug == "" || e.Category == "" {
			fmt.Fprintf(stderr, "Error: product %q missing slug or category\n", e.Name)
			return 1
		}
		products = append(products, catalog.Product{
			Slug:     e.Slug,
			Name:     e.Name,
			Price:    money.New(e.PriceCents, e.Currency),
			Image:    e.Image,
			Category: e.Category,
		})
	}

	cfg := config.Load()
	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening %s: %v\n", cfg.DatabasePath, err)
		return 1
	}
	defer func() { _ = db.Close() }()

	store, err := catalog.NewSQLiteStore(db)
	if err != nil {
		fmt.Fprintf(stderr, "Error initializing catalog: %v\n", err)
		return 1
	}
	if err := store.Seed(context.Background(), products); err != nil {
		fmt.Fprintf(stderr, "Error seeding catalog: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Seeded %d products into %s\n", len(products), cfg.DatabasePath)
	return 0
}
