package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunHelp(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"nudged", "help"}, &out, &errOut)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "USAGE")
	assert.Contains(t, out.String(), "serve")
}

func TestRunUnknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	code := Run([]string{"nudged", "bogus"}, &out, &errOut)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut.String(), "Unknown command")
}

func TestSeedRequiresFile(t *testing.T) {
	var out, errOut bytes.Buffer
	code := runSeed(nil, &out, &errOut)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut.String(), "--file is required")
}

func TestSeedLoadsProducts(t *testing.T) {
	dir := t.TempDir()
	seedFile := filepath.Join(dir, "products.yaml")
	require.NoError(t, os.WriteFile(seedFile, []byte(`
- slug: mug-basic
  name: Basic Mug
  price_cents: 900
  currency: EUR
  category: mugs
- slug: mug-deluxe
  name: Deluxe Mug
  price_cents: 2500
  currency: EUR
  category: mugs
`), 0o600))

	t.Setenv("DATABASE_PATH", filepath.Join(dir, "test.db"))
	t.Setenv("POSTGRES_URL", "")

	var out, errOut bytes.Buffer
	code := runSeed([]string{"--file", seedFile}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "Seeded 2 products")
}

func TestOrdersEmptyStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "test.db"))
	t.Setenv("POSTGRES_URL", "")

	var out, errOut bytes.Buffer
	code := runOrders(nil, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "No orders recorded.")
}
