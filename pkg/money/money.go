// Package money provides a minor-unit monetary value type.
// Integer math avoids floating point errors in price arithmetic.
package money

import (
	"fmt"
)

// DefaultCurrency is used when callers do not care about the currency.
const DefaultCurrency = "EUR"

// Money represents a monetary value in minor units of a currency.
type Money struct {
	Cents    int64  `json:"cents"`
	Currency string `json:"currency"` // ISO 4217 code
}

// New creates a Money value. An empty currency falls back to the default.
func New(cents int64, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Cents: cents, Currency: currency}
}

// Add adds two Money amounts. Returns error on currency mismatch.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}
	return Money{Cents: m.Cents + other.Cents, Currency: m.Currency}, nil
}

// Sub subtracts other from m. Returns error on currency mismatch.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}
	return Money{Cents: m.Cents - other.Cents, Currency: m.Currency}, nil
}

// Mul scales the amount by an integer quantity.
func (m Money) Mul(qty int64) Money {
	return Money{Cents: m.Cents * qty, Currency: m.Currency}
}

// IsZero returns true if the amount is 0.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// IsPositive returns true if the amount is > 0.
func (m Money) IsPositive() bool {
	return m.Cents > 0
}

// IsNegative returns true if the amount is < 0.
func (m Money) IsNegative() bool {
	return m.Cents < 0
}

// LessThan reports whether m is strictly smaller than other.
// Comparing across currencies is a programming error and returns false.
func (m Money) LessThan(other Money) bool {
	if m.Currency != other.Currency {
		return false
	}
	return m.Cents < other.Cents
}

// String formats the amount with two decimal places, e.g. "EUR 12.50".
func (m Money) String() string {
	sign := ""
	cents := m.Cents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s %s%d.%02d", m.Currency, sign, cents/100, cents%100)
}
