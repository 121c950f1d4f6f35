package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Monetary values flow through the system as exact decimals. Shopify
// serializes amounts as strings, never floats, and that exactness is
// preserved all the way down to the NUMERIC columns at rest.

// ParseAmount converts a remote decimal string (e.g. "12.34") into a decimal.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

// NullAmount maps an optional remote amount to a nullable decimal. An absent
// value stays null so "unknown" is never conflated with "known zero".
func NullAmount(s *string) (decimal.NullDecimal, error) {
	if s == nil || *s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := ParseAmount(*s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

// ZeroIfNull collapses a nullable decimal to a concrete value. Callers decide
// where the unknown-cost-counts-as-zero boundary sits; storage never does.
func ZeroIfNull(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
