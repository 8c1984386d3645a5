package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Balances and transfer amounts are fixed-point decimals with two fractional
// digits. All arithmetic goes through shopspring/decimal so no float ever
// touches a monetary value.

// ParseAmount parses a wire amount string into a two-decimal-place value.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.Exponent() < -2 {
		return decimal.Zero, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	return d, nil
}

// CentPrecision reports whether d is representable in whole cents. Values
// with more than two decimal places would be rounded by the store, so they
// are rejected before any balance arithmetic.
func CentPrecision(d decimal.Decimal) bool {
	return d.Exponent() >= -2
}

// FormatAmount renders a monetary value with exactly two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
