// Package core implements the ledger's computation pipeline: currency
// conversion, transaction normalization, monthly aggregation, profit
// distribution and the dashboard summary. Every function here is a pure
// transform of its inputs; persistence and transport live elsewhere.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered decimal string to a monetary amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Only strictly positive values are accepted: signs, zero and malformed
// input return ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseRate converts a user-entered decimal string to an exchange rate.
// Rates must be strictly positive but, unlike amounts, keep their full
// fractional precision (e.g. "0.0036").
func ParseRate(s string) (decimal.Decimal, error) {
	return ParseAmount(s)
}

// ParsePercent parses a percentage in [0,100]. Zero is allowed: a
// company percentage of 0 routes all income to the owners.
func ParsePercent(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidPercent
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, ErrInvalidPercent
	}
	return d, nil
}

// FormatPKR formats a base-currency amount for display, e.g. "Rs 280000.00".
// Negative values keep their sign; remainingCompanyBalance and netBalance
// legitimately go below zero.
func FormatPKR(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-Rs " + d.Neg().StringFixed(2)
	}
	return "Rs " + d.StringFixed(2)
}
