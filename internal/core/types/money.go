// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

var fiveCents = decimal.New(5, -2)

// RoundCash rounds a Money value to the nearest 0.05, ties away from zero.
// Swiss cash rounding; applied to quotation and invoice grand totals.
func RoundCash(m Money) Money {
	return m.Div(fiveCents).Round(0).Mul(fiveCents)
}

// Percent applies a percentage to a Money value: Percent(100, 25) = 25.
func Percent(m Money, pct Money) Money {
	return m.Mul(pct).Div(decimal.New(100, 0))
}
