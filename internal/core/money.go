// Package core provides money parsing and handling utilities.
//
// Amounts are held in centimes (hundredths of a franc) so that percentage
// shares of a net balance stay exact across repeated recomputation.
package core

import (
	"bytes"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// NewMoney builds an amount from whole currency units.
func NewMoney(units int64) Money {
	return Money{Cents: units * 100}
}

// ParseAmount converts user input into an amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators as well as
// space-grouped thousands ("100 000"). Anything that is not a number yields
// zero instead of an error so a half-typed form never blocks. Precision
// beyond centimes is rounded half away from zero.
//
// Examples:
//   ParseAmount("5000")    -> 5000.00
//   ParseAmount("12,345")  -> 12.35
//   ParseAmount("abc")     -> 0
func ParseAmount(s string) Money {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}
	}
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '_':
			return -1
		}
		return r
	}, s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}
	}
	return fromDecimal(d)
}

// ParsePercent converts user input into a whole percentage. Non-numeric input
// yields zero; fractional input is truncated like an integer form field.
func ParsePercent(s string) Percent {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return 0
	}
	return Percent(d.IntPart())
}

// fromDecimal rounds to the nearest centime. Amounts that do not fit in an
// int64 of centimes are treated like any other unusable input and yield zero.
func fromDecimal(units decimal.Decimal) Money {
	cents := units.Mul(hundred).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return Money{}
	}
	return Money{Cents: cents.IntPart()}
}

// Decimal returns the amount in whole currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Units returns the amount as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Units() float64 {
	return m.Decimal().InexactFloat64()
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) IsZero() bool      { return m.Cents == 0 }
func (m Money) IsNegative() bool  { return m.Cents < 0 }

// NonNegative clamps the amount at zero.
func (m Money) NonNegative() Money {
	if m.Cents < 0 {
		return Money{}
	}
	return m
}

// Share returns percent/100 of the amount, rounded to the centime.
func (m Money) Share(percent Percent) Money {
	d := decimal.NewFromInt(m.Cents).
		Mul(decimal.NewFromInt(int64(percent))).
		Div(hundred).
		Round(0)
	return Money{Cents: d.IntPart()}
}

func (m Money) String() string {
	return m.Decimal().String()
}

// MarshalJSON writes the amount as a plain JSON number of currency units,
// matching the layout of the browser application's export.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts numbers, numeric strings and null. Anything else
// decodes to zero rather than failing the whole document.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = Money{}
		return nil
	}
	*m = ParseAmount(strings.Trim(string(b), `"`))
	return nil
}
