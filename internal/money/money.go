package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
)

// Epsilon is the currency-rounding tolerance applied when checking that a set
// of obligations sums back to its expense amount, and that percentages sum to
// 100. One cent of the unit.
var Epsilon = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

// Parse accepts a decimal string with at most two fractional digits.
func Parse(input string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if value.Exponent() < -2 {
		return decimal.Zero, ErrTooManyDecimals
	}
	return value, nil
}

// ParsePositive is Parse restricted to amounts greater than zero.
func ParsePositive(input string) (decimal.Decimal, error) {
	value, err := Parse(input)
	if err != nil {
		return decimal.Zero, err
	}
	if value.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}
	return value, nil
}

// WithinEpsilon reports whether two amounts differ by no more than Epsilon.
func WithinEpsilon(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Epsilon)
}

// SumsToHundred reports whether the percentages add up to 100 within Epsilon.
func SumsToHundred(percentages []decimal.Decimal) bool {
	sum := decimal.Zero
	for _, p := range percentages {
		sum = sum.Add(p)
	}
	return WithinEpsilon(sum, hundred)
}

func Format(value decimal.Decimal) string {
	return value.StringFixedBank(2)
}
