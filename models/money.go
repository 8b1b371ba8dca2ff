package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Arithmetic on a decimal rescales it by 10^|exponent|, so parsed amounts are
// kept to a small exponent range.
const (
	minExponent = -20
	maxExponent = 20
)

var ErrAmountOutOfRange = errors.New("amount exponent out of range")

// Money is an exact decimal amount. It is rendered as a JSON number with
// exactly two fraction digits and accepts either a JSON number or a numeric
// string on input.
type Money struct {
	decimal.Decimal
}

// NewMoney parses s into a Money value.
func NewMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	if err := checkExponent(d); err != nil {
		return Money{}, err
	}
	return Money{d}, nil
}

// MustMoney is NewMoney for constants and tests.
func MustMoney(s string) Money {
	m, err := NewMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{m.Decimal.Add(o.Decimal)}
}

// Rounded returns m rounded to cents.
func (m Money) Rounded() Money {
	return Money{m.Decimal.Round(2)}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	if err := checkExponent(d); err != nil {
		return err
	}
	m.Decimal = d
	return nil
}

func checkExponent(d decimal.Decimal) error {
	if exp := d.Exponent(); exp < minExponent || exp > maxExponent {
		return ErrAmountOutOfRange
	}
	return nil
}

// SumAmounts adds the amounts of all expenses exactly.
func SumAmounts(expenses []Expense) Money {
	total := Money{decimal.Zero}
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}
