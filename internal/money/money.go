package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrCurrencyMismatch is returned when two amounts in different currencies are combined.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrCurrencyRequired is returned when a monetary value lacks a currency code.
	ErrCurrencyRequired = errors.New("currency code is required")
)

// Money is an immutable monetary value stored in minor units (cents).
type Money struct {
	Amount       int64  `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// New constructs a Money value. Negative amounts are allowed: discounts
// and refunds are negative deltas.
func New(amount int64, currencyCode string) (Money, error) {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if code == "" {
		return Money{}, ErrCurrencyRequired
	}
	return Money{Amount: amount, CurrencyCode: code}, nil
}

// MustNew behaves like New but panics on error. Useful in tests and literals.
func MustNew(amount int64, currencyCode string) Money {
	m, err := New(amount, currencyCode)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns the sum of both values.
func (m Money) Add(other Money) (Money, error) {
	if m.CurrencyCode != other.CurrencyCode {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.CurrencyCode, other.CurrencyCode)
	}
	return Money{Amount: m.Amount + other.Amount, CurrencyCode: m.CurrencyCode}, nil
}

// Subtract returns the difference of both values.
func (m Money) Subtract(other Money) (Money, error) {
	if m.CurrencyCode != other.CurrencyCode {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.CurrencyCode, other.CurrencyCode)
	}
	return Money{Amount: m.Amount - other.Amount, CurrencyCode: m.CurrencyCode}, nil
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Amount < 0
}

// Equal reports whether both values carry the same amount and currency.
func (m Money) Equal(other Money) bool {
	return m.Amount == other.Amount && m.CurrencyCode == other.CurrencyCode
}

// String renders the value with two decimal places, e.g. "-10.00 USD".
func (m Money) String() string {
	sign := ""
	amount := m.Amount
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, m.CurrencyCode)
}

// FormatBps renders a basis-point percentage as a human figure:
// 2000 -> "20", 550 -> "5.5", 525 -> "5.25".
func FormatBps(bps int32) string {
	sign := ""
	if bps < 0 {
		sign = "-"
		bps = -bps
	}
	whole := bps / 100
	frac := bps % 100
	if frac == 0 {
		return sign + strconv.FormatInt(int64(whole), 10)
	}
	s := fmt.Sprintf("%d.%02d", whole, frac)
	return sign + strings.TrimRight(s, "0")
}
