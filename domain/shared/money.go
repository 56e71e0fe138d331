package shared

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an immutable amount in a single ISO-4217 currency. Every
// operation returns a new value and never mutates the receiver.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewMoney validates amount >= 0 and a 3-letter upper-case currency code.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if amount.IsNegative() {
		return Money{}, NewValidationError("amount", "must not be negative")
	}
	if !validCurrency(currency) {
		return Money{}, NewValidationError("currency", fmt.Sprintf("invalid ISO-4217 code: %q", currency))
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// MustMoney is a test/constant helper that panics on invalid input.
func MustMoney(amount float64, currency string) Money {
	m, err := NewMoney(decimal.NewFromFloat(amount), currency)
	if err != nil {
		panic(err)
	}
	return m
}

func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Add returns m + other. Both operands must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, NewBusinessRuleError(fmt.Sprintf("currency mismatch: %s vs %s", m.Currency, other.Currency))
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Subtract returns m - other and refuses to go negative.
func (m Money) Subtract(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, NewBusinessRuleError(fmt.Sprintf("currency mismatch: %s vs %s", m.Currency, other.Currency))
	}
	result := m.Amount.Sub(other.Amount)
	if result.IsNegative() {
		return Money{}, NewBusinessRuleError("subtraction would produce a negative amount")
	}
	return Money{Amount: result, Currency: m.Currency}, nil
}

// Multiply returns m * factor. The factor must not be negative.
func (m Money) Multiply(factor decimal.Decimal) (Money, error) {
	if factor.IsNegative() {
		return Money{}, NewValidationError("factor", "must not be negative")
	}
	return Money{Amount: m.Amount.Mul(factor), Currency: m.Currency}, nil
}

// Equals compares amount and currency.
func (m Money) Equals(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// IsZero reports a zero amount.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Currency)
}
