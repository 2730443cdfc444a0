package folio

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an exact monetary value in a single currency.
//
// All valuation and cash-flow arithmetic stays in decimals; values cross into
// float64 only at the metric boundary, where the results feed charting.
type Money struct {
	value decimal.Decimal // major units
	cur   string
}

// M builds a Money from any numeric type.
func M[T float64 | int | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// Currency returns the currency code ("USD", "EUR", or a commodity ticker).
func (m Money) Currency() string { return m.cur }

// Amount returns the exact decimal amount.
func (m Money) Amount() decimal.Decimal { return m.value }

// Float64 converts to float64, losing exactness. Metric outputs only.
func (m Money) Float64() float64 { return m.value.InexactFloat64() }

func (m Money) IsZero() bool     { return m.value.IsZero() }
func (m Money) IsNegative() bool { return m.value.IsNegative() }
func (m Money) IsPositive() bool { return m.value.IsPositive() }

func (m Money) Equal(n Money) bool { return m.cur == n.cur && m.value.Equal(n.value) }

func (m Money) Neg() Money { return Money{value: m.value.Neg(), cur: m.cur} }

// Add panics on currency mismatch: mixing currencies without a conversion is
// always a bug in the caller. The empty currency is weak and adopts the other.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// Mul scales the amount by a quantity (e.g. price x shares).
func (m Money) Mul(q Quantity) Money { return Money{value: m.value.Mul(q.value), cur: m.cur} }

// MulRate converts via an exchange rate into the given currency.
func (m Money) MulRate(rate decimal.Decimal, currency string) Money {
	return Money{value: m.value.Mul(rate), cur: currency}
}

func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + " != " + b.cur)
	}
	return a.cur
}

// String renders the amount with its currency symbol when the currency is an
// ISO code, and as "12.34 CORP" for commodities.
func (m Money) String() string {
	if c := money.GetCurrency(m.cur); c != nil {
		return c.Formatter().Format(m.value.Shift(int32(c.Fraction)).IntPart())
	}
	return fmt.Sprintf("%s %s", m.value.String(), m.cur)
}

// MarshalJSON encodes as {"amount": "12.34", "currency": "USD"}.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"amount":%s,"currency":%q}`, m.value.String(), m.cur)), nil
}
