package currency

import (
	"fmt"
	"math/big"
)

// Amount is a quantity of a currency expressed in its smallest unit.
type Amount struct {
	Currency *Currency
	Raw      *big.Int
}

// NewAmount copies raw into a new Amount of c.
func NewAmount(c *Currency, raw *big.Int) *Amount {
	return &Amount{Currency: c, Raw: new(big.Int).Set(raw)}
}

// Zero returns a zero Amount of c.
func Zero(c *Currency) *Amount {
	return &Amount{Currency: c, Raw: new(big.Int)}
}

// Add returns a + b. Both amounts must be of the same currency.
func (a *Amount) Add(b *Amount) (*Amount, error) {
	if !a.Currency.Equal(b.Currency) {
		return nil, fmt.Errorf("%w: cannot add %s to %s", ErrCurrencyMismatch, b.Currency, a.Currency)
	}
	return &Amount{Currency: a.Currency, Raw: new(big.Int).Add(a.Raw, b.Raw)}, nil
}

// LessThan reports whether a is strictly smaller than b.
func (a *Amount) LessThan(b *Amount) bool {
	return a.Raw.Cmp(b.Raw) < 0
}

// IsZero reports whether the amount is zero.
func (a *Amount) IsZero() bool {
	return a.Raw.Sign() == 0
}

// Exact formats the amount in whole units without losing precision.
func (a *Amount) Exact() string {
	return FormatUnits(a.Raw, a.Currency.Decimals)
}

// Truncated formats the amount with at most places fractional digits, rounding down.
func (a *Amount) Truncated(places int) string {
	if places < 0 || int(a.Currency.Decimals) <= places {
		return a.Exact()
	}
	drop := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(int(a.Currency.Decimals)-places)), nil)
	q := new(big.Int).Quo(a.Raw, drop)
	return FormatUnits(q, uint8(places))
}

func (a *Amount) String() string {
	if a == nil {
		return ""
	}
	return a.Exact() + " " + a.Currency.String()
}
