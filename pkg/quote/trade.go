package quote

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"blend-swap/pkg/currency"
)

// Route is an ordered token path. Native ends are represented by the wrapped
// native token in Path while Input and Output keep the caller's currencies.
type Route struct {
	Path   []*currency.Currency
	Input  *currency.Currency
	Output *currency.Currency
}

// Hops returns the number of pools the route crosses.
func (r *Route) Hops() int {
	return len(r.Path) - 1
}

// Addresses returns the token addresses of the path.
func (r *Route) Addresses() []common.Address {
	out := make([]common.Address, len(r.Path))
	for i, c := range r.Path {
		out[i] = c.Address
	}
	return out
}

func (r *Route) String() string {
	parts := make([]string, len(r.Path))
	for i, c := range r.Path {
		switch {
		case i == 0 && r.Input != nil && r.Input.Native:
			parts[i] = r.Input.String()
		case i == len(r.Path)-1 && r.Output != nil && r.Output.Native:
			parts[i] = r.Output.String()
		default:
			parts[i] = c.String()
		}
	}
	return strings.Join(parts, " > ")
}

// Trade is an exact-input swap along a route.
type Trade struct {
	Route        *Route
	InputAmount  *currency.Amount
	OutputAmount *currency.Amount
}

// MinimumAmountOut returns floor(output * (1 - slippage)).
func (t *Trade) MinimumAmountOut(slippage currency.Percent) *currency.Amount {
	return &currency.Amount{
		Currency: t.OutputAmount.Currency,
		Raw:      slippage.ApplyComplement(t.OutputAmount.Raw),
	}
}

// MaximumAmountIn is the input amount itself; exact-input trades never spend more.
func (t *Trade) MaximumAmountIn(currency.Percent) *currency.Amount {
	return currency.NewAmount(t.InputAmount.Currency, t.InputAmount.Raw)
}

// ExecutionPrice returns output per unit of input in whole units.
func (t *Trade) ExecutionPrice() string {
	if t.InputAmount.IsZero() {
		return "0"
	}
	in := new(big.Rat).SetFrac(t.InputAmount.Raw, pow10(t.InputAmount.Currency.Decimals))
	out := new(big.Rat).SetFrac(t.OutputAmount.Raw, pow10(t.OutputAmount.Currency.Decimals))
	return new(big.Rat).Quo(out, in).FloatString(6)
}

// isTradeBetter reports whether b beats a by more than delta. A nil a is beaten by any trade.
func isTradeBetter(a, b *Trade, delta currency.Percent) bool {
	if b == nil {
		return false
	}
	if a == nil {
		return true
	}
	// a.out * (1 + delta) < b.out
	lhs := new(big.Int).Add(delta.Den, delta.Num)
	lhs.Mul(lhs, a.OutputAmount.Raw)
	rhs := new(big.Int).Mul(b.OutputAmount.Raw, delta.Den)
	return lhs.Cmp(rhs) < 0
}

func pow10(d uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d)), nil)
}
