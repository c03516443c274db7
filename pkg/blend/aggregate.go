package blend

import (
	"fmt"

	"blend-swap/pkg/currency"
	"blend-swap/pkg/quote"
)

// Aggregate sums the slippage-adjusted minimum output of every non-nil trade.
// The result is nil when out is nil or no leg has a trade.
func Aggregate(trades []*quote.Trade, slippage currency.Percent, out *currency.Currency) (*currency.Amount, error) {
	if out == nil {
		return nil, nil
	}

	var total *currency.Amount
	for i, t := range trades {
		if t == nil {
			continue
		}
		if !t.OutputAmount.Currency.Equal(out) {
			return nil, fmt.Errorf("leg %d: %w: trade pays %s, output is %s",
				i, currency.ErrCurrencyMismatch, t.OutputAmount.Currency, out)
		}
		if total == nil {
			total = currency.Zero(out)
		}
		sum, err := total.Add(t.MinimumAmountOut(slippage))
		if err != nil {
			return nil, err
		}
		total = sum
	}
	return total, nil
}
