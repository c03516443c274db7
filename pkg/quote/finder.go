package quote

import (
	"context"

	"blend-swap/pkg/currency"
)

// TradeFinder finds the best exact-input trade from amountIn to out. A nil
// trade with a nil error means no route exists.
type TradeFinder interface {
	BestTradeExactIn(ctx context.Context, amountIn *currency.Amount, out *currency.Currency, maxHops int) (*Trade, error)
}
