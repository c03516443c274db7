package quote

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"blend-swap/pkg/currency"
)

// MaxHops is the default bound on pools per route.
const MaxHops = 3

// BetterTradeLessHopsThreshold is the margin a longer route must win by before
// it replaces a shorter one.
var BetterTradeLessHopsThreshold = currency.FromBips(50)

// AmountsOutQuoter prices a token path, mirroring the V2 router's getAmountsOut.
type AmountsOutQuoter interface {
	GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error)
}

// RouterFinder builds candidate paths through a set of routing bases and asks
// the router to price them.
type RouterFinder struct {
	quoter    AmountsOutQuoter
	wrapped   *currency.Currency
	bases     []*currency.Currency
	threshold currency.Percent
	logger    *slog.Logger
}

func NewRouterFinder(quoter AmountsOutQuoter, wrapped *currency.Currency, bases []*currency.Currency, logger *slog.Logger) *RouterFinder {
	return &RouterFinder{
		quoter:    quoter,
		wrapped:   wrapped,
		bases:     bases,
		threshold: BetterTradeLessHopsThreshold,
		logger:    logger,
	}
}

func (f *RouterFinder) BestTradeExactIn(ctx context.Context, amountIn *currency.Amount, out *currency.Currency, maxHops int) (*Trade, error) {
	if amountIn == nil || out == nil || amountIn.IsZero() {
		return nil, nil
	}
	if maxHops <= 0 {
		maxHops = MaxHops
	}

	tokenIn, tokenOut := f.wrap(amountIn.Currency), f.wrap(out)
	if tokenIn.Equal(tokenOut) {
		return nil, nil
	}

	var best *Trade
	for hops := 1; hops <= maxHops; hops++ {
		current, err := f.bestWithHops(ctx, amountIn, out, f.paths(tokenIn, tokenOut, hops))
		if err != nil {
			return nil, err
		}
		if isTradeBetter(best, current, f.threshold) {
			best = current
		}
	}
	return best, nil
}

func (f *RouterFinder) bestWithHops(ctx context.Context, amountIn *currency.Amount, out *currency.Currency, paths [][]*currency.Currency) (*Trade, error) {
	var best *Trade
	for _, path := range paths {
		route := &Route{Path: path, Input: amountIn.Currency, Output: out}
		amounts, err := f.quoter.GetAmountsOut(ctx, amountIn.Raw, route.Addresses())
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			f.logger.Debug("skipping unpriceable path", "route", route.String(), "error", err)
			continue
		}
		if len(amounts) != len(path) {
			continue
		}
		received := amounts[len(amounts)-1]
		if received == nil || received.Sign() <= 0 {
			continue
		}
		if best != nil && received.Cmp(best.OutputAmount.Raw) <= 0 {
			continue
		}
		best = &Trade{
			Route:        route,
			InputAmount:  currency.NewAmount(amountIn.Currency, amountIn.Raw),
			OutputAmount: currency.NewAmount(out, received),
		}
	}
	return best, nil
}

// paths returns every path from in to out crossing exactly hops pools, with
// intermediates drawn from the routing bases without repetition.
func (f *RouterFinder) paths(in, out *currency.Currency, hops int) [][]*currency.Currency {
	var candidates []*currency.Currency
	for _, b := range f.bases {
		if b.Equal(in) || b.Equal(out) {
			continue
		}
		candidates = append(candidates, b)
	}

	var result [][]*currency.Currency
	var walk func(path []*currency.Currency, used map[int]bool)
	walk = func(path []*currency.Currency, used map[int]bool) {
		if len(path) == hops {
			full := make([]*currency.Currency, 0, hops+1)
			full = append(full, path...)
			result = append(result, append(full, out))
			return
		}
		for i, c := range candidates {
			if used[i] {
				continue
			}
			used[i] = true
			walk(append(path, c), used)
			used[i] = false
		}
	}
	walk([]*currency.Currency{in}, map[int]bool{})
	return result
}

func (f *RouterFinder) wrap(c *currency.Currency) *currency.Currency {
	if c.Native {
		return f.wrapped
	}
	return c
}
