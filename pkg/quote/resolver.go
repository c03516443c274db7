package quote

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"blend-swap/pkg/currency"
	"blend-swap/pkg/observability"
)

const defaultLookupLimit = 4

// Result is the outcome of one leg's lookup. Both fields are nil when the leg
// was skipped or no route exists.
type Result struct {
	Trade *Trade
	Err   error
}

type cacheKey struct {
	chainID int64
	in      string
	raw     string
	out     string
	maxHops int
}

func keyFor(a *currency.Amount, out *currency.Currency, maxHops int) cacheKey {
	return cacheKey{
		chainID: a.Currency.ChainID,
		in:      a.Currency.ID(),
		raw:     a.Raw.String(),
		out:     out.ID(),
		maxHops: maxHops,
	}
}

// Resolver runs one best-trade lookup per leg and memoizes results by the
// content of the inputs. Only keys seen in the latest resolution are retained.
type Resolver struct {
	finder  TradeFinder
	logger  *slog.Logger
	metrics *observability.Metrics
	limit   int

	mu         sync.Mutex
	cache      map[cacheKey]*Trade
	generation uint64
}

func NewResolver(finder TradeFinder, logger *slog.Logger, metrics *observability.Metrics) *Resolver {
	return &Resolver{
		finder:  finder,
		logger:  logger,
		metrics: metrics,
		limit:   defaultLookupLimit,
		cache:   make(map[cacheKey]*Trade),
	}
}

// Resolve returns one result per entry of amounts, index-aligned. Nil amounts
// and a nil output currency skip the lookup.
func (r *Resolver) Resolve(ctx context.Context, amounts []*currency.Amount, out *currency.Currency, maxHops int) []Result {
	results := make([]Result, len(amounts))
	if out == nil {
		return results
	}

	r.mu.Lock()
	r.generation++
	gen := r.generation
	// The cache map is replaced wholesale and never written in place, so the
	// snapshot can be read without holding the lock.
	snapshot := r.cache
	r.mu.Unlock()

	fresh := make(map[cacheKey]*Trade)
	pending := make(map[cacheKey][]int)
	var order []cacheKey

	for i, amount := range amounts {
		if amount == nil {
			continue
		}
		k := keyFor(amount, out, maxHops)
		if t, ok := snapshot[k]; ok {
			results[i].Trade = t
			fresh[k] = t
			continue
		}
		if _, seen := pending[k]; !seen {
			order = append(order, k)
		}
		pending[k] = append(pending[k], i)
	}

	lookups := make([]Result, len(order))
	var g errgroup.Group
	g.SetLimit(r.limit)
	for j, k := range order {
		amount := amounts[pending[k][0]]
		g.Go(func() error {
			lookups[j] = r.lookup(ctx, amount, out, maxHops)
			return nil
		})
	}
	_ = g.Wait()

	for j, k := range order {
		for _, i := range pending[k] {
			results[i] = lookups[j]
		}
		if lookups[j].Err == nil {
			fresh[k] = lookups[j].Trade
		}
	}

	r.mu.Lock()
	if gen == r.generation {
		r.cache = fresh
	} else {
		r.logger.Debug("quote resolution superseded, skipping cache update", "generation", gen)
	}
	r.mu.Unlock()

	return results
}

// Invalidate drops every memoized trade.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	r.cache = make(map[cacheKey]*Trade)
}

func (r *Resolver) lookup(ctx context.Context, amount *currency.Amount, out *currency.Currency, maxHops int) Result {
	start := time.Now()
	trade, err := r.finder.BestTradeExactIn(ctx, amount, out, maxHops)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		r.metrics.ObserveQuote("error", elapsed)
		r.logger.Warn("best trade lookup failed", "in", amount.Currency.String(), "out", out.String(), "error", err)
		return Result{Err: fmt.Errorf("quote %s -> %s: %w", amount.Currency, out, err)}
	case trade == nil:
		r.metrics.ObserveQuote("none", elapsed)
		return Result{}
	default:
		r.metrics.ObserveQuote("trade", elapsed)
		return Result{Trade: trade}
	}
}
