package blend

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"blend-swap/pkg/currency"
	"blend-swap/pkg/quote"
)

// TokenLookup resolves a currency id (NativeID or a token address).
type TokenLookup interface {
	Resolve(ctx context.Context, id string) (*currency.Currency, error)
}

// QuoteResolver resolves one trade per leg.
type QuoteResolver interface {
	Resolve(ctx context.Context, amounts []*currency.Amount, out *currency.Currency, maxHops int) []quote.Result
}

// BalanceReader reads the balance of owner in currency c.
type BalanceReader interface {
	BalanceOf(ctx context.Context, owner common.Address, c *currency.Currency) (*big.Int, error)
}

// Info is everything derived from a state snapshot. Per-leg slices are index
// aligned with the state's legs.
type Info struct {
	Currencies    []*currency.Currency
	Output        *currency.Currency
	ParsedAmounts []*currency.Amount
	Trades        []*quote.Trade
	QuoteErrors   []error
	Balances      []*currency.Amount
	OutputBalance *currency.Amount

	// OutputAmount is the aggregate minimum output; nil when undefined.
	OutputAmount   *currency.Amount
	AggregateError error

	Account    *common.Address
	Recipient  *common.Address
	InputError string
	Slippage   currency.Percent
	MaxHops    int
}

// TradeCount returns the number of legs with a trade.
func (i *Info) TradeCount() int {
	n := 0
	for _, t := range i.Trades {
		if t != nil {
			n++
		}
	}
	return n
}

type DeriverConfig struct {
	Tokens        TokenLookup
	Quotes        QuoteResolver
	Balances      BalanceReader
	Account       *common.Address
	Slippage      currency.Percent
	MaxHops       int
	SingleHopOnly bool
	Logger        *slog.Logger
}

// Deriver turns a state into an Info.
type Deriver struct {
	tokens   TokenLookup
	quotes   QuoteResolver
	balances BalanceReader
	account  *common.Address
	slippage currency.Percent
	maxHops  int
	logger   *slog.Logger
}

func NewDeriver(cfg DeriverConfig) *Deriver {
	maxHops := cfg.MaxHops
	if maxHops <= 0 {
		maxHops = quote.MaxHops
	}
	if cfg.SingleHopOnly {
		maxHops = 1
	}
	return &Deriver{
		tokens:   cfg.Tokens,
		quotes:   cfg.Quotes,
		balances: cfg.Balances,
		account:  cfg.Account,
		slippage: cfg.Slippage,
		maxHops:  maxHops,
		logger:   cfg.Logger,
	}
}

// MaxHops returns the hop bound used for lookups.
func (d *Deriver) MaxHops() int {
	return d.maxHops
}

func (d *Deriver) Derive(ctx context.Context, state State) *Info {
	info := &Info{
		Currencies:    make([]*currency.Currency, state.LegCount),
		ParsedAmounts: make([]*currency.Amount, state.LegCount),
		Trades:        make([]*quote.Trade, state.LegCount),
		QuoteErrors:   make([]error, state.LegCount),
		Balances:      make([]*currency.Amount, state.LegCount),
		Account:       d.account,
		Slippage:      d.slippage,
		MaxHops:       d.maxHops,
	}

	for i, leg := range state.Legs {
		info.Currencies[i] = d.currency(ctx, leg.TokenID)
		info.ParsedAmounts[i] = currency.TryParseAmount(state.TypedAmounts[i], info.Currencies[i])
	}
	info.Output = d.currency(ctx, state.OutputTokenID)

	for i, r := range d.quotes.Resolve(ctx, info.ParsedAmounts, info.Output, d.maxHops) {
		info.Trades[i] = r.Trade
		info.QuoteErrors[i] = r.Err
	}

	info.OutputAmount, info.AggregateError = Aggregate(info.Trades, d.slippage, info.Output)
	if info.AggregateError != nil {
		d.logger.Warn("aggregate output unavailable", "error", info.AggregateError)
	}

	d.readBalances(ctx, info)
	info.Recipient = d.recipient(state.Recipient)
	info.InputError = d.inputError(state, info)
	return info
}

func (d *Deriver) currency(ctx context.Context, id string) *currency.Currency {
	if id == "" {
		return nil
	}
	c, err := d.tokens.Resolve(ctx, id)
	if err != nil {
		d.logger.Debug("unknown currency", "id", id, "error", err)
		return nil
	}
	return c
}

func (d *Deriver) readBalances(ctx context.Context, info *Info) {
	if d.balances == nil || d.account == nil {
		return
	}

	owner := *d.account
	var g errgroup.Group
	g.SetLimit(4)
	read := func(c *currency.Currency, dst **currency.Amount) {
		if c == nil {
			return
		}
		g.Go(func() error {
			raw, err := d.balances.BalanceOf(ctx, owner, c)
			if err != nil {
				d.logger.Debug("balance read failed", "currency", c.String(), "error", err)
				return nil
			}
			*dst = currency.NewAmount(c, raw)
			return nil
		})
	}
	for i, c := range info.Currencies {
		read(c, &info.Balances[i])
	}
	read(info.Output, &info.OutputBalance)
	_ = g.Wait()
}

func (d *Deriver) recipient(r *string) *common.Address {
	if r == nil {
		return d.account
	}
	if !common.IsHexAddress(*r) {
		return nil
	}
	addr := common.HexToAddress(*r)
	return &addr
}

func (d *Deriver) inputError(state State, info *Info) string {
	if d.account == nil {
		return "Connect wallet"
	}
	if info.Output == nil {
		return "Select a token"
	}
	for _, c := range info.Currencies {
		if c == nil {
			return "Select a token"
		}
	}
	for _, a := range info.ParsedAmounts {
		if a == nil {
			return "Enter an amount"
		}
	}
	if state.Recipient != nil && info.Recipient == nil {
		return "Invalid recipient"
	}
	for i, t := range info.Trades {
		if t == nil || info.Balances[i] == nil {
			continue
		}
		required := t.MaximumAmountIn(d.slippage)
		if info.Balances[i].LessThan(required) {
			return fmt.Sprintf("Insufficient %s balance", required.Currency)
		}
	}
	return ""
}
