package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"blend-swap/config"
	"blend-swap/pkg/approval"
	"blend-swap/pkg/blend"
	"blend-swap/pkg/chain"
	"blend-swap/pkg/currency"
	"blend-swap/pkg/logging"
	"blend-swap/pkg/observability"
	"blend-swap/pkg/quote"
	"blend-swap/pkg/session"
	"blend-swap/pkg/tokens"
	"blend-swap/pkg/txstore"
)

// app holds everything a command needs. client and watcher are only set for
// commands that talk to the chain; offline sessions can dispatch but not evaluate.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *observability.Metrics
	registry *tokens.Registry
	store    *blend.Store
	txs      *txstore.Manager

	client  *chain.Client
	watcher *txstore.Watcher
	session *session.Session
}

// loadApp builds the local parts of the application. With online set it also
// dials the chain and wires the session.
func loadApp(cmd *cobra.Command, online bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	logger := logging.NewLogger(level)
	slog.SetDefault(logger)

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: observability.NewMetrics(""),
	}

	if a.registry, err = tokens.Load(cfg.ChainID, cfg.TokenListPath); err != nil {
		return nil, fmt.Errorf("failed to load token list: %w", err)
	}
	if a.store, err = blend.LoadJournal(cfg.SessionPath, logger, a.metrics); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if a.txs, err = txstore.NewManager(cfg.TransactionsPath, logger, a.metrics); err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	if !online {
		a.session = session.New(session.Options{Store: a.store, Transactions: a.txs, Logger: logger})
		return a, nil
	}
	if err := a.connect(cmd.Context()); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) connect(ctx context.Context) error {
	cfg := a.cfg
	if err := cfg.RequireChain(); err != nil {
		return err
	}

	client, err := chain.Dial(cfg.RPCURL, chain.Options{
		ChainID:    cfg.ChainID,
		PrivateKey: cfg.PrivateKey,
		Router:     common.HexToAddress(cfg.RouterAddress),
		Blend:      blendAddress(cfg),
		GasPrice:   cfg.GasPrice,
		Logger:     a.logger,
	})
	if err != nil {
		return err
	}
	a.client = client
	a.registry.WithReader(client)

	wrapped, err := a.registry.Resolve(ctx, cfg.WETHAddress)
	if err != nil {
		return fmt.Errorf("failed to resolve wrapped native token: %w", err)
	}
	bases := a.routingBases(ctx)

	finder := quote.NewRouterFinder(client, wrapped, bases, a.logger)
	account := client.Account()
	spender := client.BlendContract()

	a.watcher = txstore.NewWatcher(a.txs, client, a.logger)
	if cfg.WatchInterval > 0 {
		a.watcher.SetCheckInterval(cfg.WatchInterval)
	}

	a.session = session.New(session.Options{
		Store: a.store,
		Deriver: blend.NewDeriver(blend.DeriverConfig{
			Tokens:        a.registry,
			Quotes:        quote.NewResolver(finder, a.logger, a.metrics),
			Balances:      client,
			Account:       account,
			Slippage:      cfg.Slippage(),
			MaxHops:       cfg.MaxHops,
			SingleHopOnly: cfg.SingleHopOnly,
			Logger:        a.logger,
		}),
		Approvals: approval.NewManager(approval.Config{
			Allowances: client,
			Submitter:  client,
			Tracker:    a.txs,
			Owner:      account,
			Spender:    spender,
			ChainID:    client.ChainID(),
			Logger:     a.logger,
			Metrics:    a.metrics,
		}),
		Executor:     blend.NewExecutor(client, a.txs, spender, a.logger, a.metrics),
		Transactions: a.txs,
		Watcher:      a.watcher,
		Logger:       a.logger,
	})
	return nil
}

// routingBases resolves the configured intermediate tokens, skipping the ones
// that are unknown on this chain.
func (a *app) routingBases(ctx context.Context) []*currency.Currency {
	var bases []*currency.Currency
	for _, id := range a.cfg.RoutingBases {
		c, err := a.registry.Resolve(ctx, id)
		if err != nil || c.Native {
			a.logger.Warn("skipping routing base", "token", id, "error", err)
			continue
		}
		bases = append(bases, c)
	}
	return bases
}

func (a *app) Close() {
	if a.client != nil {
		a.client.Close()
	}
}

// resolveID maps a symbol, address or "ETH" to the id stored in the session.
func (a *app) resolveID(ctx context.Context, token string) (string, error) {
	c, err := a.registry.Resolve(ctx, token)
	if err != nil {
		return "", err
	}
	return c.ID(), nil
}

func blendAddress(cfg *config.Config) common.Address {
	if cfg.BlendAddress == "" {
		return common.Address{}
	}
	return common.HexToAddress(cfg.BlendAddress)
}

// mustLoadApp is loadApp for Run funcs: it prints the error and exits.
func mustLoadApp(cmd *cobra.Command, online bool) *app {
	a, err := loadApp(cmd, online)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	return a
}
