// Package session binds the blend store to the derivations, approvals and
// execution that act on it. Every operation holds the session lock, so
// dispatches, evaluations and submissions never interleave.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"blend-swap/pkg/approval"
	"blend-swap/pkg/blend"
	"blend-swap/pkg/currency"
	"blend-swap/pkg/txstore"
	"blend-swap/pkg/types"
)

// ErrLastLeg is returned when removing the only remaining input.
var ErrLastLeg = errors.New("cannot remove the only input")

type Options struct {
	Store        *blend.Store
	Deriver      *blend.Deriver
	Approvals    *approval.Manager
	Executor     *blend.Executor
	Transactions *txstore.Manager
	Watcher      *txstore.Watcher
	Logger       *slog.Logger
}

type Session struct {
	mu sync.Mutex

	store     *blend.Store
	deriver   *blend.Deriver
	approvals *approval.Manager
	executor  *blend.Executor
	txs       *txstore.Manager
	watcher   *txstore.Watcher
	logger    *slog.Logger
}

func New(opts Options) *Session {
	return &Session{
		store:     opts.Store,
		deriver:   opts.Deriver,
		approvals: opts.Approvals,
		executor:  opts.Executor,
		txs:       opts.Transactions,
		watcher:   opts.Watcher,
		logger:    opts.Logger,
	}
}

// Snapshot is one consistent evaluation of the session.
type Snapshot struct {
	State     blend.State
	Info      *blend.Info
	Approvals *approval.Snapshot
}

// Submittable reports whether a blend could be sent right now.
func (s *Snapshot) Submittable() bool {
	return s.Info.OutputAmount != nil &&
		s.Info.TradeCount() > 0 &&
		blend.IsSubmittable(s.Info.Trades, s.Approvals.States)
}

// State returns the current blend state.
func (s *Session) State() blend.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.State()
}

// Dispatch applies action and persists the journal.
func (s *Session) Dispatch(action blend.Action) (blend.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if action.Type == blend.ActionRemoveInput && s.store.State().LegCount <= 1 {
		return s.store.State(), ErrLastLeg
	}
	state := s.store.Dispatch(action)
	return state, s.store.Save()
}

// Undo reverts the last action. It reports false when there was nothing to undo.
func (s *Session) Undo() (blend.State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.store.Undo()
	if !ok {
		return state, false, nil
	}
	return state, true, s.store.Save()
}

// Reset returns the session to a single empty input.
func (s *Session) Reset() (blend.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.store.Reset()
	return state, s.store.Save()
}

// Evaluate refreshes tracked transactions, derives the blend and evaluates
// the approval state of every leg.
func (s *Session) Evaluate(ctx context.Context) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evaluate(ctx)
}

func (s *Session) evaluate(ctx context.Context) *Snapshot {
	if s.watcher != nil {
		if _, err := s.watcher.Check(ctx); err != nil {
			s.logger.Warn("transaction check failed", "error", err)
		}
	}

	state := s.store.State()
	info := s.deriver.Derive(ctx, state)
	return &Snapshot{
		State:     state,
		Info:      info,
		Approvals: s.approvals.Evaluate(ctx, requiredAmounts(info)),
	}
}

// View evaluates the session and renders it for display.
func (s *Session) View(ctx context.Context) *types.BlendView {
	return BuildView(s.Evaluate(ctx))
}

// Approve submits an approval for leg i against a fresh evaluation.
func (s *Session) Approve(ctx context.Context, i int) (common.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.evaluate(ctx)
	return s.approvals.Approve(ctx, snap.Approvals, i)
}

// Submit sends the blend against a fresh evaluation.
func (s *Session) Submit(ctx context.Context) (common.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.evaluate(ctx)
	if snap.Info.InputError != "" {
		s.logger.Debug("submitting with input error", "input_error", snap.Info.InputError)
	}
	hash, err := s.executor.Submit(ctx, snap.Info, snap.Approvals)
	if err != nil {
		return hash, fmt.Errorf("blend not submitted: %w", err)
	}
	return hash, nil
}

// Transactions returns every tracked transaction, oldest first.
func (s *Session) Transactions() []types.TxView {
	if s.txs == nil {
		return nil
	}
	list := s.txs.List()
	out := make([]types.TxView, len(list))
	for i, tx := range list {
		out[i] = TxView(tx)
	}
	return out
}

// requiredAmounts is the per-leg amount the spender must be allowed to pull.
// Legs without a trade require nothing.
func requiredAmounts(info *blend.Info) []*currency.Amount {
	out := make([]*currency.Amount, len(info.Trades))
	for i, t := range info.Trades {
		if t != nil {
			out[i] = t.MaximumAmountIn(info.Slippage)
		}
	}
	return out
}
