package approval

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"golang.org/x/sync/errgroup"

	"blend-swap/pkg/currency"
	"blend-swap/pkg/observability"
	"blend-swap/pkg/txstore"
)

// AllowanceReader reads ERC-20 allowances.
type AllowanceReader interface {
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
}

// Submitter estimates and sends approve transactions.
type Submitter interface {
	EstimateApprove(ctx context.Context, token, spender common.Address, amount *big.Int) (uint64, error)
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int, gasLimit uint64) (common.Hash, error)
}

// Tracker records approvals and reports the ones still in flight.
type Tracker interface {
	HasPendingApproval(token, spender common.Address) bool
	AddApproval(hash common.Hash, token, spender common.Address, summary string) (*txstore.Transaction, error)
}

// Snapshot is the approval picture of every leg at one point in time.
type Snapshot struct {
	Required   []*currency.Amount
	Allowances []*big.Int
	Pending    []bool
	States     []State
}

// AllApproved reports whether every leg with a required amount is approved.
func (s *Snapshot) AllApproved() bool {
	for i, r := range s.Required {
		if r != nil && s.States[i] != Approved {
			return false
		}
	}
	return true
}

type Config struct {
	Allowances AllowanceReader
	Submitter  Submitter
	Tracker    Tracker
	Owner      *common.Address
	Spender    *common.Address
	ChainID    int64
	Logger     *slog.Logger
	Metrics    *observability.Metrics
}

// Manager evaluates and submits approvals for the blend spender.
type Manager struct {
	allowances AllowanceReader
	submitter  Submitter
	tracker    Tracker
	owner      *common.Address
	spender    *common.Address
	chainID    int64
	logger     *slog.Logger
	metrics    *observability.Metrics
}

func NewManager(cfg Config) *Manager {
	return &Manager{
		allowances: cfg.Allowances,
		submitter:  cfg.Submitter,
		tracker:    cfg.Tracker,
		owner:      cfg.Owner,
		spender:    cfg.Spender,
		chainID:    cfg.ChainID,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
	}
}

// Evaluate reads the allowance of every token leg and derives its state.
// A failed read leaves the allowance unknown for that leg only.
func (m *Manager) Evaluate(ctx context.Context, required []*currency.Amount) *Snapshot {
	snap := &Snapshot{
		Required:   required,
		Allowances: make([]*big.Int, len(required)),
		Pending:    make([]bool, len(required)),
		States:     make([]State, len(required)),
	}

	if m.owner != nil && m.spender != nil && m.allowances != nil {
		var g errgroup.Group
		g.SetLimit(4)
		for i, r := range required {
			if r == nil || r.Currency.Native {
				continue
			}
			token := r.Currency.Address
			g.Go(func() error {
				allowance, err := m.allowances.Allowance(ctx, token, *m.owner, *m.spender)
				if err != nil {
					m.logger.Warn("allowance read failed", "token", r.Currency.String(), "error", err)
					return nil
				}
				snap.Allowances[i] = allowance
				return nil
			})
		}
		_ = g.Wait()
	}

	for i, r := range required {
		if r != nil && r.Currency.IsToken() && m.spender != nil && m.tracker != nil {
			snap.Pending[i] = m.tracker.HasPendingApproval(r.Currency.Address, *m.spender)
		}
		snap.States[i] = Compute(r, m.spender, snap.Allowances[i], snap.Pending[i])
	}
	return snap
}

// Approve submits an approval for leg i of snap. It tries an unlimited
// allowance first and falls back to the exact amount once when the token
// rejects the unlimited estimate.
func (m *Manager) Approve(ctx context.Context, snap *Snapshot, i int) (common.Hash, error) {
	if snap == nil || i < 0 || i >= len(snap.States) {
		m.logger.Warn("approve called for missing leg", "index", i)
		m.metrics.ObserveApprovalRejected("invalid_index")
		return common.Hash{}, fmt.Errorf("%w %d", ErrInvalidIndex, i)
	}
	if snap.States[i] != NotApproved {
		m.logger.Warn("approve was called unnecessarily", "index", i, "state", snap.States[i])
		m.metrics.ObserveApprovalRejected("not_needed")
		return common.Hash{}, fmt.Errorf("%w: leg %d is %s", ErrApprovalNotNeeded, i, snap.States[i])
	}

	required := snap.Required[i]
	if missing := m.missing(required); missing != "" {
		m.logger.Warn("approval prerequisite missing", "index", i, "missing", missing)
		m.metrics.ObserveApprovalRejected("missing_" + missing)
		return common.Hash{}, fmt.Errorf("%w: no %s", ErrMissingPrerequisite, missing)
	}

	token, spender := required.Currency.Address, *m.spender

	amount, mode := math.MaxBig256, "unlimited"
	gas, err := m.submitter.EstimateApprove(ctx, token, spender, amount)
	if err != nil {
		m.logger.Debug("unlimited approval rejected, estimating exact amount", "token", required.Currency.String(), "error", err)
		amount, mode = required.Raw, "exact"
		gas, err = m.submitter.EstimateApprove(ctx, token, spender, amount)
		if err != nil {
			return common.Hash{}, fmt.Errorf("failed to estimate approval gas: %w", err)
		}
	}

	hash, err := m.submitter.Approve(ctx, token, spender, amount, CalculateGasMargin(gas))
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to approve token: %w", err)
	}
	m.metrics.ObserveApproval(mode)

	summary := "Approve " + required.Currency.String()
	if m.tracker != nil {
		if _, err := m.tracker.AddApproval(hash, token, spender, summary); err != nil {
			return hash, fmt.Errorf("approval sent but not tracked: %w", err)
		}
	}
	m.logger.Info("approval submitted", "token", required.Currency.String(), "mode", mode, "hash", hash.Hex())
	return hash, nil
}

func (m *Manager) missing(required *currency.Amount) string {
	switch {
	case m.chainID == 0:
		return "chain_id"
	case required == nil:
		return "amount"
	case required.Currency.Native:
		return "token"
	case m.submitter == nil:
		return "token_contract"
	case m.spender == nil:
		return "spender"
	}
	return ""
}

// CalculateGasMargin adds 20% to an estimated gas limit.
func CalculateGasMargin(gas uint64) uint64 {
	return gas * 120 / 100
}
