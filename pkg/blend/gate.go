package blend

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"blend-swap/pkg/approval"
	"blend-swap/pkg/chain"
	"blend-swap/pkg/observability"
	"blend-swap/pkg/quote"
	"blend-swap/pkg/txstore"
)

// IsSubmittable reports whether every leg that has a trade is approved.
func IsSubmittable(trades []*quote.Trade, states []approval.State) bool {
	for i, t := range trades {
		if t == nil {
			continue
		}
		if i >= len(states) || states[i] != approval.Approved {
			return false
		}
	}
	return true
}

// BlendSender sends the batched blend transaction.
type BlendSender interface {
	SendBlend(ctx context.Context, legs []chain.BlendLeg, minAmountOut *big.Int, recipient common.Address, value *big.Int) (common.Hash, error)
}

// BlendTracker records sent blend transactions.
type BlendTracker interface {
	AddBlend(hash common.Hash, summary string) (*txstore.Transaction, error)
}

// Executor submits a derived blend as one transaction.
type Executor struct {
	sender   BlendSender
	tracker  BlendTracker
	contract *common.Address
	logger   *slog.Logger
	metrics  *observability.Metrics
}

func NewExecutor(sender BlendSender, tracker BlendTracker, contract *common.Address, logger *slog.Logger, metrics *observability.Metrics) *Executor {
	return &Executor{
		sender:   sender,
		tracker:  tracker,
		contract: contract,
		logger:   logger,
		metrics:  metrics,
	}
}

// Submit validates info against snap and sends one blend call carrying every
// leg with a trade. Nothing is sent unless every such leg is approved.
func (e *Executor) Submit(ctx context.Context, info *Info, snap *approval.Snapshot) (common.Hash, error) {
	if err := e.check(info, snap); err != nil {
		e.logger.Warn("blend blocked", "reason", err)
		e.metrics.ObserveBlend("blocked")
		return common.Hash{}, err
	}

	legs := make([]chain.BlendLeg, 0, info.TradeCount())
	value := new(big.Int)
	for _, t := range info.Trades {
		if t == nil {
			continue
		}
		leg := chain.BlendLeg{
			Amount: new(big.Int).Set(t.InputAmount.Raw),
			Path:   t.Route.Addresses(),
		}
		if t.InputAmount.Currency.Native {
			value.Add(value, t.InputAmount.Raw)
		} else {
			leg.Token = t.InputAmount.Currency.Address
		}
		legs = append(legs, leg)
	}

	hash, err := e.sender.SendBlend(ctx, legs, info.OutputAmount.Raw, *info.Recipient, value)
	if err != nil {
		e.metrics.ObserveBlend("failed")
		return common.Hash{}, fmt.Errorf("failed to send blend: %w", err)
	}
	e.metrics.ObserveBlend("submitted")

	summary := fmt.Sprintf("Blend %d inputs for at least %s", len(legs), info.OutputAmount.Truncated(6)+" "+info.OutputAmount.Currency.String())
	if e.tracker != nil {
		if _, err := e.tracker.AddBlend(hash, summary); err != nil {
			return hash, fmt.Errorf("blend sent but not tracked: %w", err)
		}
	}
	e.logger.Info("blend submitted", "hash", hash.Hex(), "legs", len(legs), "min_out", info.OutputAmount.String())
	return hash, nil
}

func (e *Executor) check(info *Info, snap *approval.Snapshot) error {
	if info == nil || info.OutputAmount == nil {
		return ErrNoMinimumOutput
	}
	if info.TradeCount() == 0 {
		return ErrNoInputs
	}
	if snap == nil || !IsSubmittable(info.Trades, snap.States) {
		return ErrNotApproved
	}
	if e.contract == nil || e.sender == nil {
		return ErrNoContract
	}
	if info.Recipient == nil {
		return ErrNoRecipient
	}
	return nil
}
