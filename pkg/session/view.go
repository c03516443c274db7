package session

import (
	"blend-swap/pkg/approval"
	"blend-swap/pkg/txstore"
	"blend-swap/pkg/types"
)

const displayDecimals = 6

// BuildView converts a snapshot into its display model.
func BuildView(snap *Snapshot) *types.BlendView {
	info := snap.Info
	view := &types.BlendView{
		Legs:          make([]types.LegView, snap.State.LegCount),
		OutputTokenID: snap.State.OutputTokenID,
		Slippage:      info.Slippage.String(),
		MaxHops:       info.MaxHops,
		InputError:    info.InputError,
		Submittable:   snap.Submittable(),
	}

	for i, leg := range snap.State.Legs {
		lv := types.LegView{
			Index:       i,
			ID:          leg.ID,
			TokenID:     leg.TokenID,
			TypedAmount: snap.State.TypedAmounts[i],
			Approval:    approval.Unknown.String(),
		}
		if c := info.Currencies[i]; c != nil {
			lv.Symbol = c.String()
		}
		if b := info.Balances[i]; b != nil {
			lv.Balance = b.Truncated(displayDecimals)
		}
		if t := info.Trades[i]; t != nil {
			lv.Route = t.Route.String()
			lv.Hops = t.Route.Hops()
			lv.Quote = t.OutputAmount.Truncated(displayDecimals)
			lv.MinOut = t.MinimumAmountOut(info.Slippage).Truncated(displayDecimals)
			lv.Price = t.ExecutionPrice()
		}
		if err := info.QuoteErrors[i]; err != nil {
			lv.QuoteError = err.Error()
		}
		if i < len(snap.Approvals.States) {
			lv.Approval = snap.Approvals.States[i].String()
		}
		view.Legs[i] = lv
	}

	if info.Output != nil {
		view.OutputSymbol = info.Output.String()
	}
	if info.OutputBalance != nil {
		view.OutputBalance = info.OutputBalance.Truncated(displayDecimals)
	}
	if info.OutputAmount != nil {
		view.MinimumOutput = info.OutputAmount.Truncated(displayDecimals)
	}
	if info.Recipient != nil {
		view.Recipient = info.Recipient.Hex()
	}
	if info.Account != nil {
		view.Account = info.Account.Hex()
	}
	return view
}

// TxView converts a tracked transaction into its display model.
func TxView(tx *txstore.Transaction) types.TxView {
	return types.TxView{
		ID:        tx.ID,
		Hash:      tx.Hash,
		Kind:      string(tx.Kind),
		Summary:   tx.Summary,
		Status:    string(tx.Status),
		Block:     tx.Block,
		Error:     tx.Error,
		Created:   tx.Created,
		Finalized: tx.Finalized,
	}
}
