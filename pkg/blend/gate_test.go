package blend

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blend-swap/pkg/approval"
	"blend-swap/pkg/chain"
	"blend-swap/pkg/currency"
	"blend-swap/pkg/logging"
	"blend-swap/pkg/quote"
	"blend-swap/pkg/txstore"
)

var (
	_ BlendSender  = (*chain.Client)(nil)
	_ BlendTracker = (*txstore.Manager)(nil)
)

func TestIsSubmittable(t *testing.T) {
	trade := tradeOf(dai, 1, usdc, 100)

	tests := []struct {
		name   string
		trades []*quote.Trade
		states []approval.State
		want   bool
	}{
		{"all approved", []*quote.Trade{trade, trade}, []approval.State{approval.Approved, approval.Approved}, true},
		{"one pending", []*quote.Trade{trade, trade}, []approval.State{approval.Approved, approval.Pending}, false},
		{"one unknown", []*quote.Trade{trade}, []approval.State{approval.Unknown}, false},
		{"no-trade leg ignored", []*quote.Trade{trade, nil}, []approval.State{approval.Approved, approval.NotApproved}, true},
		{"missing state", []*quote.Trade{trade, trade}, []approval.State{approval.Approved}, false},
		{"no trades", []*quote.Trade{nil}, []approval.State{approval.NotApproved}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSubmittable(tt.trades, tt.states))
		})
	}
}

type fakeSender struct {
	calls     int
	legs      []chain.BlendLeg
	minOut    *big.Int
	recipient common.Address
	value     *big.Int
	err       error
}

func (f *fakeSender) SendBlend(_ context.Context, legs []chain.BlendLeg, minOut *big.Int, recipient common.Address, value *big.Int) (common.Hash, error) {
	f.calls++
	if f.err != nil {
		return common.Hash{}, f.err
	}
	f.legs, f.minOut, f.recipient, f.value = legs, minOut, recipient, value
	return common.HexToHash("0xb1e4d"), nil
}

func newExecutor(t *testing.T, sender *fakeSender) (*Executor, *txstore.Manager) {
	t.Helper()
	tracker, err := txstore.NewManager(t.TempDir()+"/txs.json", logging.Discard(), nil)
	require.NoError(t, err)
	contract := common.HexToAddress("0xc0")
	return NewExecutor(sender, tracker, &contract, logging.Discard(), nil), tracker
}

func readyInfo(trades ...*quote.Trade) *Info {
	recipient := common.HexToAddress("0xbeef")
	out, _ := Aggregate(trades, currency.FromBips(50), usdc)
	return &Info{Trades: trades, OutputAmount: out, Recipient: &recipient, Output: usdc}
}

func approvedFor(trades []*quote.Trade) *approval.Snapshot {
	states := make([]approval.State, len(trades))
	for i, t := range trades {
		if t != nil {
			states[i] = approval.Approved
		}
	}
	return &approval.Snapshot{States: states}
}

func TestExecutor_Submit(t *testing.T) {
	sender := &fakeSender{}
	e, tracker := newExecutor(t, sender)
	trades := []*quote.Trade{tradeOf(dai, 10, usdc, 1000), nil, tradeOf(eth, 3, usdc, 2000)}
	info := readyInfo(trades...)

	hash, err := e.Submit(context.Background(), info, approvedFor(trades))
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0xb1e4d"), hash)

	assert.Equal(t, 1, sender.calls)
	require.Len(t, sender.legs, 2)
	assert.Equal(t, dai.Address, sender.legs[0].Token)
	assert.Equal(t, int64(10), sender.legs[0].Amount.Int64())
	assert.Equal(t, common.Address{}, sender.legs[1].Token)
	assert.Equal(t, []common.Address{weth.Address, usdc.Address}, sender.legs[1].Path)
	assert.Equal(t, int64(3), sender.value.Int64())
	assert.Equal(t, int64(995+1990), sender.minOut.Int64())
	assert.Equal(t, common.HexToAddress("0xbeef"), sender.recipient)

	txs := tracker.List()
	require.Len(t, txs, 1)
	assert.Equal(t, txstore.KindBlend, txs[0].Kind)
}

func TestExecutor_SubmitGuardsOrder(t *testing.T) {
	trade := tradeOf(dai, 10, usdc, 1000)

	tests := []struct {
		name string
		info *Info
		snap *approval.Snapshot
		want error
	}{
		{"no minimum output", &Info{Trades: []*quote.Trade{trade}}, nil, ErrNoMinimumOutput},
		{"no trades", &Info{Trades: []*quote.Trade{nil}, OutputAmount: currency.Zero(usdc)}, approvedFor(nil), ErrNoInputs},
		{"not approved", readyInfo(trade), &approval.Snapshot{States: []approval.State{approval.Pending}}, ErrNotApproved},
		{"no snapshot", readyInfo(trade), nil, ErrNotApproved},
		{"no recipient", &Info{Trades: []*quote.Trade{trade}, OutputAmount: currency.Zero(usdc)}, approvedFor([]*quote.Trade{trade}), ErrNoRecipient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			e, tracker := newExecutor(t, sender)

			_, err := e.Submit(context.Background(), tt.info, tt.snap)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, sender.calls)
			assert.Empty(t, tracker.List())
		})
	}
}

func TestExecutor_SubmitWithoutContract(t *testing.T) {
	trade := tradeOf(dai, 10, usdc, 1000)
	e := NewExecutor(&fakeSender{}, nil, nil, logging.Discard(), nil)

	_, err := e.Submit(context.Background(), readyInfo(trade), approvedFor([]*quote.Trade{trade}))
	assert.ErrorIs(t, err, ErrNoContract)
}

func TestExecutor_SubmitFailurePropagates(t *testing.T) {
	trade := tradeOf(dai, 10, usdc, 1000)
	sender := &fakeSender{err: errors.New("insufficient funds for gas")}
	e, tracker := newExecutor(t, sender)

	_, err := e.Submit(context.Background(), readyInfo(trade), approvedFor([]*quote.Trade{trade}))
	assert.ErrorContains(t, err, "insufficient funds for gas")
	assert.Equal(t, 1, sender.calls, "no retry")
	assert.Empty(t, tracker.List())
}
