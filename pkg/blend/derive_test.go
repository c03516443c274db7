package blend

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blend-swap/pkg/currency"
	"blend-swap/pkg/logging"
	"blend-swap/pkg/quote"
)

type fakeTokens map[string]*currency.Currency

func (f fakeTokens) Resolve(_ context.Context, id string) (*currency.Currency, error) {
	if currency.IsNativeID(id) {
		return eth, nil
	}
	for k, c := range f {
		if strings.EqualFold(k, id) {
			return c, nil
		}
	}
	return nil, errors.New("unknown token")
}

// doubleFinder quotes every input at twice its raw amount in the output currency.
type doubleFinder struct{ maxHops []int }

func (f *doubleFinder) BestTradeExactIn(_ context.Context, in *currency.Amount, out *currency.Currency, maxHops int) (*quote.Trade, error) {
	f.maxHops = append(f.maxHops, maxHops)
	if in.Currency.Equal(out) {
		return nil, nil
	}
	return tradeOf(in.Currency, in.Raw.Int64(), out, in.Raw.Int64()*2), nil
}

type fakeBalances map[string]*big.Int

func (f fakeBalances) BalanceOf(_ context.Context, _ common.Address, c *currency.Currency) (*big.Int, error) {
	if b, ok := f[c.ID()]; ok {
		return b, nil
	}
	return nil, errors.New("balance unavailable")
}

var tokens = fakeTokens{daiID: dai, usdcID: usdc, uniID: uni}

func newDeriver(finder quote.TradeFinder, balances BalanceReader, account *common.Address, singleHop bool) *Deriver {
	return NewDeriver(DeriverConfig{
		Tokens:        tokens,
		Quotes:        quote.NewResolver(finder, logging.Discard(), nil),
		Balances:      balances,
		Account:       account,
		Slippage:      currency.FromBips(50),
		SingleHopOnly: singleHop,
		Logger:        logging.Discard(),
	})
}

func TestDerive_ThreeLegs(t *testing.T) {
	account := common.HexToAddress("0xacc")
	balances := fakeBalances{dai.ID(): big.NewInt(1_000), uni.ID(): big.NewInt(1_000), eth.ID(): big.NewInt(1_000), usdc.ID(): big.NewInt(5)}
	finder := &doubleFinder{}
	d := newDeriver(finder, balances, &account, false)

	state := reduceAll(InitialState(),
		AddInput(), AddInput(),
		SelectInput(0, daiID), TypeInput(0, "0.0000000000000001"),
		SelectInput(1, "eth"), TypeInput(1, "0.0000000000000002"),
		SelectInput(2, uniID), TypeInput(2, "0.0000000000000003"),
		SelectOutput(usdcID),
	)

	info := d.Derive(context.Background(), state)
	require.Len(t, info.Trades, 3)
	for i, tr := range info.Trades {
		require.NotNil(t, tr, "leg %d", i)
	}
	assert.Equal(t, int64(100), info.ParsedAmounts[0].Raw.Int64())
	assert.True(t, info.Currencies[1].Native)

	// 200, 400, 600 less 0.5% each
	assert.Equal(t, int64(199+398+597), info.OutputAmount.Raw.Int64())
	assert.Equal(t, int64(5), info.OutputBalance.Raw.Int64())
	assert.Equal(t, int64(1_000), info.Balances[2].Raw.Int64())
	assert.Equal(t, "", info.InputError)
	assert.Equal(t, account, *info.Recipient)
	assert.Equal(t, quote.MaxHops, info.MaxHops)
}

func TestDerive_SingleHopOnly(t *testing.T) {
	finder := &doubleFinder{}
	d := newDeriver(finder, nil, nil, true)
	state := reduceAll(InitialState(), SelectInput(0, daiID), TypeInput(0, "1"), SelectOutput(usdcID))

	info := d.Derive(context.Background(), state)
	assert.Equal(t, 1, info.MaxHops)
	assert.Equal(t, []int{1}, finder.maxHops)
}

func TestDerive_InputErrors(t *testing.T) {
	account := common.HexToAddress("0xacc")
	bad := "not-an-address"

	tests := []struct {
		name     string
		account  *common.Address
		balances fakeBalances
		actions  []Action
		want     string
	}{
		{"no wallet", nil, nil, []Action{SelectInput(0, daiID), TypeInput(0, "1"), SelectOutput(usdcID)}, "Connect wallet"},
		{"no output", &account, nil, []Action{SelectInput(0, daiID), TypeInput(0, "1")}, "Select a token"},
		{"no input token", &account, nil, []Action{TypeInput(0, "1"), SelectOutput(usdcID)}, "Select a token"},
		{"unknown token", &account, nil, []Action{SelectInput(0, "0x0000000000000000000000000000000000000123"), TypeInput(0, "1"), SelectOutput(usdcID)}, "Select a token"},
		{"zero amount", &account, nil, []Action{SelectInput(0, daiID), TypeInput(0, "0"), SelectOutput(usdcID)}, "Enter an amount"},
		{"bad recipient", &account, nil, []Action{SelectInput(0, daiID), TypeInput(0, "1"), SelectOutput(usdcID), SetRecipient(&bad)}, "Invalid recipient"},
		{"short balance", &account, fakeBalances{dai.ID(): big.NewInt(1)}, []Action{SelectInput(0, daiID), TypeInput(0, "1"), SelectOutput(usdcID)}, "Insufficient DAI balance"},
		{"ok", &account, fakeBalances{dai.ID(): new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)}, []Action{SelectInput(0, daiID), TypeInput(0, "1"), SelectOutput(usdcID)}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDeriver(&doubleFinder{}, tt.balances, tt.account, false)
			info := d.Derive(context.Background(), reduceAll(InitialState(), tt.actions...))
			assert.Equal(t, tt.want, info.InputError)
		})
	}
}

func TestDerive_NoRouteLegExcluded(t *testing.T) {
	d := newDeriver(&doubleFinder{}, nil, nil, false)
	state := reduceAll(InitialState(),
		AddInput(),
		SelectInput(0, daiID), TypeInput(0, "0.000000000000000010"),
		SelectInput(1, usdcID), TypeInput(1, "1"),
		SelectOutput(usdcID),
	)

	info := d.Derive(context.Background(), state)
	assert.NotNil(t, info.Trades[0])
	assert.Nil(t, info.Trades[1], "same token as output has no route")
	assert.Equal(t, 1, info.TradeCount())
	assert.Equal(t, int64(19), info.OutputAmount.Raw.Int64())
}
