package currency

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	dai  = NewToken(1, common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"), 18, "DAI", "Dai Stablecoin")
	usdc = NewToken(1, common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), 6, "USDC", "USD Coin")
	eth  = NewNative(1, "ETH", "Ether")
)

func TestParseUnits(t *testing.T) {
	cases := []struct {
		in       string
		decimals uint8
		want     string
		err      error
	}{
		{"10", 18, "10000000000000000000", nil},
		{"1.5", 6, "1500000", nil},
		{".25", 2, "25", nil},
		{"0.000001", 6, "1", nil},
		{"0", 6, "0", nil},
		{"1.0000001", 6, "", ErrTooManyDecimals},
		{"abc", 6, "", ErrInvalidAmount},
		{"-1", 6, "", ErrInvalidAmount},
		{"1.2.3", 6, "", ErrInvalidAmount},
		{"", 6, "", ErrInvalidAmount},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseUnits(tc.in, tc.decimals)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "1.5", FormatUnits(big.NewInt(1_500_000), 6))
	assert.Equal(t, "0.000005", FormatUnits(big.NewInt(5), 6))
	assert.Equal(t, "0", FormatUnits(big.NewInt(0), 18))
	assert.Equal(t, "42", FormatUnits(big.NewInt(42), 0))
}

func TestTryParseAmount(t *testing.T) {
	assert.Nil(t, TryParseAmount("", dai))
	assert.Nil(t, TryParseAmount("1", nil))
	assert.Nil(t, TryParseAmount("0", dai), "zero is treated as no amount")
	assert.Nil(t, TryParseAmount("0.0000001", usdc), "more decimals than the token supports")

	a := TryParseAmount("2.5", usdc)
	require.NotNil(t, a)
	assert.Equal(t, int64(2_500_000), a.Raw.Int64())
	assert.Equal(t, "2.5 USDC", a.String())
}

func TestAmountAdd(t *testing.T) {
	a := NewAmount(usdc, big.NewInt(10))
	b := NewAmount(usdc, big.NewInt(32))

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(42), sum.Raw.Int64())
	assert.Equal(t, int64(10), a.Raw.Int64(), "operands are not mutated")

	_, err = a.Add(NewAmount(dai, big.NewInt(1)))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestCurrencyEqual(t *testing.T) {
	assert.True(t, dai.Equal(NewToken(1, dai.Address, 18, "", "")))
	assert.False(t, dai.Equal(usdc))
	assert.False(t, eth.Equal(dai))
	assert.True(t, eth.Equal(NewNative(1, "ETH", "")))
	assert.False(t, eth.Equal(NewNative(5, "ETH", "")))
	assert.Equal(t, NativeID, eth.ID())
	assert.Equal(t, dai.Address.Hex(), dai.ID())
}

func TestPercent(t *testing.T) {
	p := FromBips(50)
	assert.True(t, p.Valid())
	assert.Equal(t, "0.50%", p.String())
	assert.Equal(t, int64(995), p.ApplyComplement(big.NewInt(1000)).Int64())
	assert.Equal(t, int64(9), FromBips(1000).ApplyComplement(big.NewInt(11)).Int64(), "rounds down")
	assert.False(t, NewPercent(2, 1).Valid())
}

func TestTruncated(t *testing.T) {
	a := NewAmount(dai, new(big.Int).Mul(big.NewInt(123456789), big.NewInt(1e10)))
	assert.Equal(t, "1.23456789", a.Exact())
	assert.Equal(t, "1.2345", a.Truncated(4))
}
