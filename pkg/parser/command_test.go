package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blend-swap/pkg/types"
)

func TestParseBlendCommand(t *testing.T) {
	tests := []struct {
		command string
		want    *types.BlendRequest
	}{
		{
			"blend 1 DAI + 0.5 ETH to USDC",
			&types.BlendRequest{Legs: []types.LegRequest{{Amount: "1", Token: "DAI"}, {Amount: "0.5", Token: "ETH"}}, Output: "USDC"},
		},
		{
			"100 usdc, 2 uni into ether",
			&types.BlendRequest{Legs: []types.LegRequest{{Amount: "100", Token: "USDC"}, {Amount: "2", Token: "UNI"}}, Output: "ETH"},
		},
		{
			".25 0x6b175474e89094c44da98b954eedeac495271d0f for WETH",
			&types.BlendRequest{Legs: []types.LegRequest{{Amount: ".25", Token: "0x6B175474E89094C44DA98B954EEDEAC495271D0F"}}, Output: "WETH"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			got, err := ParseBlendCommand(tt.command)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBlendCommand_Invalid(t *testing.T) {
	for _, command := range []string{
		"",
		"blend DAI to USDC",
		"1 DAI",
		"1 DAI + UNI to USDC",
		"1 USDC + 2 DAI to USDC",
		"1..2 DAI to USDC",
	} {
		_, err := ParseBlendCommand(command)
		assert.Error(t, err, command)
	}
}

func TestParseLeg(t *testing.T) {
	leg, err := ParseLeg("  2.5   link ")
	require.NoError(t, err)
	assert.Equal(t, &types.LegRequest{Amount: "2.5", Token: "LINK"}, leg)

	_, err = ParseLeg("link 2.5")
	assert.Error(t, err)
}

func TestNormalizeTokenSymbol(t *testing.T) {
	assert.Equal(t, "ETH", NormalizeTokenSymbol(" ether "))
	assert.Equal(t, "WETH", NormalizeTokenSymbol("weth"))
	assert.Equal(t, "0xABCD", NormalizeTokenSymbol("0xabcd"))
}
