// Package currency models the native coin and ERC-20 tokens of a chain together
// with base-unit amounts and fractional percentages.
package currency

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NativeID is the currency id used for the chain's native coin.
const NativeID = "ETH"

var (
	// ErrCurrencyMismatch is returned when amounts of different currencies are combined.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrInvalidAmount is returned when a decimal string cannot be converted to base units.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrTooManyDecimals is returned when a typed amount has more fractional digits than the currency supports.
	ErrTooManyDecimals = errors.New("too many decimal places")
)

// Currency is either the chain's native coin or an ERC-20 token.
type Currency struct {
	ChainID  int64          `json:"chainId"`
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
	Native   bool           `json:"native,omitempty"`
}

// NewNative returns the native coin of chainID. Native coins always carry 18 decimals.
func NewNative(chainID int64, symbol, name string) *Currency {
	return &Currency{
		ChainID:  chainID,
		Decimals: 18,
		Symbol:   symbol,
		Name:     name,
		Native:   true,
	}
}

// NewToken returns an ERC-20 token.
func NewToken(chainID int64, address common.Address, decimals uint8, symbol, name string) *Currency {
	return &Currency{
		ChainID:  chainID,
		Address:  address,
		Decimals: decimals,
		Symbol:   symbol,
		Name:     name,
	}
}

// ID returns the identifier the state store uses for this currency: NativeID
// for the native coin, the checksummed address otherwise.
func (c *Currency) ID() string {
	if c.Native {
		return NativeID
	}
	return c.Address.Hex()
}

// IsToken reports whether the currency is an ERC-20 token.
func (c *Currency) IsToken() bool {
	return !c.Native
}

// Equal reports whether c and other denote the same currency on the same chain.
func (c *Currency) Equal(other *Currency) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.ChainID != other.ChainID || c.Native != other.Native {
		return false
	}
	return c.Native || c.Address == other.Address
}

func (c *Currency) String() string {
	if c == nil {
		return ""
	}
	if c.Symbol != "" {
		return c.Symbol
	}
	return c.ID()
}

// IsNativeID reports whether id names the native coin.
func IsNativeID(id string) bool {
	return strings.EqualFold(strings.TrimSpace(id), NativeID)
}
