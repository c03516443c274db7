package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"blend-swap/pkg/currency"
)

var (
	// ErrNoSigner is returned by write calls when no private key is configured.
	ErrNoSigner = errors.New("no private key configured")
	// ErrNoContract is returned when a required contract address is not configured.
	ErrNoContract = errors.New("contract address not configured")
)

// BlendLeg is one input of a blend call. Token is the zero address for the
// native coin.
type BlendLeg struct {
	Token  common.Address
	Amount *big.Int
	Path   []common.Address
}

// Options configures a Client
type Options struct {
	ChainID    int64
	PrivateKey string
	Router     common.Address
	Blend      common.Address
	GasPrice   *int64
	Logger     *slog.Logger
}

// Client reads token state and sends approve and blend transactions on an EVM chain
type Client struct {
	client     *ethclient.Client
	chainID    int64
	privateKey *ecdsa.PrivateKey
	from       *common.Address
	router     common.Address
	blend      common.Address
	gasPrice   *int64
	logger     *slog.Logger

	erc20ABI  abi.ABI
	routerABI abi.ABI
	blendABI  abi.ABI
}

// Dial connects to rpcURL and returns a Client
func Dial(rpcURL string, opts Options) (*Client, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("RPC URL not configured")
	}

	// Connect to the RPC endpoint
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	c, err := NewClient(client, opts)
	if err != nil {
		client.Close()
		return nil, err
	}
	return c, nil
}

// NewClient wraps an existing ethclient
func NewClient(client *ethclient.Client, opts Options) (*Client, error) {
	c := &Client{
		client:   client,
		chainID:  opts.ChainID,
		router:   opts.Router,
		blend:    opts.Blend,
		gasPrice: opts.GasPrice,
		logger:   opts.Logger,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	var err error
	if c.erc20ABI, err = abi.JSON(strings.NewReader(erc20ABI)); err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}
	if c.routerABI, err = abi.JSON(strings.NewReader(routerABI)); err != nil {
		return nil, fmt.Errorf("failed to parse router ABI: %w", err)
	}
	if c.blendABI, err = abi.JSON(strings.NewReader(blendABI)); err != nil {
		return nil, fmt.Errorf("failed to parse blend ABI: %w", err)
	}

	if opts.PrivateKey != "" {
		// Parse private key
		privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(opts.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
		from := crypto.PubkeyToAddress(privateKey.PublicKey)
		c.privateKey = privateKey
		c.from = &from
	}

	return c, nil
}

// Account returns the signer address, nil when no key is configured
func (c *Client) Account() *common.Address {
	if c.from == nil {
		return nil
	}
	a := *c.from
	return &a
}

// ChainID returns the configured chain id
func (c *Client) ChainID() int64 {
	return c.chainID
}

// BlendContract returns the blend contract address, nil when not configured
func (c *Client) BlendContract() *common.Address {
	if c.blend == (common.Address{}) {
		return nil
	}
	a := c.blend
	return &a
}

// Allowance returns how much of token spender may move on behalf of owner
func (c *Client) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	out, err := c.call(ctx, c.erc20ABI, token, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

// BalanceOf returns the balance of owner in c, reading the native balance for the native coin
func (c *Client) BalanceOf(ctx context.Context, owner common.Address, cur *currency.Currency) (*big.Int, error) {
	if cur.Native {
		balance, err := c.client.BalanceAt(ctx, owner, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to get balance: %w", err)
		}
		return balance, nil
	}

	out, err := c.call(ctx, c.erc20ABI, cur.Address, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

// TokenInfo reads decimals, symbol and name of an ERC20 token
func (c *Client) TokenInfo(ctx context.Context, token common.Address) (*currency.Currency, error) {
	out, err := c.call(ctx, c.erc20ABI, token, "decimals")
	if err != nil {
		return nil, err
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return nil, fmt.Errorf("unexpected decimals type %T", out[0])
	}

	// symbol and name are optional in ERC20
	var symbol, name string
	if out, err := c.call(ctx, c.erc20ABI, token, "symbol"); err == nil {
		symbol, _ = out[0].(string)
	}
	if out, err := c.call(ctx, c.erc20ABI, token, "name"); err == nil {
		name, _ = out[0].(string)
	}

	return currency.NewToken(c.chainID, token, decimals, symbol, name), nil
}

// GetAmountsOut prices amountIn along path using the router
func (c *Client) GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	if c.router == (common.Address{}) {
		return nil, fmt.Errorf("router: %w", ErrNoContract)
	}
	out, err := c.call(ctx, c.routerABI, c.router, "getAmountsOut", amountIn, path)
	if err != nil {
		return nil, err
	}
	amounts, ok := out[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected getAmountsOut type %T", out[0])
	}
	return amounts, nil
}

// TransactionReceipt returns the receipt of a mined transaction
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return c.client.TransactionReceipt(ctx, hash)
}

// Close closes the client connection
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *Client) call(ctx context.Context, parsed abi.ABI, to common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s data: %w", method, err)
	}

	msg := ethereum.CallMsg{
		To:   &to,
		Data: data,
	}
	result, err := c.client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	out, err := parsed.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty %s result", method)
	}
	return out, nil
}
