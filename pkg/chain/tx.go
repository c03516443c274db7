package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// EstimateApprove estimates the gas of approve(spender, amount) on token
func (c *Client) EstimateApprove(ctx context.Context, token, spender common.Address, amount *big.Int) (uint64, error) {
	if c.from == nil {
		return 0, ErrNoSigner
	}

	data, err := c.erc20ABI.Pack("approve", spender, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to pack approve data: %w", err)
	}

	gas, err := c.client.EstimateGas(ctx, ethereum.CallMsg{
		From: *c.from,
		To:   &token,
		Data: data,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to estimate approve gas: %w", err)
	}
	return gas, nil
}

// Approve sends approve(spender, amount) on token with the given gas limit
func (c *Client) Approve(ctx context.Context, token, spender common.Address, amount *big.Int, gasLimit uint64) (common.Hash, error) {
	data, err := c.erc20ABI.Pack("approve", spender, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack approve data: %w", err)
	}
	return c.send(ctx, token, big.NewInt(0), gasLimit, data)
}

// SendBlend calls blend(legs, minAmountOut, recipient) on the blend contract,
// attaching value for native legs. Gas is estimated with a 20% buffer.
func (c *Client) SendBlend(ctx context.Context, legs []BlendLeg, minAmountOut *big.Int, recipient common.Address, value *big.Int) (common.Hash, error) {
	if c.blend == (common.Address{}) {
		return common.Hash{}, fmt.Errorf("blend: %w", ErrNoContract)
	}
	if c.from == nil {
		return common.Hash{}, ErrNoSigner
	}

	data, err := c.blendABI.Pack("blend", legs, minAmountOut, recipient)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack blend data: %w", err)
	}

	to := c.blend
	gas, err := c.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  *c.from,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to estimate blend gas: %w", err)
	}

	return c.send(ctx, to, value, gas*120/100, data)
}

// send signs and broadcasts a legacy transaction from the configured key
func (c *Client) send(ctx context.Context, to common.Address, value *big.Int, gasLimit uint64, data []byte) (common.Hash, error) {
	if c.privateKey == nil {
		return common.Hash{}, ErrNoSigner
	}
	if c.chainID == 0 {
		return common.Hash{}, fmt.Errorf("chain id not configured")
	}

	// Get nonce
	nonce, err := c.client.PendingNonceAt(ctx, *c.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	// Get gas price
	gasPrice, err := c.getGasPrice(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	if value == nil {
		value = big.NewInt(0)
	}

	// Create transaction
	tx := types.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)

	// Sign transaction
	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(big.NewInt(c.chainID)), c.privateKey)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	// Send transaction
	if err := c.client.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	c.logger.Debug("transaction sent", "hash", signedTx.Hash().Hex(), "to", to.Hex(), "nonce", nonce, "gas", gasLimit)
	return signedTx.Hash(), nil
}

// getGasPrice returns the gas price to use for transactions
func (c *Client) getGasPrice(ctx context.Context) (*big.Int, error) {
	// Use configured gas price if available
	if c.gasPrice != nil {
		return big.NewInt(*c.gasPrice), nil
	}

	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	return gasPrice, nil
}
