package chain

import (
	"context"
	"errors"
	"math/big"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blend-swap/pkg/currency"
	"blend-swap/pkg/logging"
)

var (
	tokenAddr  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	routerAddr = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	blendAddr  = common.HexToAddress("0x00000000000000000000000000000000000000cc")
	holder     = common.HexToAddress("0x00000000000000000000000000000000000000dd")
)

type callArgs struct {
	From  *common.Address `json:"from"`
	To    *common.Address `json:"to"`
	Data  hexutil.Bytes   `json:"data"`
	Input hexutil.Bytes   `json:"input"`
	Value *hexutil.Big    `json:"value"`
}

func (a callArgs) payload() []byte {
	if len(a.Input) > 0 {
		return a.Input
	}
	return a.Data
}

type fakeEth struct {
	mu sync.Mutex

	erc20  abi.ABI
	router abi.ABI

	tokenBalance  *big.Int
	nativeBalance *big.Int
	allowance     *big.Int
	amountsOut    []*big.Int
	// approvals above this amount fail estimation when set
	approveLimit *big.Int

	estimates []*big.Int
	sent      []*types.Transaction
}

func newFakeEth(t *testing.T) *fakeEth {
	t.Helper()
	erc20, err := abi.JSON(strings.NewReader(erc20ABI))
	require.NoError(t, err)
	router, err := abi.JSON(strings.NewReader(routerABI))
	require.NoError(t, err)
	return &fakeEth{
		erc20:         erc20,
		router:        router,
		tokenBalance:  big.NewInt(0),
		nativeBalance: big.NewInt(0),
		allowance:     big.NewInt(0),
	}
}

func (f *fakeEth) Call(ctx context.Context, args callArgs, _ gethrpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data := args.payload()
	if len(data) < 4 {
		return nil, errors.New("execution reverted")
	}
	if args.To != nil && *args.To == routerAddr {
		m, err := f.router.MethodById(data[:4])
		if err != nil {
			return nil, err
		}
		if f.amountsOut == nil {
			return nil, errors.New("execution reverted: INSUFFICIENT_LIQUIDITY")
		}
		return m.Outputs.Pack(f.amountsOut)
	}

	m, err := f.erc20.MethodById(data[:4])
	if err != nil {
		return nil, err
	}
	switch m.Name {
	case "balanceOf":
		return m.Outputs.Pack(f.tokenBalance)
	case "allowance":
		return m.Outputs.Pack(f.allowance)
	case "decimals":
		return m.Outputs.Pack(uint8(6))
	case "symbol":
		return m.Outputs.Pack("USDC")
	case "name":
		return m.Outputs.Pack("USD Coin")
	}
	return nil, errors.New("execution reverted")
}

func (f *fakeEth) EstimateGas(ctx context.Context, args callArgs, _ *gethrpc.BlockNumberOrHash) (hexutil.Uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data := args.payload()
	if m, err := f.erc20.MethodById(data[:4]); err == nil && m.Name == "approve" {
		in, err := m.Inputs.Unpack(data[4:])
		if err != nil {
			return 0, err
		}
		amount := in[1].(*big.Int)
		f.estimates = append(f.estimates, amount)
		if f.approveLimit != nil && amount.Cmp(f.approveLimit) > 0 {
			return 0, errors.New("execution reverted: approve amount exceeds limit")
		}
		return 46_000, nil
	}
	return 200_000, nil
}

func (f *fakeEth) GetBalance(ctx context.Context, addr common.Address, _ gethrpc.BlockNumberOrHash) (*hexutil.Big, error) {
	return (*hexutil.Big)(f.nativeBalance), nil
}

func (f *fakeEth) GetTransactionCount(ctx context.Context, addr common.Address, _ gethrpc.BlockNumberOrHash) (hexutil.Uint64, error) {
	return 7, nil
}

func (f *fakeEth) GasPrice(ctx context.Context) (*hexutil.Big, error) {
	return (*hexutil.Big)(big.NewInt(2_000_000_000)), nil
}

func (f *fakeEth) SendRawTransaction(ctx context.Context, raw hexutil.Bytes) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, err
	}
	f.sent = append(f.sent, tx)
	return tx.Hash(), nil
}

func newInprocEthClient(t *testing.T, fe *fakeEth) *ethclient.Client {
	t.Helper()
	srv := gethrpc.NewServer()
	// Register under the standard "eth" namespace so methods map to eth_*
	if err := srv.RegisterName("eth", fe); err != nil {
		t.Fatalf("register rpc service: %v", err)
	}
	c := ethclient.NewClient(gethrpc.DialInProc(srv))
	t.Cleanup(func() {
		c.Close()
		srv.Stop()
	})
	return c
}

func newTestClient(t *testing.T, fe *fakeEth, withKey bool) (*Client, common.Address) {
	t.Helper()
	opts := Options{
		ChainID: 1,
		Router:  routerAddr,
		Blend:   blendAddr,
		Logger:  logging.Discard(),
	}

	var from common.Address
	if withKey {
		key, err := crypto.GenerateKey()
		require.NoError(t, err)
		opts.PrivateKey = common.Bytes2Hex(crypto.FromECDSA(key))
		from = crypto.PubkeyToAddress(key.PublicKey)
	}

	c, err := NewClient(newInprocEthClient(t, fe), opts)
	require.NoError(t, err)
	return c, from
}

func TestClient_Reads(t *testing.T) {
	fe := newFakeEth(t)
	fe.tokenBalance = big.NewInt(1_500_000)
	fe.nativeBalance = big.NewInt(3e18)
	fe.allowance = big.NewInt(42)
	c, _ := newTestClient(t, fe, false)
	ctx := context.Background()

	assert.Nil(t, c.Account())

	usdc := currency.NewToken(1, tokenAddr, 6, "USDC", "USD Coin")
	bal, err := c.BalanceOf(ctx, holder, usdc)
	require.NoError(t, err)
	assert.Equal(t, int64(1_500_000), bal.Int64())

	bal, err = c.BalanceOf(ctx, holder, currency.NewNative(1, "ETH", "Ether"))
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Cmp(big.NewInt(3e18)))

	allowance, err := c.Allowance(ctx, tokenAddr, holder, blendAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(42), allowance.Int64())

	info, err := c.TokenInfo(ctx, tokenAddr)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), info.Decimals)
	assert.Equal(t, "USDC", info.Symbol)
	assert.Equal(t, "USD Coin", info.Name)
	assert.Equal(t, tokenAddr, info.Address)
}

func TestClient_GetAmountsOut(t *testing.T) {
	fe := newFakeEth(t)
	c, _ := newTestClient(t, fe, false)
	path := []common.Address{tokenAddr, holder}

	_, err := c.GetAmountsOut(context.Background(), big.NewInt(10), path)
	assert.Error(t, err, "reverting path")

	fe.amountsOut = []*big.Int{big.NewInt(10), big.NewInt(19)}
	amounts, err := c.GetAmountsOut(context.Background(), big.NewInt(10), path)
	require.NoError(t, err)
	require.Len(t, amounts, 2)
	assert.Equal(t, int64(19), amounts[1].Int64())
}

func TestClient_WritesRequireSigner(t *testing.T) {
	c, _ := newTestClient(t, newFakeEth(t), false)
	ctx := context.Background()

	_, err := c.EstimateApprove(ctx, tokenAddr, blendAddr, big.NewInt(1))
	assert.ErrorIs(t, err, ErrNoSigner)
	_, err = c.Approve(ctx, tokenAddr, blendAddr, big.NewInt(1), 50_000)
	assert.ErrorIs(t, err, ErrNoSigner)
	_, err = c.SendBlend(ctx, nil, big.NewInt(1), holder, nil)
	assert.ErrorIs(t, err, ErrNoSigner)
}

func TestClient_Approve(t *testing.T) {
	fe := newFakeEth(t)
	fe.approveLimit = big.NewInt(1_000_000)
	c, from := newTestClient(t, fe, true)
	ctx := context.Background()

	_, err := c.EstimateApprove(ctx, tokenAddr, blendAddr, math.MaxBig256)
	assert.Error(t, err)

	gas, err := c.EstimateApprove(ctx, tokenAddr, blendAddr, big.NewInt(500))
	require.NoError(t, err)
	assert.Equal(t, uint64(46_000), gas)

	hash, err := c.Approve(ctx, tokenAddr, blendAddr, big.NewInt(500), 55_200)
	require.NoError(t, err)

	require.Len(t, fe.sent, 1)
	tx := fe.sent[0]
	assert.Equal(t, hash, tx.Hash())
	assert.Equal(t, tokenAddr, *tx.To())
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(55_200), tx.Gas())

	sender, err := types.Sender(types.NewEIP155Signer(big.NewInt(1)), tx)
	require.NoError(t, err)
	assert.Equal(t, from, sender)
}

func TestClient_SendBlend(t *testing.T) {
	fe := newFakeEth(t)
	c, _ := newTestClient(t, fe, true)
	recipient := common.HexToAddress("0x00000000000000000000000000000000000000ee")
	weth := common.HexToAddress("0x00000000000000000000000000000000000000ff")

	legs := []BlendLeg{
		{Token: tokenAddr, Amount: big.NewInt(100), Path: []common.Address{tokenAddr, weth}},
		{Token: common.Address{}, Amount: big.NewInt(5), Path: []common.Address{weth, tokenAddr}},
	}
	_, err := c.SendBlend(context.Background(), legs, big.NewInt(90), recipient, big.NewInt(5))
	require.NoError(t, err)

	require.Len(t, fe.sent, 1)
	tx := fe.sent[0]
	assert.Equal(t, blendAddr, *tx.To())
	assert.Equal(t, int64(5), tx.Value().Int64())
	assert.Equal(t, uint64(240_000), tx.Gas())

	method := c.blendABI.Methods["blend"]
	require.Equal(t, method.ID, tx.Data()[:4])
	args, err := method.Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, 2, reflect.ValueOf(args[0]).Len())
	assert.Equal(t, int64(90), args[1].(*big.Int).Int64())
	assert.Equal(t, recipient, args[2].(common.Address))
}

func TestClient_SendBlendWithoutContract(t *testing.T) {
	fe := newFakeEth(t)
	c, _ := newTestClient(t, fe, true)
	c.blend = common.Address{}

	assert.Nil(t, c.BlendContract())
	_, err := c.SendBlend(context.Background(), nil, big.NewInt(1), holder, nil)
	assert.ErrorIs(t, err, ErrNoContract)
	assert.Empty(t, fe.sent)
}
