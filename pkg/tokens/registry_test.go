package tokens

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blend-swap/pkg/currency"
)

func TestDefaultList_Valid(t *testing.T) {
	list, err := ParseList(bytes.NewReader(defaultList))
	require.NoError(t, err)
	assert.NotEmpty(t, list.Tokens)
	assert.Equal(t, len(list.Tokens), len(DefaultList().Tokens))
}

func TestRegistry_Resolve(t *testing.T) {
	r, err := Load(1, "")
	require.NoError(t, err)
	ctx := context.Background()

	eth, err := r.Resolve(ctx, "eth")
	require.NoError(t, err)
	assert.True(t, eth.Native)

	usdc, err := r.Resolve(ctx, "usdc")
	require.NoError(t, err)
	assert.Equal(t, uint8(6), usdc.Decimals)

	byAddr, err := r.Resolve(ctx, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
	require.NoError(t, err)
	assert.Same(t, usdc, byAddr)
	assert.Equal(t, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", byAddr.ID())

	_, err = r.Resolve(ctx, "NOPE")
	assert.ErrorIs(t, err, ErrUnknownToken)
	_, err = r.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrUnknownToken)
	_, err = r.Resolve(ctx, "0x0000000000000000000000000000000000000123")
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestRegistry_FiltersChain(t *testing.T) {
	r, err := Load(5, "")
	require.NoError(t, err)
	assert.Len(t, r.All(), 1, "only the native coin")
}

type fakeReader struct {
	calls int
	err   error
}

func (f *fakeReader) TokenInfo(_ context.Context, addr common.Address) (*currency.Currency, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return currency.NewToken(1, addr, 9, "NEW", "New Token"), nil
}

func TestRegistry_OnchainFallback(t *testing.T) {
	reader := &fakeReader{}
	r := New(1, DefaultList()).WithReader(reader)
	addr := "0x0000000000000000000000000000000000000123"

	c, err := r.Resolve(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, uint8(9), c.Decimals)

	_, err = r.Resolve(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, 1, reader.calls, "cached after first lookup")

	sym, err := r.Resolve(context.Background(), "new")
	require.NoError(t, err)
	assert.Same(t, c, sym)
}

func TestRegistry_OnchainFailure(t *testing.T) {
	r := New(1, nil).WithReader(&fakeReader{err: errors.New("not a contract")})
	_, err := r.Resolve(context.Background(), "0x0000000000000000000000000000000000000123")
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"t","tokens":[{"chainId":1,"address":"0x00000000000000000000000000000000000000aa","symbol":"AAA","name":"A","decimals":4}]}`), 0600))

	r, err := Load(1, path)
	require.NoError(t, err)
	all := r.All()
	require.Len(t, all, 2)
	assert.True(t, all[0].Native)
	assert.Equal(t, "AAA", all[1].Symbol)

	require.NoError(t, os.WriteFile(path, []byte(`{"tokens":[{"chainId":1,"address":"zz"}]}`), 0600))
	_, err = Load(1, path)
	assert.Error(t, err)
}
