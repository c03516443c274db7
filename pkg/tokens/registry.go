// Package tokens resolves currency ids and symbols to currencies using a token
// list, falling back to on-chain metadata for unlisted addresses.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"blend-swap/pkg/currency"
)

var ErrUnknownToken = errors.New("unknown token")

// InfoReader reads ERC-20 metadata from the chain.
type InfoReader interface {
	TokenInfo(ctx context.Context, token common.Address) (*currency.Currency, error)
}

// Registry maps ids, addresses and symbols to currencies of one chain.
type Registry struct {
	chainID int64
	native  *currency.Currency
	reader  InfoReader

	mu        sync.RWMutex
	byAddress map[common.Address]*currency.Currency
	bySymbol  map[string]*currency.Currency
}

// New builds a registry for chainID from the entries of list on that chain.
func New(chainID int64, list *List) *Registry {
	r := &Registry{
		chainID:   chainID,
		native:    currency.NewNative(chainID, currency.NativeID, "Ether"),
		byAddress: make(map[common.Address]*currency.Currency),
		bySymbol:  make(map[string]*currency.Currency),
	}
	if list != nil {
		for _, t := range list.Tokens {
			if t.ChainID != chainID {
				continue
			}
			r.add(currency.NewToken(chainID, common.HexToAddress(t.Address), t.Decimals, t.Symbol, t.Name))
		}
	}
	return r
}

// Load builds a registry from the list at path, or the embedded list when path is empty.
func Load(chainID int64, path string) (*Registry, error) {
	if path == "" {
		return New(chainID, DefaultList()), nil
	}
	list, err := ReadList(path)
	if err != nil {
		return nil, err
	}
	return New(chainID, list), nil
}

// WithReader enables on-chain lookups for addresses missing from the list.
func (r *Registry) WithReader(reader InfoReader) *Registry {
	r.reader = reader
	return r
}

func (r *Registry) add(c *currency.Currency) {
	r.byAddress[c.Address] = c
	sym := strings.ToUpper(c.Symbol)
	if _, taken := r.bySymbol[sym]; !taken && sym != "" {
		r.bySymbol[sym] = c
	}
}

// Native returns the chain's native coin.
func (r *Registry) Native() *currency.Currency {
	return r.native
}

// Resolve maps NativeID, a token address, or a listed symbol to a currency.
func (r *Registry) Resolve(ctx context.Context, id string) (*currency.Currency, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrUnknownToken)
	}
	if currency.IsNativeID(id) {
		return r.native, nil
	}

	if common.IsHexAddress(id) {
		addr := common.HexToAddress(id)
		r.mu.RLock()
		c, ok := r.byAddress[addr]
		r.mu.RUnlock()
		if ok {
			return c, nil
		}
		if r.reader == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownToken, addr.Hex())
		}

		c, err := r.reader.TokenInfo(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnknownToken, addr.Hex(), err)
		}
		r.mu.Lock()
		r.add(c)
		r.mu.Unlock()
		return c, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.bySymbol[strings.ToUpper(id)]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownToken, id)
}

// ResolveAll resolves every id, failing on the first unknown one.
func (r *Registry) ResolveAll(ctx context.Context, ids []string) ([]*currency.Currency, error) {
	out := make([]*currency.Currency, 0, len(ids))
	for _, id := range ids {
		c, err := r.Resolve(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// All returns every known token sorted by symbol, native coin first.
func (r *Registry) All() []*currency.Currency {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*currency.Currency, 0, len(r.byAddress))
	for _, c := range r.byAddress {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToUpper(out[i].Symbol) < strings.ToUpper(out[j].Symbol)
	})
	return append([]*currency.Currency{r.native}, out...)
}
