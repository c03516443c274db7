package currency

import (
	"fmt"
	"math/big"
)

// Percent is a non-negative fraction Num/Den.
type Percent struct {
	Num *big.Int
	Den *big.Int
}

// NewPercent returns num/den.
func NewPercent(num, den int64) Percent {
	return Percent{Num: big.NewInt(num), Den: big.NewInt(den)}
}

// FromBips returns bips/10000.
func FromBips(bips int64) Percent {
	return NewPercent(bips, 10_000)
}

// Valid reports whether the fraction lies within [0, 1].
func (p Percent) Valid() bool {
	if p.Num == nil || p.Den == nil || p.Den.Sign() <= 0 || p.Num.Sign() < 0 {
		return false
	}
	return p.Num.Cmp(p.Den) <= 0
}

// ApplyComplement returns floor(x * (1 - p)).
func (p Percent) ApplyComplement(x *big.Int) *big.Int {
	keep := new(big.Int).Sub(p.Den, p.Num)
	out := new(big.Int).Mul(x, keep)
	return out.Quo(out, p.Den)
}

// Bips returns the percentage in basis points, rounded down.
func (p Percent) Bips() int64 {
	b := new(big.Int).Mul(p.Num, big.NewInt(10_000))
	return b.Quo(b, p.Den).Int64()
}

func (p Percent) String() string {
	b := p.Bips()
	return fmt.Sprintf("%d.%02d%%", b/100, b%100)
}
