// Package approval derives the ERC-20 approval state of each blend leg and
// submits approvals for legs that need one.
package approval

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"blend-swap/pkg/currency"
)

// State is the approval state of a single leg.
type State int

const (
	Unknown State = iota
	NotApproved
	Pending
	Approved
)

func (s State) String() string {
	switch s {
	case NotApproved:
		return "NOT_APPROVED"
	case Pending:
		return "PENDING"
	case Approved:
		return "APPROVED"
	default:
		return "UNKNOWN"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Compute derives the approval state of a leg that needs required to be
// spendable by spender, given the current allowance (nil when unknown) and
// whether an approval for the pair is still in flight.
func Compute(required *currency.Amount, spender *common.Address, allowance *big.Int, pending bool) State {
	if required == nil || spender == nil {
		return Unknown
	}
	if required.Currency.Native {
		return Approved
	}
	if allowance == nil {
		return Unknown
	}
	if allowance.Cmp(required.Raw) < 0 {
		if pending {
			return Pending
		}
		return NotApproved
	}
	return Approved
}
