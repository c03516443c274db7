package txstore

import (
	"fmt"
	"time"
)

// Kind identifies what a tracked transaction does
type Kind string

const (
	KindApproval Kind = "approval" // ERC-20 approve for a spender
	KindBlend    Kind = "blend"    // Batched multi-input swap
)

// Status defines where a tracked transaction is in its lifecycle
type Status string

const (
	StatusPending   Status = "pending"   // Broadcast, no receipt yet
	StatusConfirmed Status = "confirmed" // Mined with status 1
	StatusFailed    Status = "failed"    // Mined with status 0
)

// Transaction is a locally tracked on-chain transaction
type Transaction struct {
	// Identity
	ID      string    `json:"id"`
	Hash    string    `json:"hash"`
	Kind    Kind      `json:"kind"`
	Summary string    `json:"summary"`
	Created time.Time `json:"created"`

	// Approval details
	Token   string `json:"token,omitempty"`   // Approved token address
	Spender string `json:"spender,omitempty"` // Approved spender address

	// Outcome
	Status    Status     `json:"status"`
	Block     uint64     `json:"block,omitempty"`
	Error     string     `json:"error,omitempty"`
	Finalized *time.Time `json:"finalized,omitempty"`
}

// Validate checks that the transaction carries the fields its kind requires
func (t *Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("transaction id is required")
	}
	if t.Hash == "" {
		return fmt.Errorf("transaction hash is required")
	}
	switch t.Kind {
	case KindApproval:
		if t.Token == "" || t.Spender == "" {
			return fmt.Errorf("approval requires token and spender")
		}
	case KindBlend:
	default:
		return fmt.Errorf("unknown transaction kind '%s'", t.Kind)
	}
	return nil
}

// IsPending returns true if no receipt has been recorded yet
func (t *Transaction) IsPending() bool {
	return t.Status == StatusPending
}
