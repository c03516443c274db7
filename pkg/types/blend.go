package types

import "time"

// LegRequest is one "<amount> <token>" input of a blend command
type LegRequest struct {
	Amount string
	Token  string
}

// BlendRequest represents a user's blend command
type BlendRequest struct {
	Legs   []LegRequest
	Output string
}

// LegView holds formatted information about one leg for display
type LegView struct {
	Index       int    `json:"index"`
	ID          uint64 `json:"id"`
	TokenID     string `json:"tokenId"`
	Symbol      string `json:"symbol,omitempty"`
	TypedAmount string `json:"typedAmount"`
	Balance     string `json:"balance,omitempty"`
	Route       string `json:"route,omitempty"`
	Hops        int    `json:"hops,omitempty"`
	Quote       string `json:"quote,omitempty"`
	MinOut      string `json:"minOut,omitempty"`
	Price       string `json:"price,omitempty"`
	QuoteError  string `json:"quoteError,omitempty"`
	Approval    string `json:"approval"`
}

// BlendView is the display model of the whole blend
type BlendView struct {
	Legs          []LegView `json:"legs"`
	OutputTokenID string    `json:"outputTokenId"`
	OutputSymbol  string    `json:"outputSymbol,omitempty"`
	OutputBalance string    `json:"outputBalance,omitempty"`
	MinimumOutput string    `json:"minimumOutput,omitempty"`
	Recipient     string    `json:"recipient,omitempty"`
	Account       string    `json:"account,omitempty"`
	Slippage      string    `json:"slippage"`
	MaxHops       int       `json:"maxHops"`
	InputError    string    `json:"inputError,omitempty"`
	Submittable   bool      `json:"submittable"`
}

// TxView is the display model of a tracked transaction
type TxView struct {
	ID        string     `json:"id"`
	Hash      string     `json:"hash"`
	Kind      string     `json:"kind"`
	Summary   string     `json:"summary"`
	Status    string     `json:"status"`
	Block     uint64     `json:"block,omitempty"`
	Error     string     `json:"error,omitempty"`
	Created   time.Time  `json:"created"`
	Finalized *time.Time `json:"finalized,omitempty"`
}
