// Package blend holds the multi-input swap state, the reducer that evolves it,
// and the derivation, aggregation and execution steps built on top of it.
package blend

// Field identifies which side of the blend an action targets.
type Field string

const (
	FieldInput  Field = "INPUT"
	FieldOutput Field = "OUTPUT"
)

// Leg is one input slot. TokenID is empty until a currency is selected.
type Leg struct {
	ID      uint64 `json:"id"`
	TokenID string `json:"tokenId"`
}

// State is the full multi-input swap state. Legs and TypedAmounts are index
// aligned and both have LegCount entries.
type State struct {
	IndependentField Field    `json:"independentField"`
	LegCount         int      `json:"legCount"`
	TypedAmounts     []string `json:"typedAmounts"`
	Legs             []Leg    `json:"legs"`
	OutputTokenID    string   `json:"outputTokenId"`
	Recipient        *string  `json:"recipient"`
	NextLegID        uint64   `json:"nextLegId"`
}

// InitialState returns a state with a single empty leg and no output.
func InitialState() State {
	return State{
		IndependentField: FieldInput,
		LegCount:         1,
		TypedAmounts:     []string{""},
		Legs:             []Leg{{ID: 0}},
		NextLegID:        1,
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.TypedAmounts = append([]string(nil), s.TypedAmounts...)
	out.Legs = append([]Leg(nil), s.Legs...)
	if s.Recipient != nil {
		r := *s.Recipient
		out.Recipient = &r
	}
	return out
}

// TokenIDs returns the selected token id of every leg.
func (s State) TokenIDs() []string {
	ids := make([]string, len(s.Legs))
	for i, l := range s.Legs {
		ids[i] = l.TokenID
	}
	return ids
}

// ActionType names a state transition.
type ActionType string

const (
	ActionSelectCurrency ActionType = "selectCurrency"
	ActionTypeInput      ActionType = "typeInput"
	ActionAddInput       ActionType = "addInput"
	ActionRemoveInput    ActionType = "removeInput"
	ActionSetRecipient   ActionType = "setRecipient"
	ActionSelectOutput   ActionType = "selectOutput"
)

// Action is a serializable state transition request.
type Action struct {
	Type      ActionType `json:"type"`
	Field     Field      `json:"field,omitempty"`
	TokenID   string     `json:"tokenId,omitempty"`
	Index     *int       `json:"index,omitempty"`
	Value     string     `json:"value,omitempty"`
	Recipient *string    `json:"recipient,omitempty"`
}

func SelectInput(index int, tokenID string) Action {
	return Action{Type: ActionSelectCurrency, Field: FieldInput, TokenID: tokenID, Index: &index}
}

func SelectOutput(tokenID string) Action {
	return Action{Type: ActionSelectOutput, Field: FieldOutput, TokenID: tokenID}
}

func TypeInput(index int, value string) Action {
	return Action{Type: ActionTypeInput, Field: FieldInput, Value: value, Index: &index}
}

func AddInput() Action {
	return Action{Type: ActionAddInput}
}

func RemoveInput(index int) Action {
	return Action{Type: ActionRemoveInput, Index: &index}
}

// SetRecipient sets the recipient. A nil recipient means the sender.
func SetRecipient(recipient *string) Action {
	return Action{Type: ActionSetRecipient, Recipient: recipient}
}
