package blend

import (
	"log/slog"
)

// Reduce applies action to state and returns the next state. It never mutates
// its input and never fails: actions addressing a leg that does not exist are
// logged and leave the state unchanged.
func Reduce(logger *slog.Logger, state State, action Action) State {
	next := state.Clone()

	switch action.Type {
	case ActionSelectOutput:
		next.OutputTokenID = action.TokenID

	case ActionSelectCurrency:
		if action.Field == FieldOutput {
			next.OutputTokenID = action.TokenID
			return next
		}
		i, ok := legIndex(logger, next, action)
		if !ok {
			return next
		}
		next.Legs[i].TokenID = action.TokenID

	case ActionTypeInput:
		i, ok := legIndex(logger, next, action)
		if !ok {
			return next
		}
		next.TypedAmounts[i] = action.Value

	case ActionAddInput:
		next.Legs = append(next.Legs, Leg{ID: next.NextLegID})
		next.TypedAmounts = append(next.TypedAmounts, "")
		next.NextLegID++
		next.LegCount++

	case ActionRemoveInput:
		i, ok := legIndex(logger, next, action)
		if !ok {
			return next
		}
		next.Legs = append(next.Legs[:i], next.Legs[i+1:]...)
		next.TypedAmounts = append(next.TypedAmounts[:i], next.TypedAmounts[i+1:]...)
		next.LegCount--

	case ActionSetRecipient:
		next.Recipient = nil
		if action.Recipient != nil {
			r := *action.Recipient
			next.Recipient = &r
		}

	default:
		logger.Warn("ignoring unknown action", "type", action.Type)
	}

	return next
}

func legIndex(logger *slog.Logger, state State, action Action) (int, bool) {
	if action.Index == nil {
		logger.Warn("no input found for index", "action", action.Type, "index", "none")
		return 0, false
	}
	i := *action.Index
	if i < 0 || i >= state.LegCount {
		logger.Warn("no input found for index", "action", action.Type, "index", i, "legs", state.LegCount)
		return 0, false
	}
	return i, true
}
