package blend

import "errors"

var (
	ErrNoMinimumOutput = errors.New("no minimum output amount")
	ErrNoInputs        = errors.New("no input legs with a trade")
	ErrNotApproved     = errors.New("not every leg is approved")
	ErrNoContract      = errors.New("blend contract not configured")
	ErrNoRecipient     = errors.New("no recipient")
)
