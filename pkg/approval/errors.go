package approval

import "errors"

var (
	ErrInvalidIndex        = errors.New("no leg at index")
	ErrApprovalNotNeeded   = errors.New("approve was called unnecessarily")
	ErrMissingPrerequisite = errors.New("missing approval prerequisite")
)
