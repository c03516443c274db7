package server

import "github.com/gofiber/fiber/v3"

// ErrInvalidBody indicates that the request body could not be parsed.
var ErrInvalidBody = fiber.NewError(fiber.StatusBadRequest, "invalid request body")

// ErrInvalidIndex is returned when the :index path parameter is not a number.
var ErrInvalidIndex = fiber.NewError(fiber.StatusBadRequest, "invalid leg index")

// ErrLegNotFound is returned when the index does not name an existing leg.
var ErrLegNotFound = fiber.NewError(fiber.StatusNotFound, "leg not found")

// ErrNothingToUpdate is returned when a leg update carries neither token nor amount.
var ErrNothingToUpdate = fiber.NewError(fiber.StatusBadRequest, "token or amount is required")

// ErrTokenRequired is returned when the output update has no token.
var ErrTokenRequired = fiber.NewError(fiber.StatusBadRequest, "token is required")

// ErrInvalidRecipient is returned for a recipient that is not a hex address.
var ErrInvalidRecipient = fiber.NewError(fiber.StatusBadRequest, "invalid recipient address")

// ErrLastLeg maps a refused removal of the only input to a 409.
var ErrLastLeg = fiber.NewError(fiber.StatusConflict, "cannot remove the only input")

// ErrNothingToUndo is returned when the journal is empty.
var ErrNothingToUndo = fiber.NewError(fiber.StatusConflict, "nothing to undo")

// ErrApprovalNotNeeded maps an approve call on a leg that is not NOT_APPROVED to a 409.
var ErrApprovalNotNeeded = fiber.NewError(fiber.StatusConflict, "approval not needed")

// ErrNotApproved is returned when a blend is submitted before every leg is approved.
var ErrNotApproved = fiber.NewError(fiber.StatusConflict, "not every input is approved")

// ErrChainFailure signals that the node rejected a transaction.
var ErrChainFailure = fiber.NewError(fiber.StatusBadGateway, "transaction submission failed")

// NewUnknownToken returns a 400 Bad Request for a token that cannot be resolved.
func NewUnknownToken(id string) error {
	return fiber.NewError(fiber.StatusBadRequest, "unknown token: "+id)
}

// NewUnprocessable returns a 422 carrying the reason a blend or approval
// cannot be attempted.
func NewUnprocessable(err error) error {
	return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
}
