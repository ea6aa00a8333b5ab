package types

import "errors"

// Sentinel errors for the trading system. The message texts of the order and
// position errors are part of the API contract: external callers match on
// them.
var (
	// Order errors
	ErrOrderNotFound         = errors.New("Order not found")
	ErrCannotCancelCompleted = errors.New("Cannot cancel completed order")
	ErrInvalidOrderQty       = errors.New("order quantity must be positive")
	ErrEmptyTarget           = errors.New("order target has no symbol")

	// Position errors
	ErrPositionNotFound        = errors.New("Position not found")
	ErrCannotCloseMoreThanHeld = errors.New("Cannot close more than held")

	// Bootstrap errors
	ErrUnknownEnvironment = errors.New("Unknown environment")
	ErrMissingCredentials = errors.New("missing broker credentials")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// Rejection reasons carried on rejected orders. Rejections are expected
// business outcomes, never returned as errors.
const (
	RejectInsufficientFunds  = "insufficient funds"
	RejectInsufficientShares = "insufficient shares"
)
