package broker

import "context"

// Operation identifies a mutating broker operation for policy checks.
type Operation string

const (
	OpSubmitOrder   Operation = "submit_order"
	OpCancelOrder   Operation = "cancel_order"
	OpClosePosition Operation = "close_position"
)

// Policy authorizes mutating operations before they touch ledger state.
// The surrounding system injects its safety/audit layer through this
// interface instead of ambient globals.
type Policy interface {
	Authorize(ctx context.Context, op Operation, symbol string) error
}

// AllowAll is the permissive default policy.
type AllowAll struct{}

// Authorize always permits the operation.
func (AllowAll) Authorize(context.Context, Operation, string) error { return nil }
