// Package journal persists an audit trail of executed orders and account
// snapshots. The trade path treats journal writes as best-effort: a failed
// write is logged, never propagated.
package journal

import (
	"context"
	"time"

	"tradeforge/internal/types"
)

// Journal records orders and account snapshots.
type Journal interface {
	// RecordOrder upserts an order keyed by its id.
	RecordOrder(ctx context.Context, o types.Order) error

	// RecordAccount appends an account snapshot.
	RecordAccount(ctx context.Context, a types.Account) error

	// Orders returns the most recent orders for a symbol, newest first.
	// An empty symbol returns orders across all symbols.
	Orders(ctx context.Context, symbol string, limit int) ([]types.Order, error)

	// Close releases underlying resources.
	Close() error
}

// AccountSnapshot is a persisted account state row.
type AccountSnapshot struct {
	ID        int64
	Timestamp time.Time
	Account   types.Account
}
