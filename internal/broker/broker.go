// Package broker defines the Broker interface implemented by the backtest
// engine and the live adapters, plus the error taxonomy live adapters use to
// decide what is retryable.
package broker

import (
	"context"

	"github.com/shopspring/decimal"
	"tradeforge/internal/types"
)

// Environment selects which broker implementation the factory builds.
type Environment string

const (
	EnvBacktest Environment = "BACKTEST"
	EnvPaper    Environment = "PAPER"
	EnvLive     Environment = "LIVE"
)

// Broker abstracts order execution and account management. Business-rule
// failures (insufficient funds, insufficient shares) are never errors: they
// come back as orders with status rejected. Errors are reserved for unknown
// ids, invalid transitions and transport failures.
type Broker interface {
	// Name returns the broker identifier (e.g. "backtest", "alpaca").
	Name() string

	// SubmitOrder submits an order for execution and returns the stored
	// order, whatever its resulting status.
	SubmitOrder(ctx context.Context, req types.OrderRequest) (*types.Order, error)

	// GetOrder looks an order up by id, falling back to client order id.
	// Returns (nil, nil) when no such order exists.
	GetOrder(ctx context.Context, idOrClientID string) (*types.Order, error)

	// GetOrders returns orders matching the filter.
	GetOrders(ctx context.Context, filter types.OrderFilter) ([]types.Order, error)

	// CancelOrder cancels an open order by id or client order id.
	CancelOrder(ctx context.Context, idOrClientID string) error

	// GetPosition returns the position for symbol, or (nil, nil) if none.
	GetPosition(ctx context.Context, symbol string) (*types.Position, error)

	// GetPositions returns all held positions.
	GetPositions(ctx context.Context) ([]types.Position, error)

	// ClosePosition sells qty of the held position (all of it when qty is
	// nil) through the regular order path.
	ClosePosition(ctx context.Context, symbol string, qty *decimal.Decimal) (*types.Order, error)

	// CloseAllPositions closes every held position.
	CloseAllPositions(ctx context.Context) ([]types.Order, error)

	// GetAccount returns a snapshot of the account's financial state.
	GetAccount(ctx context.Context) (*types.Account, error)

	// IsMarketOpen reports whether orders can currently be traded.
	IsMarketOpen(ctx context.Context) (bool, error)

	// GenerateOrderID returns a process-unique order id carrying the
	// broker's configured prefix. Callers may use it to pre-allocate
	// client order ids.
	GenerateOrderID() string
}
