package alpaca

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
	"tradeforge/internal/broker"
	"tradeforge/internal/types"
)

// Compile-time interface check.
var _ broker.Broker = (*Client)(nil)

// Client implements the Broker interface against the Alpaca API.
type Client struct {
	cfg     Config
	api     *alpaca.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a Client with the given credentials and endpoint.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRequestsPerSecond <= 0 {
		cfg.MaxRequestsPerSecond = DefaultConfig().MaxRequestsPerSecond
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultConfig().MaxRetries
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = DefaultConfig().RetryBaseDelay
	}
	if cfg.OrderIDPrefix == "" {
		cfg.OrderIDPrefix = DefaultConfig().OrderIDPrefix
	}

	api := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		BaseURL:   cfg.BaseURL,
	})

	return &Client{
		cfg:     cfg,
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(cfg.MaxRequestsPerSecond), cfg.MaxRequestsPerSecond),
		logger:  logger,
	}
}

// Name returns "alpaca".
func (c *Client) Name() string {
	return "alpaca"
}

// call rate-limits and retries fn per the broker error taxonomy.
func (c *Client) call(ctx context.Context, fn func() error) error {
	return broker.Retry(ctx, c.cfg.MaxRetries, c.cfg.RetryBaseDelay, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		return fn()
	})
}

// SubmitOrder sends the order to Alpaca.
func (c *Client) SubmitOrder(ctx context.Context, req types.OrderRequest) (*types.Order, error) {
	symbol, err := req.Target.Resolve()
	if err != nil {
		return nil, err
	}
	if req.Qty.LessThanOrEqual(decimal.Zero) {
		return nil, types.ErrInvalidOrderQty
	}

	qty := req.Qty
	placeReq := alpaca.PlaceOrderRequest{
		Symbol:        symbol,
		Qty:           &qty,
		Side:          alpaca.Side(req.Side),
		Type:          alpaca.OrderType(req.Type),
		TimeInForce:   alpaca.TimeInForce(req.TimeInForce),
		LimitPrice:    req.LimitPrice,
		StopPrice:     req.StopPrice,
		ClientOrderID: req.ClientOrderID,
	}

	var placed *alpaca.Order
	err = c.call(ctx, func() error {
		var err error
		placed, err = c.api.PlaceOrder(placeReq)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	c.logger.Info("order submitted",
		"order_id", placed.ID,
		"symbol", symbol,
		"side", req.Side,
		"qty", req.Qty,
	)
	return fromAlpacaOrder(placed), nil
}

// GetOrder looks up by order id, falling back to client order id. Returns
// (nil, nil) when Alpaca knows neither.
func (c *Client) GetOrder(ctx context.Context, idOrClientID string) (*types.Order, error) {
	var found *alpaca.Order
	err := c.call(ctx, func() error {
		var err error
		found, err = c.api.GetOrder(idOrClientID)
		return err
	})
	if err != nil {
		err = c.call(ctx, func() error {
			var innerErr error
			found, innerErr = c.api.GetOrderByClientOrderID(idOrClientID)
			return innerErr
		})
	}
	if err != nil || found == nil {
		return nil, nil
	}
	return fromAlpacaOrder(found), nil
}

// GetOrders returns orders matching the filter.
func (c *Client) GetOrders(ctx context.Context, filter types.OrderFilter) ([]types.Order, error) {
	status := "all"
	switch filter {
	case types.OrderFilterOpen:
		status = "open"
	case types.OrderFilterClosed:
		status = "closed"
	}

	var raw []alpaca.Order
	err := c.call(ctx, func() error {
		var err error
		raw, err = c.api.GetOrders(alpaca.GetOrdersRequest{Status: status})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get orders: %w", err)
	}

	orders := make([]types.Order, 0, len(raw))
	for i := range raw {
		orders = append(orders, *fromAlpacaOrder(&raw[i]))
	}
	return orders, nil
}

// CancelOrder cancels an open order.
func (c *Client) CancelOrder(ctx context.Context, idOrClientID string) error {
	o, err := c.GetOrder(ctx, idOrClientID)
	if err != nil {
		return err
	}
	if o == nil {
		return types.ErrOrderNotFound
	}
	if o.Status.IsTerminal() {
		return types.ErrCannotCancelCompleted
	}

	err = c.call(ctx, func() error {
		return c.api.CancelOrder(o.ID)
	})
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	return nil
}

// GetPosition returns the position for symbol, or (nil, nil) if none.
func (c *Client) GetPosition(ctx context.Context, symbol string) (*types.Position, error) {
	var raw *alpaca.Position
	err := c.call(ctx, func() error {
		var err error
		raw, err = c.api.GetPosition(symbol)
		return err
	})
	if err != nil || raw == nil {
		return nil, nil
	}
	return fromAlpacaPosition(raw), nil
}

// GetPositions returns all held positions.
func (c *Client) GetPositions(ctx context.Context) ([]types.Position, error) {
	var raw []alpaca.Position
	err := c.call(ctx, func() error {
		var err error
		raw, err = c.api.GetPositions()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}

	positions := make([]types.Position, 0, len(raw))
	for i := range raw {
		positions = append(positions, *fromAlpacaPosition(&raw[i]))
	}
	return positions, nil
}

// ClosePosition closes qty of the held position (all when qty is nil).
func (c *Client) ClosePosition(ctx context.Context, symbol string, qty *decimal.Decimal) (*types.Order, error) {
	pos, err := c.GetPosition(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return nil, types.ErrPositionNotFound
	}
	if qty != nil && qty.GreaterThan(pos.Qty) {
		return nil, types.ErrCannotCloseMoreThanHeld
	}

	closeReq := alpaca.ClosePositionRequest{}
	if qty != nil {
		closeReq.Qty = *qty
	}

	var closed *alpaca.Order
	err = c.call(ctx, func() error {
		var err error
		closed, err = c.api.ClosePosition(symbol, closeReq)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("close position: %w", err)
	}
	return fromAlpacaOrder(closed), nil
}

// CloseAllPositions closes every held position.
func (c *Client) CloseAllPositions(ctx context.Context) ([]types.Order, error) {
	positions, err := c.GetPositions(ctx)
	if err != nil {
		return nil, err
	}

	var orders []types.Order
	for _, pos := range positions {
		o, err := c.ClosePosition(ctx, pos.Symbol, nil)
		if err != nil {
			return orders, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

// GetAccount returns the Alpaca account snapshot.
func (c *Client) GetAccount(ctx context.Context) (*types.Account, error) {
	var raw *alpaca.Account
	err := c.call(ctx, func() error {
		var err error
		raw, err = c.api.GetAccount()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &types.Account{
		ID:              raw.ID,
		Status:          string(raw.Status),
		Currency:        raw.Currency,
		Cash:            raw.Cash,
		BuyingPower:     raw.BuyingPower,
		PortfolioValue:  raw.PortfolioValue,
		ShortingEnabled: raw.ShortingEnabled,
	}, nil
}

// IsMarketOpen reports the exchange clock.
func (c *Client) IsMarketOpen(ctx context.Context) (bool, error) {
	var clock *alpaca.Clock
	err := c.call(ctx, func() error {
		var err error
		clock, err = c.api.GetClock()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("get clock: %w", err)
	}
	return clock.IsOpen, nil
}

// GenerateOrderID returns a process-unique client order id carrying the
// configured prefix.
func (c *Client) GenerateOrderID() string {
	return fmt.Sprintf("%s-%s", c.cfg.OrderIDPrefix, uuid.NewString())
}

func fromAlpacaOrder(o *alpaca.Order) *types.Order {
	out := &types.Order{
		ID:            o.ID,
		ClientOrderID: o.ClientOrderID,
		Target:        types.Single(o.Symbol),
		Symbol:        o.Symbol,
		Side:          types.OrderSide(o.Side),
		Type:          types.OrderType(o.Type),
		TimeInForce:   types.TimeInForce(o.TimeInForce),
		LimitPrice:    o.LimitPrice,
		StopPrice:     o.StopPrice,
		Status:        mapOrderStatus(o.Status),
		FilledQty:     o.FilledQty,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.Qty != nil {
		out.Qty = *o.Qty
	}
	if o.FilledAvgPrice != nil {
		out.FilledAvgPrice = *o.FilledAvgPrice
	}
	return out
}

func mapOrderStatus(status string) types.OrderStatus {
	switch status {
	case "filled":
		return types.OrderStatusFilled
	case "canceled", "expired":
		return types.OrderStatusCanceled
	case "rejected":
		return types.OrderStatusRejected
	default:
		return types.OrderStatusAccepted
	}
}

func fromAlpacaPosition(p *alpaca.Position) *types.Position {
	side := types.PositionSideLong
	if p.Side == "short" {
		side = types.PositionSideShort
	}
	return &types.Position{
		Symbol:        p.Symbol,
		Qty:           p.Qty.Abs(),
		Side:          side,
		AvgEntryPrice: p.AvgEntryPrice,
	}
}
