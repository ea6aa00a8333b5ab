package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"tradeforge/internal/alerting"
	"tradeforge/internal/broker"
	"tradeforge/internal/journal"
	"tradeforge/internal/metrics"
	"tradeforge/internal/types"
)

// Compile-time interface check.
var _ broker.Broker = (*Engine)(nil)

// Engine is the backtest broker facade. A single mutex serializes every
// mutating operation so read-validate-mutate sequences never interleave;
// reads take the shared lock.
type Engine struct {
	cfg    Config
	fill   *fillEngine
	logger *slog.Logger
	policy broker.Policy

	metrics *metrics.Recorder
	journal journal.Journal
	alerter alerting.Alerter

	now func() time.Time

	mu        sync.RWMutex
	account   *accountLedger
	positions *positionLedger
	orders    *orderStore
	overrides map[string]decimal.Decimal
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithPolicy sets the authorization policy for mutating operations.
func WithPolicy(p broker.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = r }
}

// WithJournal sets the trade journal. Journal writes are best-effort.
func WithJournal(j journal.Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithAlerter sets the alerter notified of fills and rejections.
func WithAlerter(a alerting.Alerter) Option {
	return func(e *Engine) { e.alerter = a }
}

// withClock overrides the time source in tests.
func withClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates a backtest engine from cfg. Zero-value config fields take
// their documented defaults.
func New(cfg Config, opts ...Option) *Engine {
	cfg = cfg.withDefaults()

	e := &Engine{
		cfg:       cfg,
		fill:      newFillEngine(cfg),
		logger:    slog.Default(),
		policy:    broker.AllowAll{},
		now:       time.Now,
		account:   newAccountLedger("BACKTEST", cfg.Currency, cfg.InitialCash),
		positions: newPositionLedger(),
		orders:    newOrderStore(),
		overrides: make(map[string]decimal.Decimal),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns "backtest".
func (e *Engine) Name() string {
	return "backtest"
}

// SubmitOrder runs the fill engine against the current ledger state and
// stores the resulting order. Business-rule failures come back as a stored
// rejected order, not an error; ledgers are only mutated on a fill.
func (e *Engine) SubmitOrder(ctx context.Context, req types.OrderRequest) (*types.Order, error) {
	start := e.now()

	symbol, err := req.Target.Resolve()
	if err != nil {
		return nil, err
	}
	if req.Qty.LessThanOrEqual(decimal.Zero) {
		return nil, types.ErrInvalidOrderQty
	}
	if err := e.policy.Authorize(ctx, broker.OpSubmitOrder, symbol); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	o := e.submitLocked(ctx, req, symbol)
	if e.metrics != nil {
		e.metrics.RecordOrderLatency(e.now().Sub(start))
	}
	return o, nil
}

// submitLocked allocates an id, decides the outcome and applies it. The
// caller holds the write lock.
func (e *Engine) submitLocked(ctx context.Context, req types.OrderRequest, symbol string) *types.Order {
	now := e.now()
	if req.Side == "" {
		req.Side = types.SideBuy
	}
	if req.Type == "" {
		req.Type = types.OrderTypeMarket
	}
	if req.TimeInForce == "" {
		req.TimeInForce = types.TimeInForceDay
	}

	o := &types.Order{
		ID:            e.GenerateOrderID(),
		ClientOrderID: req.ClientOrderID,
		Target:        req.Target,
		Symbol:        symbol,
		Qty:           req.Qty,
		Side:          req.Side,
		Type:          req.Type,
		TimeInForce:   req.TimeInForce,
		LimitPrice:    req.LimitPrice,
		StopPrice:     req.StopPrice,
		Status:        types.OrderStatusAccepted,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	out := e.fill.decide(req, e.resolvePrice(symbol), e.account.cash, e.positions.get(symbol), false)
	e.applyOutcome(o, out)
	e.orders.insert(o)

	if o.Status == types.OrderStatusAccepted && (o.Type == types.OrderTypeMarket || o.Type == types.OrderTypeLimit) {
		e.orders.trackPending(o.ID, req)
	}

	e.observe(ctx, o)
	cp := *o
	return &cp
}

// applyOutcome maps the fill decision onto the order and, for a fill,
// mutates the ledgers. Rejected and accepted outcomes touch nothing.
func (e *Engine) applyOutcome(o *types.Order, out outcome) {
	switch out.kind {
	case outcomeFilled:
		if o.Side == types.SideBuy {
			e.account.debit(out.price.Mul(out.qty).Add(e.cfg.Commission))
			e.positions.applyBuy(o.Symbol, out.qty, out.price)
		} else {
			e.account.credit(out.price.Mul(out.qty).Sub(e.cfg.Commission))
			e.positions.applySell(o.Symbol, out.qty)
		}
		o.Status = types.OrderStatusFilled
		o.FilledQty = out.qty
		o.FilledAvgPrice = out.price
	case outcomeRejected:
		o.Status = types.OrderStatusRejected
		o.RejectReason = out.reason
	case outcomeAccepted:
		o.Status = types.OrderStatusAccepted
	}
	o.UpdatedAt = e.now()
}

// observe emits logging, metrics, journal and alert side effects for an
// order reaching a new status. The caller holds the write lock.
func (e *Engine) observe(ctx context.Context, o *types.Order) {
	switch o.Status {
	case types.OrderStatusFilled:
		e.logger.Info("order filled",
			"order_id", o.ID,
			"symbol", o.Symbol,
			"side", o.Side,
			"qty", o.FilledQty,
			"price", o.FilledAvgPrice,
			"cash", e.account.cash,
		)
		if e.alerter != nil {
			e.alerter.Alert(ctx, alerting.SeverityInfo, "order filled",
				"order_id", o.ID, "symbol", o.Symbol, "side", string(o.Side),
				"qty", o.FilledQty.String(), "price", o.FilledAvgPrice.String())
		}
	case types.OrderStatusRejected:
		e.logger.Info("order rejected",
			"order_id", o.ID,
			"symbol", o.Symbol,
			"side", o.Side,
			"qty", o.Qty,
			"reason", o.RejectReason,
		)
		if e.metrics != nil {
			e.metrics.RecordRejection(o.RejectReason)
		}
		if e.alerter != nil {
			e.alerter.Alert(ctx, alerting.SeverityWarning, "order rejected",
				"order_id", o.ID, "symbol", o.Symbol, "reason", o.RejectReason)
		}
	case types.OrderStatusCanceled:
		e.logger.Info("order canceled", "order_id", o.ID, "symbol", o.Symbol)
		if e.metrics != nil {
			e.metrics.RecordCancellation()
		}
	default:
		e.logger.Debug("order accepted", "order_id", o.ID, "symbol", o.Symbol)
	}

	if e.metrics != nil {
		e.metrics.RecordOrder(o.Symbol, string(o.Side), string(o.Status))
		e.metrics.RecordCash(e.account.cash)
		e.metrics.RecordOpenPositions(e.positions.count())
	}
	if e.journal != nil && o.Status.IsTerminal() {
		if err := e.journal.RecordOrder(ctx, *o); err != nil {
			e.logger.Warn("journal write failed", "order_id", o.ID, "error", err)
		}
	}
}

// resolvePrice resolves the base price for symbol: test overrides first,
// then the configured source, then the default price. Caller holds a lock.
func (e *Engine) resolvePrice(symbol string) decimal.Decimal {
	if p, ok := e.overrides[symbol]; ok {
		return p
	}
	if e.cfg.PriceSource != nil {
		if p, ok := e.cfg.PriceSource.Price(symbol); ok {
			return p
		}
	}
	return e.cfg.DefaultPrice
}

// GetOrder looks an order up by id or client order id. Returns (nil, nil)
// when absent.
func (e *Engine) GetOrder(_ context.Context, idOrClientID string) (*types.Order, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	o := e.orders.get(idOrClientID)
	if o == nil {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

// GetOrders returns orders matching the filter, in submission order.
func (e *Engine) GetOrders(_ context.Context, filter types.OrderFilter) ([]types.Order, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.orders.list(filter), nil
}

// CancelOrder cancels an open order. Canceling an unknown id fails with
// ErrOrderNotFound; canceling a terminal order fails with
// ErrCannotCancelCompleted. No ledger reversal happens: a canceled order was
// never filled.
func (e *Engine) CancelOrder(ctx context.Context, idOrClientID string) error {
	if err := e.policy.Authorize(ctx, broker.OpCancelOrder, ""); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	o := e.orders.get(idOrClientID)
	if o == nil {
		return types.ErrOrderNotFound
	}
	if o.Status.IsTerminal() {
		return types.ErrCannotCancelCompleted
	}

	o.Status = types.OrderStatusCanceled
	o.UpdatedAt = e.now()
	e.orders.clearPending(o.ID)
	e.observe(ctx, o)
	return nil
}

// GetPosition returns the position for symbol, or (nil, nil) if none held.
func (e *Engine) GetPosition(_ context.Context, symbol string) (*types.Position, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	pos := e.positions.get(symbol)
	if pos == nil {
		return nil, nil
	}
	cp := *pos
	return &cp, nil
}

// GetPositions returns all held positions sorted by symbol.
func (e *Engine) GetPositions(_ context.Context) ([]types.Position, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.positions.list(), nil
}

// ClosePosition submits an opposite-side market sell of qty (all held when
// qty is nil) through the regular fill path. Closing an unheld symbol fails
// with ErrPositionNotFound; closing more than held fails with
// ErrCannotCloseMoreThanHeld.
func (e *Engine) ClosePosition(ctx context.Context, symbol string, qty *decimal.Decimal) (*types.Order, error) {
	if err := e.policy.Authorize(ctx, broker.OpClosePosition, symbol); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closeLocked(ctx, symbol, qty)
}

func (e *Engine) closeLocked(ctx context.Context, symbol string, qty *decimal.Decimal) (*types.Order, error) {
	pos := e.positions.get(symbol)
	if pos == nil {
		return nil, types.ErrPositionNotFound
	}

	closeQty := pos.Qty
	if qty != nil {
		if qty.GreaterThan(pos.Qty) {
			return nil, types.ErrCannotCloseMoreThanHeld
		}
		closeQty = *qty
	}

	req := types.OrderRequest{
		Target:      types.Single(symbol),
		Qty:         closeQty,
		Side:        types.SideSell,
		Type:        types.OrderTypeMarket,
		TimeInForce: types.TimeInForceDay,
	}
	return e.submitLocked(ctx, req, symbol), nil
}

// CloseAllPositions closes every held position.
func (e *Engine) CloseAllPositions(ctx context.Context) ([]types.Order, error) {
	if err := e.policy.Authorize(ctx, broker.OpClosePosition, ""); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var orders []types.Order
	for _, symbol := range e.positions.symbols() {
		o, err := e.closeLocked(ctx, symbol, nil)
		if err != nil {
			return orders, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

// GetAccount returns an account snapshot. Portfolio value marks every held
// position to its current resolved price.
func (e *Engine) GetAccount(_ context.Context) (*types.Account, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	positionsValue := decimal.Zero
	for _, pos := range e.positions.list() {
		positionsValue = positionsValue.Add(pos.Qty.Mul(e.resolvePrice(pos.Symbol)))
	}

	acct := e.account.snapshot(positionsValue)
	return &acct, nil
}

// IsMarketOpen always reports true: the simulated market has no sessions.
func (e *Engine) IsMarketOpen(context.Context) (bool, error) {
	return true, nil
}

// GenerateOrderID returns a process-unique id carrying the configured
// prefix.
func (e *Engine) GenerateOrderID() string {
	return fmt.Sprintf("%s-%s", e.cfg.OrderIDPrefix, uuid.NewString())
}

// SetCash overwrites the cash balance. Test utility.
func (e *Engine) SetCash(v decimal.Decimal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.account.setCash(v)
}

// Cash returns the current cash balance. Test utility.
func (e *Engine) Cash() decimal.Decimal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.account.cash
}

// UpdatePrices merges per-symbol price overrides consulted ahead of the
// configured price source. Test utility.
func (e *Engine) UpdatePrices(prices map[string]decimal.Decimal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for sym, p := range prices {
		e.overrides[sym] = p
	}
}

// TriggerFills re-runs the fill attempt for every accepted market or limit
// order, in submission order. Stop and stop-limit orders stay accepted. An
// order failing the attempt is rejected for good.
func (e *Engine) TriggerFills(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range e.orders.pendingIDs() {
		o := e.orders.get(id)
		req, ok := e.orders.pendingRequest(id)
		if o == nil || !ok || o.Status != types.OrderStatusAccepted {
			e.orders.clearPending(id)
			continue
		}

		out := e.fill.decide(req, e.resolvePrice(o.Symbol), e.account.cash, e.positions.get(o.Symbol), true)
		if out.kind == outcomeAccepted {
			continue
		}

		e.applyOutcome(o, out)
		e.orders.clearPending(id)
		e.observe(ctx, o)
	}
}

// Reset restores cash, positions, orders and price overrides to their
// construction-time state.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.account.reset()
	e.positions.reset()
	e.orders.reset()
	e.overrides = make(map[string]decimal.Decimal)
	e.logger.Info("engine reset", "cash", e.account.cash)
}
