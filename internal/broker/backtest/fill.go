package backtest

import (
	"github.com/shopspring/decimal"
	"tradeforge/internal/types"
)

type outcomeKind int

const (
	outcomeAccepted outcomeKind = iota
	outcomeFilled
	outcomeRejected
)

// outcome is the fill engine's decision for one order evaluation. Only a
// filled outcome carries a price and quantity; only a rejected one carries a
// reason. The fill engine never mutates ledger state.
type outcome struct {
	kind   outcomeKind
	price  decimal.Decimal
	qty    decimal.Decimal
	reason string
}

// fillEngine is the pure accept/reject/fill decision logic.
type fillEngine struct {
	slippage   decimal.Decimal // fractional, e.g. 10 bps -> 0.001
	commission decimal.Decimal
	fillMode   FillMode
}

func newFillEngine(cfg Config) *fillEngine {
	return &fillEngine{
		slippage:   decimal.NewFromInt(cfg.SlippageBps).Div(decimal.NewFromInt(10000)),
		commission: cfg.Commission,
		fillMode:   cfg.FillMode,
	}
}

// decide evaluates a request against the current ledger state. basePrice is
// the resolved market price before slippage; cash and held are validation
// reads. force bypasses delayed mode during a trigger pass.
//
// Stop and stop-limit orders are accepted unconditionally and never fill:
// price-crossing trigger semantics are an extension point, not implemented.
func (f *fillEngine) decide(req types.OrderRequest, basePrice, cash decimal.Decimal, held *types.Position, force bool) outcome {
	switch req.Type {
	case types.OrderTypeStop, types.OrderTypeStopLimit:
		return outcome{kind: outcomeAccepted}
	}

	if f.fillMode == FillDelayed && !force {
		return outcome{kind: outcomeAccepted}
	}

	return f.attempt(req, f.slip(basePrice, req.Side), cash, held)
}

// slip adjusts the price against the order side by the configured basis
// points.
func (f *fillEngine) slip(price decimal.Decimal, side types.OrderSide) decimal.Decimal {
	if f.slippage.IsZero() {
		return price
	}
	one := decimal.NewFromInt(1)
	if side == types.SideBuy {
		return price.Mul(one.Add(f.slippage))
	}
	return price.Mul(one.Sub(f.slippage))
}

// attempt decides a fill at price. A buy must afford price*qty+commission
// out of cash; a sell must not exceed the held quantity.
func (f *fillEngine) attempt(req types.OrderRequest, price, cash decimal.Decimal, held *types.Position) outcome {
	if req.Side == types.SideSell {
		if held == nil || held.Qty.LessThan(req.Qty) {
			return outcome{kind: outcomeRejected, reason: types.RejectInsufficientShares}
		}
		return outcome{kind: outcomeFilled, price: price, qty: req.Qty}
	}

	totalCost := price.Mul(req.Qty).Add(f.commission)
	if totalCost.GreaterThan(cash) {
		return outcome{kind: outcomeRejected, reason: types.RejectInsufficientFunds}
	}
	return outcome{kind: outcomeFilled, price: price, qty: req.Qty}
}
