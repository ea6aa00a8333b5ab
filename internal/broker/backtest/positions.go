package backtest

import (
	"sort"

	"github.com/shopspring/decimal"
	"tradeforge/internal/types"
)

// positionLedger owns all quantity and cost-basis mutations. Quantities are
// always positive; a position is deleted when its quantity reaches zero.
type positionLedger struct {
	positions map[string]*types.Position
}

func newPositionLedger() *positionLedger {
	return &positionLedger{positions: make(map[string]*types.Position)}
}

// get returns the held position for symbol, or nil.
func (l *positionLedger) get(symbol string) *types.Position {
	return l.positions[symbol]
}

// list returns copies of all positions, sorted by symbol.
func (l *positionLedger) list() []types.Position {
	out := make([]types.Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// symbols returns all held symbols, sorted.
func (l *positionLedger) symbols() []string {
	out := make([]string, 0, len(l.positions))
	for sym := range l.positions {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// applyBuy upserts the position for a filled buy. An existing position's
// entry price becomes the quantity-weighted average of the old basis and the
// new fill.
func (l *positionLedger) applyBuy(symbol string, qty, price decimal.Decimal) {
	pos, ok := l.positions[symbol]
	if !ok {
		l.positions[symbol] = &types.Position{
			Symbol:        symbol,
			Qty:           qty,
			Side:          types.PositionSideLong,
			AvgEntryPrice: price,
		}
		return
	}

	oldCost := pos.AvgEntryPrice.Mul(pos.Qty)
	newCost := price.Mul(qty)
	totalQty := pos.Qty.Add(qty)

	pos.AvgEntryPrice = oldCost.Add(newCost).Div(totalQty)
	pos.Qty = totalQty
}

// applySell reduces the position for a filled sell. The caller has already
// validated that at least qty is held.
func (l *positionLedger) applySell(symbol string, qty decimal.Decimal) {
	pos, ok := l.positions[symbol]
	if !ok {
		return
	}

	remaining := pos.Qty.Sub(qty)
	if remaining.LessThanOrEqual(decimal.Zero) {
		delete(l.positions, symbol)
		return
	}
	pos.Qty = remaining
}

func (l *positionLedger) count() int {
	return len(l.positions)
}

func (l *positionLedger) reset() {
	l.positions = make(map[string]*types.Position)
}
