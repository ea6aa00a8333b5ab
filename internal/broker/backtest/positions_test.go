package backtest

import (
	"testing"

	"github.com/shopspring/decimal"
	"tradeforge/internal/types"
)

func TestPositionLedger_ApplyBuy(t *testing.T) {
	l := newPositionLedger()

	l.applyBuy("AAPL", decimal.NewFromInt(10), decimal.NewFromInt(100))

	pos := l.get("AAPL")
	if pos == nil {
		t.Fatal("expected position after buy")
	}
	if pos.Side != types.PositionSideLong {
		t.Errorf("Side = %s, want long", pos.Side)
	}
	if !pos.AvgEntryPrice.Equal(decimal.NewFromInt(100)) {
		t.Errorf("AvgEntryPrice = %s, want 100", pos.AvgEntryPrice)
	}

	// (10*100 + 10*200) / 20 = 150
	l.applyBuy("AAPL", decimal.NewFromInt(10), decimal.NewFromInt(200))
	pos = l.get("AAPL")
	if !pos.Qty.Equal(decimal.NewFromInt(20)) {
		t.Errorf("Qty = %s, want 20", pos.Qty)
	}
	if !pos.AvgEntryPrice.Equal(decimal.NewFromInt(150)) {
		t.Errorf("AvgEntryPrice = %s, want weighted 150", pos.AvgEntryPrice)
	}
}

func TestPositionLedger_ApplySell(t *testing.T) {
	l := newPositionLedger()
	l.applyBuy("AAPL", decimal.NewFromInt(10), decimal.NewFromInt(100))

	l.applySell("AAPL", decimal.NewFromInt(4))
	pos := l.get("AAPL")
	if pos == nil || !pos.Qty.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("position = %+v, want qty 6", pos)
	}
	// Selling never reprices the remaining basis.
	if !pos.AvgEntryPrice.Equal(decimal.NewFromInt(100)) {
		t.Errorf("AvgEntryPrice = %s, want unchanged 100", pos.AvgEntryPrice)
	}

	l.applySell("AAPL", decimal.NewFromInt(6))
	if l.get("AAPL") != nil {
		t.Error("expected position deleted at zero qty")
	}
	if l.count() != 0 {
		t.Errorf("count = %d, want 0", l.count())
	}
}

func TestPositionLedger_ListSorted(t *testing.T) {
	l := newPositionLedger()
	l.applyBuy("MSFT", decimal.NewFromInt(1), decimal.NewFromInt(1))
	l.applyBuy("AAPL", decimal.NewFromInt(1), decimal.NewFromInt(1))
	l.applyBuy("GOOG", decimal.NewFromInt(1), decimal.NewFromInt(1))

	list := l.list()
	if len(list) != 3 || list[0].Symbol != "AAPL" || list[1].Symbol != "GOOG" || list[2].Symbol != "MSFT" {
		t.Errorf("list = %+v, want sorted by symbol", list)
	}

	syms := l.symbols()
	if len(syms) != 3 || syms[0] != "AAPL" || syms[2] != "MSFT" {
		t.Errorf("symbols = %v, want sorted", syms)
	}
}
