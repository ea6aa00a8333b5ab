package alpaca

import (
	"strings"
	"testing"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"
	"tradeforge/internal/types"
)

func TestMapOrderStatus(t *testing.T) {
	tests := []struct {
		in   string
		want types.OrderStatus
	}{
		{"filled", types.OrderStatusFilled},
		{"canceled", types.OrderStatusCanceled},
		{"expired", types.OrderStatusCanceled},
		{"rejected", types.OrderStatusRejected},
		{"new", types.OrderStatusAccepted},
		{"partially_filled", types.OrderStatusAccepted},
	}
	for _, tt := range tests {
		if got := mapOrderStatus(tt.in); got != tt.want {
			t.Errorf("mapOrderStatus(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFromAlpacaOrder(t *testing.T) {
	qty := decimal.NewFromInt(10)
	avg := decimal.RequireFromString("150.25")
	raw := &alpaca.Order{
		ID:             "o1",
		ClientOrderID:  "c1",
		Symbol:         "AAPL",
		Qty:            &qty,
		Side:           "buy",
		Type:           "market",
		TimeInForce:    "day",
		Status:         "filled",
		FilledQty:      qty,
		FilledAvgPrice: &avg,
	}

	o := fromAlpacaOrder(raw)
	if o.ID != "o1" || o.ClientOrderID != "c1" || o.Symbol != "AAPL" {
		t.Errorf("identity fields = %s/%s/%s", o.ID, o.ClientOrderID, o.Symbol)
	}
	if o.Side != types.SideBuy || o.Type != types.OrderTypeMarket {
		t.Errorf("side/type = %s/%s", o.Side, o.Type)
	}
	if o.Status != types.OrderStatusFilled {
		t.Errorf("Status = %s, want filled", o.Status)
	}
	if !o.Qty.Equal(qty) || !o.FilledAvgPrice.Equal(avg) {
		t.Errorf("qty/avg = %s/%s", o.Qty, o.FilledAvgPrice)
	}
}

func TestFromAlpacaPosition(t *testing.T) {
	long := fromAlpacaPosition(&alpaca.Position{
		Symbol:        "AAPL",
		Qty:           decimal.NewFromInt(10),
		Side:          "long",
		AvgEntryPrice: decimal.NewFromInt(150),
	})
	if long.Side != types.PositionSideLong || !long.Qty.Equal(decimal.NewFromInt(10)) {
		t.Errorf("long position = %+v", long)
	}

	// Short quantities come back negative from the API.
	short := fromAlpacaPosition(&alpaca.Position{
		Symbol: "TSLA",
		Qty:    decimal.NewFromInt(-5),
		Side:   "short",
	})
	if short.Side != types.PositionSideShort {
		t.Errorf("Side = %s, want short", short.Side)
	}
	if !short.Qty.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Qty = %s, want positive 5", short.Qty)
	}
}

func TestClient_GenerateOrderID(t *testing.T) {
	c := New(DefaultConfig(), nil)

	a, b := c.GenerateOrderID(), c.GenerateOrderID()
	if !strings.HasPrefix(a, "tf-") {
		t.Errorf("id %q missing prefix", a)
	}
	if a == b {
		t.Error("generated ids must be unique")
	}
}

func TestNew_AppliesDefaults(t *testing.T) {
	c := New(Config{APIKey: "k", APISecret: "s"}, nil)
	if c.cfg.MaxRequestsPerSecond != DefaultConfig().MaxRequestsPerSecond {
		t.Errorf("MaxRequestsPerSecond = %d, want default", c.cfg.MaxRequestsPerSecond)
	}
	if c.cfg.MaxRetries != DefaultConfig().MaxRetries {
		t.Errorf("MaxRetries = %d, want default", c.cfg.MaxRetries)
	}
	if c.cfg.OrderIDPrefix == "" {
		t.Error("OrderIDPrefix should default")
	}
}
