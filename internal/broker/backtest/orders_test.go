package backtest

import (
	"testing"

	"tradeforge/internal/types"
)

func newOrder(id, clientID string, status types.OrderStatus) *types.Order {
	return &types.Order{
		ID:            id,
		ClientOrderID: clientID,
		Symbol:        "AAPL",
		Status:        status,
	}
}

func TestOrderStore_Lookup(t *testing.T) {
	s := newOrderStore()
	s.insert(newOrder("o1", "c1", types.OrderStatusAccepted))

	if got := s.get("o1"); got == nil || got.ID != "o1" {
		t.Errorf("get by id = %+v", got)
	}
	if got := s.get("c1"); got == nil || got.ID != "o1" {
		t.Errorf("get by client id = %+v", got)
	}
	if got := s.get("missing"); got != nil {
		t.Errorf("get unknown = %+v, want nil", got)
	}
}

func TestOrderStore_ListFilters(t *testing.T) {
	s := newOrderStore()
	s.insert(newOrder("o1", "", types.OrderStatusAccepted))
	s.insert(newOrder("o2", "", types.OrderStatusFilled))
	s.insert(newOrder("o3", "", types.OrderStatusCanceled))
	s.insert(newOrder("o4", "", types.OrderStatusAccepted))

	open := s.list(types.OrderFilterOpen)
	if len(open) != 2 || open[0].ID != "o1" || open[1].ID != "o4" {
		t.Errorf("open = %+v, want o1, o4 in submission order", open)
	}

	closed := s.list(types.OrderFilterClosed)
	if len(closed) != 2 || closed[0].ID != "o2" || closed[1].ID != "o3" {
		t.Errorf("closed = %+v, want o2, o3", closed)
	}

	all := s.list(types.OrderFilterAll)
	if len(all) != 4 || all[0].ID != "o1" || all[3].ID != "o4" {
		t.Errorf("all = %+v, want every order in submission order", all)
	}
}

func TestOrderStore_Pending(t *testing.T) {
	s := newOrderStore()
	s.insert(newOrder("o1", "", types.OrderStatusAccepted))
	s.insert(newOrder("o2", "", types.OrderStatusAccepted))
	s.insert(newOrder("o3", "", types.OrderStatusAccepted))

	s.trackPending("o3", types.OrderRequest{})
	s.trackPending("o1", types.OrderRequest{})

	// Trigger passes iterate in submission order, not tracking order.
	ids := s.pendingIDs()
	if len(ids) != 2 || ids[0] != "o1" || ids[1] != "o3" {
		t.Fatalf("pendingIDs = %v, want [o1 o3]", ids)
	}

	s.clearPending("o1")
	ids = s.pendingIDs()
	if len(ids) != 1 || ids[0] != "o3" {
		t.Errorf("pendingIDs after clear = %v, want [o3]", ids)
	}

	if _, ok := s.pendingRequest("o1"); ok {
		t.Error("cleared id still has a pending request")
	}
	if _, ok := s.pendingRequest("o3"); !ok {
		t.Error("tracked id lost its pending request")
	}
}

func TestOrderStore_Reset(t *testing.T) {
	s := newOrderStore()
	s.insert(newOrder("o1", "c1", types.OrderStatusAccepted))
	s.trackPending("o1", types.OrderRequest{})

	s.reset()

	if got := s.get("o1"); got != nil {
		t.Errorf("get after reset = %+v, want nil", got)
	}
	if got := s.get("c1"); got != nil {
		t.Errorf("client id survived reset: %+v", got)
	}
	if ids := s.pendingIDs(); len(ids) != 0 {
		t.Errorf("pendingIDs after reset = %v, want empty", ids)
	}
	if all := s.list(types.OrderFilterAll); len(all) != 0 {
		t.Errorf("list after reset = %+v, want empty", all)
	}
}
