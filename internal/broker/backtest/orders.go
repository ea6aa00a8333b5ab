package backtest

import (
	"tradeforge/internal/types"
)

// orderStore owns order lifecycle state: a primary map keyed by order id, a
// secondary index from client order id to order id, and the set of accepted
// orders awaiting a trigger pass, in submission order.
type orderStore struct {
	orders     map[string]*types.Order
	byClientID map[string]string
	pending    map[string]types.OrderRequest
	submitted  []string
}

func newOrderStore() *orderStore {
	return &orderStore{
		orders:     make(map[string]*types.Order),
		byClientID: make(map[string]string),
		pending:    make(map[string]types.OrderRequest),
	}
}

// insert stores a newly submitted order.
func (s *orderStore) insert(o *types.Order) {
	s.orders[o.ID] = o
	s.submitted = append(s.submitted, o.ID)
	if o.ClientOrderID != "" {
		s.byClientID[o.ClientOrderID] = o.ID
	}
}

// get looks up by primary id first, then by client order id. Returns nil
// when neither matches.
func (s *orderStore) get(idOrClientID string) *types.Order {
	if o, ok := s.orders[idOrClientID]; ok {
		return o
	}
	if id, ok := s.byClientID[idOrClientID]; ok {
		return s.orders[id]
	}
	return nil
}

// list returns copies of stored orders in submission order. open selects
// non-terminal orders, closed selects terminal ones, all is unfiltered.
func (s *orderStore) list(filter types.OrderFilter) []types.Order {
	var out []types.Order
	for _, id := range s.submitted {
		o := s.orders[id]
		switch filter {
		case types.OrderFilterOpen:
			if o.Status.IsTerminal() {
				continue
			}
		case types.OrderFilterClosed:
			if !o.Status.IsTerminal() {
				continue
			}
		}
		out = append(out, *o)
	}
	return out
}

// trackPending remembers the originating request of an accepted order so a
// trigger pass can re-evaluate it.
func (s *orderStore) trackPending(id string, req types.OrderRequest) {
	s.pending[id] = req
}

// clearPending drops the pending request for id, if any.
func (s *orderStore) clearPending(id string) {
	delete(s.pending, id)
}

// pendingIDs returns ids with a pending request, in submission order.
func (s *orderStore) pendingIDs() []string {
	var out []string
	for _, id := range s.submitted {
		if _, ok := s.pending[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (s *orderStore) pendingRequest(id string) (types.OrderRequest, bool) {
	req, ok := s.pending[id]
	return req, ok
}

func (s *orderStore) reset() {
	s.orders = make(map[string]*types.Order)
	s.byClientID = make(map[string]string)
	s.pending = make(map[string]types.OrderRequest)
	s.submitted = nil
}
