// Package pricing provides price sources for the trading system.
package pricing

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Source yields the last known price for a symbol. The second return value
// is false when the source has no price for the symbol; callers decide the
// fallback.
type Source interface {
	Price(symbol string) (decimal.Decimal, bool)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(symbol string) (decimal.Decimal, bool)

// Price calls f.
func (f SourceFunc) Price(symbol string) (decimal.Decimal, bool) {
	return f(symbol)
}

// Static is a fixed price table, safe for concurrent use.
type Static struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

// NewStatic creates a Static source seeded with the given prices.
func NewStatic(prices map[string]decimal.Decimal) *Static {
	s := &Static{prices: make(map[string]decimal.Decimal, len(prices))}
	for sym, p := range prices {
		s.prices[sym] = p
	}
	return s
}

// Price returns the price for symbol, if present.
func (s *Static) Price(symbol string) (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prices[symbol]
	return p, ok
}

// Set updates the price for symbol.
func (s *Static) Set(symbol string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[symbol] = price
}
