package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// tick is the wire format of a streamed price update.
type tick struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// Stream is a Source fed by a websocket price feed. It keeps the last
// received price per symbol and keeps serving it after the connection drops.
type Stream struct {
	url    string
	logger *slog.Logger

	readTimeout time.Duration

	mu     sync.RWMutex
	conn   *websocket.Conn
	prices map[string]decimal.Decimal

	cancel context.CancelFunc
	done   chan struct{}
}

// NewStream creates a Stream for the given websocket URL.
func NewStream(url string, logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stream{
		url:         url,
		logger:      logger,
		readTimeout: 60 * time.Second,
		prices:      make(map[string]decimal.Decimal),
	}
}

// Connect dials the feed and starts the read pump.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial price feed: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.conn = conn
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.readPump(ctx, conn)

	s.logger.Info("price feed connected", "url", s.url)
	return nil
}

func (s *Stream) readPump(ctx context.Context, conn *websocket.Conn) {
	defer close(s.done)
	for {
		if ctx.Err() != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			s.logger.Warn("price feed read failed", "error", err)
			return
		}

		var t tick
		if err := json.Unmarshal(msg, &t); err != nil {
			s.logger.Warn("price feed message malformed", "error", err)
			continue
		}
		if t.Symbol == "" || t.Price.IsZero() {
			continue
		}

		s.mu.Lock()
		s.prices[t.Symbol] = t.Price
		s.mu.Unlock()
	}
}

// Price returns the last streamed price for symbol, if any.
func (s *Stream) Price(symbol string) (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prices[symbol]
	return p, ok
}

// Close tears down the connection and waits for the read pump to exit.
func (s *Stream) Close() error {
	s.mu.Lock()
	conn, cancel, done := s.conn, s.cancel, s.done
	s.conn = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn == nil {
		return nil
	}
	err := conn.Close()
	if done != nil {
		<-done
	}
	return err
}
