package metrics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recorder records metrics for one broker instance.
type Recorder struct {
	broker string
}

// NewRecorder creates a Recorder labeled with the broker name.
func NewRecorder(broker string) *Recorder {
	return &Recorder{broker: broker}
}

// RecordOrder records a submitted order and its resulting status.
func (r *Recorder) RecordOrder(symbol, side, status string) {
	OrdersTotal.WithLabelValues(r.broker, symbol, side, status).Inc()
}

// RecordRejection records an order rejection.
func (r *Recorder) RecordRejection(reason string) {
	RejectionsTotal.WithLabelValues(r.broker, reason).Inc()
}

// RecordCancellation records an order cancellation.
func (r *Recorder) RecordCancellation() {
	CancellationsTotal.WithLabelValues(r.broker).Inc()
}

// RecordCash records the current cash balance.
func (r *Recorder) RecordCash(cash decimal.Decimal) {
	CashBalance.WithLabelValues(r.broker).Set(cash.InexactFloat64())
}

// RecordOpenPositions records the number of open positions.
func (r *Recorder) RecordOpenPositions(n int) {
	PositionsOpen.WithLabelValues(r.broker).Set(float64(n))
}

// RecordOrderLatency records order submission latency.
func (r *Recorder) RecordOrderLatency(d time.Duration) {
	OrderLatency.WithLabelValues(r.broker).Observe(d.Seconds())
}
