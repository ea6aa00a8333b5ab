// Package metrics exposes prometheus metrics for the trading system.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersTotal counts submitted orders by outcome.
	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradeforge_orders_total",
		Help: "Total orders submitted, labeled by broker, symbol, side and resulting status.",
	}, []string{"broker", "symbol", "side", "status"})

	// RejectionsTotal counts rejected orders by reason.
	RejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradeforge_order_rejections_total",
		Help: "Total order rejections by reason.",
	}, []string{"broker", "reason"})

	// CancellationsTotal counts canceled orders.
	CancellationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradeforge_order_cancellations_total",
		Help: "Total order cancellations.",
	}, []string{"broker"})

	// CashBalance is the current cash balance.
	CashBalance = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tradeforge_cash_balance",
		Help: "Current account cash balance.",
	}, []string{"broker"})

	// PositionsOpen is the number of open positions.
	PositionsOpen = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tradeforge_positions_open",
		Help: "Number of currently open positions.",
	}, []string{"broker"})

	// OrderLatency observes order submission latency.
	OrderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tradeforge_order_latency_seconds",
		Help:    "Order submission latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"broker"})
)
