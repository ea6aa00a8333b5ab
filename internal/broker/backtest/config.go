// Package backtest implements the Broker interface as a deterministic
// order-execution simulator: orders, fills, positions and cash are tracked
// in memory against a pluggable price source, with no external calls.
package backtest

import (
	"github.com/shopspring/decimal"
	"tradeforge/internal/pricing"
)

// FillMode controls when market and limit orders fill.
type FillMode string

const (
	// FillImmediate fills market/limit orders synchronously on submit.
	FillImmediate FillMode = "immediate"
	// FillDelayed holds market/limit orders as accepted until
	// TriggerFills is called.
	FillDelayed FillMode = "delayed"
)

// Margin multiplier applied to cash when reporting buying power.
const marginMultiplier = 4

// Config holds the engine construction options. It is immutable per engine
// instance; Reset restores the state it describes.
type Config struct {
	// InitialCash is the starting and reset cash balance. Default 100000.
	InitialCash decimal.Decimal

	// FillMode selects immediate or delayed fills. Default immediate.
	FillMode FillMode

	// PriceSource resolves symbol prices. Symbols it has no price for
	// fall back to DefaultPrice. May be nil.
	PriceSource pricing.Source

	// SlippageBps is the basis-point price adjustment applied on fill,
	// always unfavorable to the order side. Default 0.
	SlippageBps int64

	// Commission is the flat fee per filled order. Default 0.
	Commission decimal.Decimal

	// OrderIDPrefix is embedded in generated order ids. Default "bt".
	OrderIDPrefix string

	// DefaultPrice is used when the price source yields nothing.
	// Default 100.
	DefaultPrice decimal.Decimal

	// Currency reported on account snapshots. Default "USD".
	Currency string
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		InitialCash:   decimal.NewFromInt(100000),
		FillMode:      FillImmediate,
		Commission:    decimal.Zero,
		OrderIDPrefix: "bt",
		DefaultPrice:  decimal.NewFromInt(100),
		Currency:      "USD",
	}
}

func (c Config) withDefaults() Config {
	if c.InitialCash.IsZero() {
		c.InitialCash = decimal.NewFromInt(100000)
	}
	if c.FillMode == "" {
		c.FillMode = FillImmediate
	}
	if c.DefaultPrice.IsZero() {
		c.DefaultPrice = decimal.NewFromInt(100)
	}
	if c.OrderIDPrefix == "" {
		c.OrderIDPrefix = "bt"
	}
	if c.Currency == "" {
		c.Currency = "USD"
	}
	return c
}
