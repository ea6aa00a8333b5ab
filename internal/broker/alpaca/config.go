// Package alpaca adapts the Broker interface onto the Alpaca brokerage API.
// It carries no simulation logic: every call maps to an SDK request, rate
// limited and retried per the broker error taxonomy.
package alpaca

import "time"

// Config holds Alpaca connection configuration.
type Config struct {
	APIKey    string
	APISecret string
	BaseURL   string

	// OrderIDPrefix is embedded in generated client order ids.
	OrderIDPrefix string

	// Rate limiting
	MaxRequestsPerSecond int

	// Retry policy for transient failures
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// DefaultConfig returns a paper-trading configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:              "https://paper-api.alpaca.markets",
		OrderIDPrefix:        "tf",
		MaxRequestsPerSecond: 3, // Alpaca allows 200/min
		MaxRetries:           3,
		RetryBaseDelay:       500 * time.Millisecond,
	}
}

// LiveConfig returns a live-trading configuration.
func LiveConfig() Config {
	cfg := DefaultConfig()
	cfg.BaseURL = "https://api.alpaca.markets"
	return cfg
}
