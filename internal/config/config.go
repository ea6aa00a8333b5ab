// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"tradeforge/internal/broker/backtest"
	"tradeforge/internal/types"
)

// Config represents the full application configuration.
type Config struct {
	Environment string         `yaml:"environment"`
	Broker      BrokerConfig   `yaml:"broker"`
	Backtest    BacktestConfig `yaml:"backtest"`
	Pricing     PricingConfig  `yaml:"pricing"`
	Journal     JournalConfig  `yaml:"journal"`
	Metrics     MetricsConfig  `yaml:"metrics"`
	Alerting    AlertingConfig `yaml:"alerting"`
}

// BrokerConfig holds live/paper brokerage credentials and endpoint.
type BrokerConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
}

// BacktestConfig holds backtest engine settings.
type BacktestConfig struct {
	InitialCash   float64 `yaml:"initial_cash"`
	FillMode      string  `yaml:"fill_mode"` // immediate | delayed
	SlippageBps   int64   `yaml:"slippage_bps"`
	Commission    float64 `yaml:"commission"`
	OrderIDPrefix string  `yaml:"order_id_prefix"`
	DefaultPrice  float64 `yaml:"default_price"`
	Currency      string  `yaml:"currency"`
}

// PricingConfig holds price source settings.
type PricingConfig struct {
	Static    map[string]float64 `yaml:"static"`
	StreamURL string             `yaml:"stream_url"`
}

// JournalConfig holds trade journal settings.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MetricsConfig holds metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// AlertingConfig holds alerting settings.
type AlertingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes. Environment variable
// references are expanded first.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration, collecting every problem found.
// Environment dispatch (and its credential requirements) is the broker
// factory's job, not validated here.
func (c *Config) Validate() error {
	var errs []string

	if c.Backtest.InitialCash < 0 {
		errs = append(errs, "backtest.initial_cash must not be negative")
	}
	switch c.Backtest.FillMode {
	case "", string(backtest.FillImmediate), string(backtest.FillDelayed):
	default:
		errs = append(errs, "backtest.fill_mode must be 'immediate' or 'delayed'")
	}
	if c.Backtest.SlippageBps < 0 {
		errs = append(errs, "backtest.slippage_bps must not be negative")
	}
	if c.Backtest.Commission < 0 {
		errs = append(errs, "backtest.commission must not be negative")
	}
	if c.Backtest.DefaultPrice < 0 {
		errs = append(errs, "backtest.default_price must not be negative")
	}

	for sym, p := range c.Pricing.Static {
		if p <= 0 {
			errs = append(errs, fmt.Sprintf("pricing.static.%s must be positive", sym))
		}
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, "journal.path is required when journal is enabled")
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		errs = append(errs, "metrics.port must be a valid port")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", types.ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// EngineConfig converts the backtest section to an engine config. Zero
// fields keep the engine defaults.
func (c *Config) EngineConfig() backtest.Config {
	return backtest.Config{
		InitialCash:   decimal.NewFromFloat(c.Backtest.InitialCash),
		FillMode:      backtest.FillMode(c.Backtest.FillMode),
		SlippageBps:   c.Backtest.SlippageBps,
		Commission:    decimal.NewFromFloat(c.Backtest.Commission),
		OrderIDPrefix: c.Backtest.OrderIDPrefix,
		DefaultPrice:  decimal.NewFromFloat(c.Backtest.DefaultPrice),
		Currency:      c.Backtest.Currency,
	}
}

// StaticPrices converts the static pricing table to decimals.
func (c *Config) StaticPrices() map[string]decimal.Decimal {
	if len(c.Pricing.Static) == 0 {
		return nil
	}
	out := make(map[string]decimal.Decimal, len(c.Pricing.Static))
	for sym, p := range c.Pricing.Static {
		out[sym] = decimal.NewFromFloat(p)
	}
	return out
}
