// Package factory selects the broker implementation for an environment:
// BACKTEST builds the in-memory engine, PAPER and LIVE build the Alpaca
// adapter and require credentials.
package factory

import (
	"fmt"
	"log/slog"

	"tradeforge/internal/alerting"
	"tradeforge/internal/broker"
	"tradeforge/internal/broker/alpaca"
	"tradeforge/internal/broker/backtest"
	"tradeforge/internal/config"
	"tradeforge/internal/journal"
	"tradeforge/internal/metrics"
	"tradeforge/internal/pricing"
	"tradeforge/internal/types"
)

// Options carries the collaborators wired into the selected broker.
type Options struct {
	Logger        *slog.Logger
	Policy        broker.Policy
	PriceSource   pricing.Source
	Journal       journal.Journal
	Alerter       alerting.Alerter
	EnableMetrics bool
}

// New builds the broker for the configured environment. Non-backtest
// environments fail fast when credentials are absent; an unrecognized
// environment fails with types.ErrUnknownEnvironment.
func New(cfg *config.Config, opts Options) (broker.Broker, error) {
	env := broker.Environment(cfg.Environment)

	switch env {
	case broker.EnvBacktest:
		ecfg := cfg.EngineConfig()
		ecfg.PriceSource = opts.PriceSource

		var eopts []backtest.Option
		if opts.Logger != nil {
			eopts = append(eopts, backtest.WithLogger(opts.Logger))
		}
		if opts.Policy != nil {
			eopts = append(eopts, backtest.WithPolicy(opts.Policy))
		}
		if opts.Journal != nil {
			eopts = append(eopts, backtest.WithJournal(opts.Journal))
		}
		if opts.Alerter != nil {
			eopts = append(eopts, backtest.WithAlerter(opts.Alerter))
		}
		if opts.EnableMetrics {
			eopts = append(eopts, backtest.WithMetrics(metrics.NewRecorder("backtest")))
		}
		return backtest.New(ecfg, eopts...), nil

	case broker.EnvPaper, broker.EnvLive:
		if cfg.Broker.APIKey == "" || cfg.Broker.APISecret == "" {
			return nil, fmt.Errorf("%w: %s environment requires broker.api_key and broker.api_secret", types.ErrMissingCredentials, env)
		}

		acfg := alpaca.DefaultConfig()
		if env == broker.EnvLive {
			acfg = alpaca.LiveConfig()
		}
		acfg.APIKey = cfg.Broker.APIKey
		acfg.APISecret = cfg.Broker.APISecret
		if cfg.Broker.BaseURL != "" {
			acfg.BaseURL = cfg.Broker.BaseURL
		}
		return alpaca.New(acfg, opts.Logger), nil

	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownEnvironment, cfg.Environment)
	}
}
