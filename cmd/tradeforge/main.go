// Package main is the entry point for the tradeforge execution service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradeforge/internal/alerting"
	"tradeforge/internal/broker/factory"
	"tradeforge/internal/config"
	"tradeforge/internal/journal"
	"tradeforge/internal/metrics"
	"tradeforge/internal/pricing"
)

// Version information (set by build flags).
var (
	Version   = "0.2.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version", "-v", "--version":
		cmdVersion()
	case "help", "-h", "--help":
		printUsage()
	case "run":
		cmdRun(os.Args[2:])
	case "validate":
		cmdValidate(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tradeforge - broker execution service

Usage:
  tradeforge <command> [options]

Commands:
  run        Start the execution service
  validate   Validate configuration file
  version    Show version information
  help       Show this help message

Examples:
  tradeforge run --config config.yaml
  tradeforge validate --config config.yaml`)
}

func cmdVersion() {
	fmt.Printf("tradeforge version %s\n", Version)
	fmt.Printf("  Build time: %s\n", BuildTime)
	fmt.Printf("  Git commit: %s\n", GitCommit)
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to configuration file")
	fs.Parse(args)

	if _, err := config.Load(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Configuration OK")
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to configuration file")
	logLevel := fs.String("log-level", "info", "log level (debug|info|warn|error)")
	fs.Parse(args)

	logger := newLogger(*logLevel)
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := factory.Options{
		Logger:        logger,
		EnableMetrics: cfg.Metrics.Enabled,
	}

	// Price source: streamed feed when configured, static table otherwise.
	var stream *pricing.Stream
	if cfg.Pricing.StreamURL != "" {
		stream = pricing.NewStream(cfg.Pricing.StreamURL, logger)
		if err := stream.Connect(ctx); err != nil {
			return fmt.Errorf("connect price stream: %w", err)
		}
		defer stream.Close()
		opts.PriceSource = stream
	} else if prices := cfg.StaticPrices(); prices != nil {
		opts.PriceSource = pricing.NewStatic(prices)
	}

	if cfg.Journal.Enabled {
		j, err := journal.NewSQLiteJournal(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()
		opts.Journal = j
	}

	if cfg.Alerting.Enabled {
		opts.Alerter = alerting.NewConsoleAlerter(logger)
	}

	b, err := factory.New(cfg, opts)
	if err != nil {
		return err
	}
	logger.Info("broker ready", "broker", b.Name(), "environment", cfg.Environment)

	if acct, err := b.GetAccount(ctx); err == nil {
		logger.Info("account snapshot",
			"cash", acct.Cash,
			"buying_power", acct.BuyingPower,
			"portfolio_value", acct.PortfolioValue,
		)
	}

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		mcfg := metrics.DefaultServerConfig()
		if cfg.Metrics.Port > 0 {
			mcfg.Port = cfg.Metrics.Port
		}
		if cfg.Metrics.Path != "" {
			mcfg.MetricsPath = cfg.Metrics.Path
		}
		metricsServer = metrics.NewServer(mcfg, logger)
		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", "error", err)
		}
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
