// Tactic — a single-instrument, single-threaded market-making bot: a
// reactor goroutine blends a home-venue book with remote price signals
// into a consensus fair value, quotes an Avellaneda-Stoikov two-sided
// market around it, and manages order lifecycle with at-most-once
// cancellation semantics.
//
// Architecture:
//
//	main.go                  — entry point: loads config, wires every component, waits for SIGINT/SIGTERM
//	internal/reactor         — single cooperative event loop owning all tactic state
//	internal/tactic          — Avellaneda-Stoikov quoting: reservation price + optimal spread from fair value and inventory skew
//	internal/localbook       — home-venue book mirror, inside-order detection, gap-fill synthesis
//	internal/remoteagg       — trust-weighted consensus fair value blended across remote venues
//	internal/ordermgr        — authoritative order lifecycle and at-most-once cancellation
//	internal/position        — FIFO PnL ledger
//	internal/risk            — single-instrument exposure and reconcile-health monitor
//	internal/exchange        — home-venue REST client (rate limited, circuit broken) and WS feeds
//	internal/htmlsnapshot    — atomic HTML status snapshot writer
//	internal/metrics         — Prometheus counters/gauges for reactor turns, orders, and fair value
//
// How it makes money:
//
//	The tactic captures the bid-ask spread on its single instrument. It
//	posts a buy below the blended fair value and a sell above it; when both
//	sides fill it earns the spread. Avellaneda-Stoikov skews both quotes by
//	inventory risk — the more it holds of one side, the more it discounts
//	quotes to attract offsetting fills.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"tacticmm/internal/config"
	"tacticmm/internal/exchange"
	"tacticmm/internal/fairvalue"
	"tacticmm/internal/htmlsnapshot"
	"tacticmm/internal/localbook"
	"tacticmm/internal/metrics"
	"tacticmm/internal/ordermgr"
	"tacticmm/internal/position"
	"tacticmm/internal/reactor"
	"tacticmm/internal/remoteagg"
	"tacticmm/internal/risk"
	"tacticmm/internal/tactic"
	"tacticmm/internal/venue"
)

func main() {
	cfgPath := "configs/config.yaml"
	if p := os.Getenv("TACTIC_CONFIG"); p != "" {
		cfgPath = p
	}

	fs := pflag.NewFlagSet("tacticmm", pflag.ExitOnError)
	cfg, err := config.Load(cfgPath, fs)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", cfgPath)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)

	auth, err := exchange.NewAuth(*cfg)
	if err != nil {
		logger.Error("failed to build auth", "error", err)
		os.Exit(1)
	}
	homeClient := exchange.NewClient(*cfg, auth, logger)

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		m.Serve(cfg.Metrics.Addr)
		logger.Info("metrics listening", "addr", cfg.Metrics.Addr)
	}

	snapshotter, err := htmlsnapshot.New(cfg.HTML.Path)
	if err != nil {
		logger.Error("failed to build html snapshotter", "error", err)
		os.Exit(1)
	}

	valuer := fairvalue.DepthWeightedMid{Depth: cfg.Strategy.FairValueDepth}
	localBook := localbook.New(valuer)

	trust := remoteagg.TrustFactors{}
	for i, v := range venue.Remotes() {
		if i < len(cfg.Remotes) && cfg.Remotes[i].TrustFactor > 0 {
			trust[v] = cfg.Remotes[i].TrustFactor
		}
	}
	remoteAgg := remoteagg.New(valuer, trust, cfg.Strategy.EMAAlpha)

	orders := ordermgr.New(cfg.Risk.OrderBudget)
	ledger := position.New()
	riskMonitor := risk.New(cfg.Risk, logger)

	tac := tactic.New(tactic.Config{
		Gamma:            cfg.Strategy.Gamma,
		Sigma:            cfg.Strategy.Sigma,
		K:                cfg.Strategy.K,
		T:                cfg.Strategy.T,
		BaseSize:         cfg.Strategy.BaseSize,
		MinSize:          cfg.Strategy.MinSize,
		MinSpreadTicks:   cfg.Strategy.MinSpreadTicks,
		PriceToleranceTk: cfg.Strategy.PriceToleranceTk,
		SizeTolerance:    cfg.Strategy.SizeTolerance,
	})

	var connFactories [venue.Count]reactor.VenueConnFactory
	connFactories[venue.Home] = venueFeedFactory(int(venue.Home), cfg.Home.WSURL, cfg.Home.AssetID, cfg.Home.TicksPerUnit, logger)
	for i, v := range venue.Remotes() {
		if i >= len(cfg.Remotes) {
			break
		}
		rc := cfg.Remotes[i]
		connFactories[v] = venueFeedFactory(int(v), rc.WSURL, rc.AssetID, rc.TicksPerUnit, logger)
	}

	rcfg := reactor.DefaultConfig()
	if cfg.Timers.Ping > 0 {
		rcfg.Ping = cfg.Timers.Ping
	}
	if cfg.Timers.HTMLSnapshot > 0 {
		rcfg.HTMLSnapshot = cfg.Timers.HTMLSnapshot
	}
	if cfg.Timers.GracefulReset > 0 {
		rcfg.Reset = cfg.Timers.GracefulReset
	}
	if cfg.Timers.FillPoll > 0 {
		rcfg.FillPoll = cfg.Timers.FillPoll
	}
	if cfg.Timers.ResetSettle > 0 {
		rcfg.ResetSettle = cfg.Timers.ResetSettle
	}
	if cfg.Timers.OrderLate > 0 {
		rcfg.OrderLate = cfg.Timers.OrderLate
	}
	if cfg.Timers.OrderStale > 0 {
		rcfg.OrderStale = cfg.Timers.OrderStale
	}
	if cfg.Timers.OrderCheckGone > 0 {
		rcfg.OrderCheckGone = cfg.Timers.OrderCheckGone
	}
	if cfg.Risk.MaxConsecutiveBadResets > 0 {
		rcfg.MaxConsecutiveBadResets = cfg.Risk.MaxConsecutiveBadResets
	}
	if cfg.Strategy.InventoryCap > 0 {
		rcfg.InventoryCapacity = cfg.Strategy.InventoryCap
	}

	rx := reactor.New(rcfg, logger, connFactories, homeClient, snapshotter, localBook, remoteAgg, orders, ledger, tac, riskMonitor, m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DryRun {
		logger.Warn("DRY-RUN MODE — no real orders will be placed")
	}
	logger.Info("tactic starting",
		"home_asset", cfg.Home.AssetID,
		"base_size", cfg.Strategy.BaseSize,
		"gamma", cfg.Strategy.Gamma,
		"dry_run", cfg.DryRun,
	)

	err = rx.Run(ctx)
	if err != nil && ctx.Err() == nil {
		logger.Error("reactor exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// venueFeedFactory returns a reactor.VenueConnFactory that builds a fresh
// *exchange.VenueFeed and starts its auto-reconnecting Run loop bound to
// the factory's ctx argument — called once per reactor epoch so that a
// Reset (spec.md §4.5) tears down and redials the WS session instead of
// reusing one across resets indefinitely.
func venueFeedFactory(id int, wsURL, assetID string, ticksPerUnit float64, logger *slog.Logger) reactor.VenueConnFactory {
	return func(ctx context.Context) reactor.VenueConn {
		feed := exchange.NewVenueFeed(id, wsURL, assetID, ticksPerUnit, logger)
		go func() {
			if err := feed.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("venue feed stopped", "venue", id, "error", err)
			}
		}()
		return feed
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
