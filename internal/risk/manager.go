// Package risk watches the single instrument's exposure and reconcile
// health and decides when the tactic must abandon its current state.
//
// The teacher's internal/risk/manager.go ran a multi-market kill switch:
// per-market exposure caps, a global exposure cap, a market count, and a
// cooldown-gated kill signal consumed by a separate engine goroutine. None
// of that applies to a single-instrument tactic owned by one reactor
// goroutine, so this package keeps only what still applies — position and
// daily-loss limits — and reports breaches as a plain bool instead of a
// cooldown-gated channel: the reactor calls CheckPosition and
// CheckReconcileError inline on its own turn
// and, on a breach, injects Reset(bad=true) through the same internal
// queue its timers use (spec.md §4.4/§8, SPEC_FULL.md §5.12).
package risk

import (
	"log/slog"

	"tacticmm/internal/config"
	"tacticmm/internal/position"
)

// Monitor evaluates the current position snapshot against configured
// exposure limits.
type Monitor struct {
	cfg    config.RiskConfig
	logger *slog.Logger
}

// New builds a risk monitor from its configuration.
func New(cfg config.RiskConfig, logger *slog.Logger) *Monitor {
	return &Monitor{cfg: cfg, logger: logger.With("component", "risk")}
}

// CheckPosition reports whether snap breaches a configured limit, and why.
// A zero-valued limit in cfg disables that check (treated as "no limit").
// The loss check compares realized plus unrealized PnL since the ledger was
// created against MaxDailyLoss; it does not reset at a day boundary.
func (m *Monitor) CheckPosition(snap position.Snapshot) (breached bool, reason string) {
	netSize := snap.NetSize
	if netSize < 0 {
		netSize = -netSize
	}
	if m.cfg.MaxNetPosition > 0 && netSize > m.cfg.MaxNetPosition {
		return true, "net position exceeds configured limit"
	}

	totalPnL := snap.RealizedPnL + snap.UnrealizedPnL
	if m.cfg.MaxDailyLoss > 0 && totalPnL < -m.cfg.MaxDailyLoss {
		return true, "daily loss exceeds configured limit"
	}
	return false, ""
}

// CheckReconcileError reports whether err (already observed and logged by
// the caller) escalates to Reset(bad=true). Per spec.md §7, every
// reconcile mismatch — unknown fill, unknown cancel ack — is fatal; the
// five-in-a-row abort threshold lives in internal/reactor, not here.
func (m *Monitor) CheckReconcileError(err error) bool {
	return err != nil
}
