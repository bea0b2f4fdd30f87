package risk

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"tacticmm/internal/config"
	"tacticmm/internal/position"
)

func testMonitor(cfg config.RiskConfig) *Monitor {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(cfg, logger)
}

func TestCheckPositionUnderLimitsPasses(t *testing.T) {
	t.Parallel()
	m := testMonitor(config.RiskConfig{MaxNetPosition: 100, MaxDailyLoss: 50})

	breached, _ := m.CheckPosition(position.Snapshot{NetSize: 10, RealizedPnL: 0, UnrealizedPnL: 0})
	if breached {
		t.Error("expected no breach within limits")
	}
}

func TestCheckPositionNetPositionBreach(t *testing.T) {
	t.Parallel()
	m := testMonitor(config.RiskConfig{MaxNetPosition: 50, MaxDailyLoss: 1000})

	breached, reason := m.CheckPosition(position.Snapshot{NetSize: -60})
	if !breached {
		t.Fatal("expected a net-position breach for |NetSize|=60 > 50")
	}
	if reason == "" {
		t.Error("expected a non-empty breach reason")
	}
}

func TestCheckPositionDailyLossBreach(t *testing.T) {
	t.Parallel()
	m := testMonitor(config.RiskConfig{MaxNetPosition: 1000, MaxDailyLoss: 50})

	breached, _ := m.CheckPosition(position.Snapshot{RealizedPnL: -30, UnrealizedPnL: -25})
	if !breached {
		t.Error("expected a daily-loss breach for -55 < -50")
	}
}

func TestCheckPositionZeroLimitDisablesCheck(t *testing.T) {
	t.Parallel()
	m := testMonitor(config.RiskConfig{})

	breached, _ := m.CheckPosition(position.Snapshot{NetSize: 1_000_000, RealizedPnL: -1_000_000})
	if breached {
		t.Error("zero-valued limits should disable the corresponding check")
	}
}

func TestCheckReconcileErrorEscalatesAnyError(t *testing.T) {
	t.Parallel()
	m := testMonitor(config.RiskConfig{})

	if m.CheckReconcileError(nil) {
		t.Error("nil error should not escalate")
	}
	if !m.CheckReconcileError(errors.New("unknown cancel ack")) {
		t.Error("any non-nil reconcile error should escalate")
	}
}
