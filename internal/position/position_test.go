package position

import (
	"testing"
	"time"

	"tacticmm/pkg/types"
)

func TestBuyThenSellRealizesFIFO(t *testing.T) {
	t.Parallel()
	l := New()

	l.OnFill(Fill{Timestamp: time.Now(), Side: types.Buy, Price: 100, Size: 5})
	l.OnFill(Fill{Timestamp: time.Now(), Side: types.Buy, Price: 110, Size: 5})
	l.OnFill(Fill{Timestamp: time.Now(), Side: types.Sell, Price: 120, Size: 5})

	snap := l.Snapshot()
	if snap.RealizedPnL != 100 { // (120-100)*5, oldest lot consumed first
		t.Errorf("RealizedPnL = %v, want 100", snap.RealizedPnL)
	}
	if snap.NetSize != 5 {
		t.Errorf("NetSize = %v, want 5 (one lot of 5 left at 110)", snap.NetSize)
	}
}

func TestSellBeyondHoldingsOpensShort(t *testing.T) {
	t.Parallel()
	l := New()

	l.OnFill(Fill{Timestamp: time.Now(), Side: types.Sell, Price: 100, Size: 3})
	if got := l.NetSize(); got != -3 {
		t.Errorf("NetSize = %v, want -3", got)
	}
}

func TestShortThenBuyBackClosesTheShortLot(t *testing.T) {
	t.Parallel()
	l := New()

	// Sell 5 while flat opens a short lot at 100.
	l.OnFill(Fill{Timestamp: time.Now(), Side: types.Sell, Price: 100, Size: 5})
	// Buy 3 must close part of that short lot, not open an unrelated long
	// lot the ledger can never net back against.
	l.OnFill(Fill{Timestamp: time.Now(), Side: types.Buy, Price: 90, Size: 3})

	snap := l.Snapshot()
	if snap.NetSize != -2 {
		t.Fatalf("NetSize = %v, want -2", snap.NetSize)
	}
	if snap.RealizedPnL != 30 { // (100-90)*3 covering the short
		t.Fatalf("RealizedPnL = %v, want 30", snap.RealizedPnL)
	}

	// A further Sell must still be able to reach (and extend) the
	// remaining short lot instead of stacking an unreachable one.
	l.OnFill(Fill{Timestamp: time.Now(), Side: types.Sell, Price: 95, Size: 2})
	snap = l.Snapshot()
	if snap.NetSize != -4 {
		t.Fatalf("NetSize after second sell = %v, want -4", snap.NetSize)
	}

	// Buying back everything must now fully flatten and realize PnL on
	// every unit, proving no lot was left stranded mid-queue.
	l.OnFill(Fill{Timestamp: time.Now(), Side: types.Buy, Price: 80, Size: 4})
	snap = l.Snapshot()
	if snap.NetSize != 0 {
		t.Fatalf("NetSize after flattening = %v, want 0", snap.NetSize)
	}
}

func TestNetDeltaClampedToCapacity(t *testing.T) {
	t.Parallel()
	l := New()
	l.OnFill(Fill{Timestamp: time.Now(), Side: types.Buy, Price: 100, Size: 50})

	if got := l.NetDelta(10); got != 1 {
		t.Errorf("NetDelta = %v, want clamped to 1", got)
	}
}

func TestUnrealizedPnLMarksToMarket(t *testing.T) {
	t.Parallel()
	l := New()
	l.OnFill(Fill{Timestamp: time.Now(), Side: types.Buy, Price: 100, Size: 10})
	l.UpdateMarkToMarket(105)

	snap := l.Snapshot()
	if snap.UnrealizedPnL != 50 {
		t.Errorf("UnrealizedPnL = %v, want 50", snap.UnrealizedPnL)
	}
}
