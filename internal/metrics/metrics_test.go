package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordResetIncrementsCounterAndSetsGauge(t *testing.T) {
	t.Parallel()
	m := New()

	m.RecordReset(true, 2)
	m.RecordReset(false, 0)

	if got := testutil.ToFloat64(m.Resets.WithLabelValues("true")); got != 1 {
		t.Errorf("bad-reset counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Resets.WithLabelValues("false")); got != 1 {
		t.Errorf("clean-reset counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ConsecutiveBadRes); got != 0 {
		t.Errorf("ConsecutiveBadRes = %v, want 0 after the clean reset cleared it", got)
	}
}

func TestOrdersPlacedCountedBySide(t *testing.T) {
	t.Parallel()
	m := New()

	m.OrdersPlaced.WithLabelValues("buy").Inc()
	m.OrdersPlaced.WithLabelValues("buy").Inc()
	m.OrdersPlaced.WithLabelValues("sell").Inc()

	if got := testutil.ToFloat64(m.OrdersPlaced.WithLabelValues("buy")); got != 2 {
		t.Errorf("buy placements = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.OrdersPlaced.WithLabelValues("sell")); got != 1 {
		t.Errorf("sell placements = %v, want 1", got)
	}
}

func TestGaugesReflectLastSetValue(t *testing.T) {
	t.Parallel()
	m := New()

	m.BlendedFair.Set(101.5)
	m.NetPosition.Set(-3.25)

	if got := testutil.ToFloat64(m.BlendedFair); got != 101.5 {
		t.Errorf("BlendedFair = %v, want 101.5", got)
	}
	if got := testutil.ToFloat64(m.NetPosition); got != -3.25 {
		t.Errorf("NetPosition = %v, want -3.25", got)
	}
}
