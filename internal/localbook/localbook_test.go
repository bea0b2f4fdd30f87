package localbook

import (
	"testing"

	"tacticmm/internal/fairvalue"
	"tacticmm/pkg/types"
)

func TestInsideImprovementScenario(t *testing.T) {
	t.Parallel()
	// Spec.md §8 scenario 1.
	lb := New(fairvalue.DepthWeightedMid{})

	out := lb.HandleBookUpdate([]types.MarketEvent{
		types.NewLevelSet(types.Buy, 100, 5),
		types.NewLevelSet(types.Sell, 110, 5),
	})
	if len(out) != 0 {
		t.Fatalf("first update (no previous BBO) emitted %d inside orders, want 0", len(out))
	}

	out = lb.HandleBookUpdate([]types.MarketEvent{
		types.NewLevelSet(types.Buy, 102, 3),
	})
	if len(out) != 1 {
		t.Fatalf("got %d inside orders, want 1: %+v", len(out), out)
	}
	want := types.InsideOrder{Side: types.Buy, InsertPrice: 102, InsertSize: 3}
	if out[0] != want {
		t.Errorf("inside order = %+v, want %+v", out[0], want)
	}
}

func TestGapScenario(t *testing.T) {
	t.Parallel()
	// Spec.md §8 scenario 2.
	lb := New(fairvalue.DepthWeightedMid{})

	lb.HandleBookUpdate([]types.MarketEvent{
		types.NewLevelSet(types.Buy, 100, 5),
		types.NewLevelSet(types.Sell, 110, 5),
	})

	out := lb.HandleBookUpdate([]types.MarketEvent{
		types.NewLevelSet(types.Sell, 110, 0),
		types.NewLevelSet(types.Sell, 115, 4),
	})
	if len(out) != 1 {
		t.Fatalf("got %d inside orders, want 1 synthetic gap order: %+v", len(out), out)
	}
	want := types.InsideOrder{Side: types.Buy, InsertPrice: 110, InsertSize: 1}
	if out[0] != want {
		t.Errorf("inside order = %+v, want %+v", out[0], want)
	}
}

func TestGapOnBidSideSynthesizesSell(t *testing.T) {
	t.Parallel()
	lb := New(fairvalue.DepthWeightedMid{})

	lb.HandleBookUpdate([]types.MarketEvent{
		types.NewLevelSet(types.Buy, 100, 5),
		types.NewLevelSet(types.Sell, 110, 5),
	})

	out := lb.HandleBookUpdate([]types.MarketEvent{
		types.NewLevelSet(types.Buy, 100, 0),
		types.NewLevelSet(types.Buy, 95, 4),
	})
	if len(out) != 1 {
		t.Fatalf("got %d inside orders, want 1 synthetic gap order: %+v", len(out), out)
	}
	want := types.InsideOrder{Side: types.Sell, InsertPrice: 100, InsertSize: 1}
	if out[0] != want {
		t.Errorf("inside order = %+v, want %+v", out[0], want)
	}
}

func TestNoChangeEmitsNothing(t *testing.T) {
	t.Parallel()
	lb := New(fairvalue.DepthWeightedMid{})

	lb.HandleBookUpdate([]types.MarketEvent{
		types.NewLevelSet(types.Buy, 100, 5),
		types.NewLevelSet(types.Sell, 110, 5),
	})
	out := lb.HandleBookUpdate([]types.MarketEvent{
		types.NewLevelSet(types.Buy, 100, 6),
	})
	if len(out) != 0 {
		t.Errorf("got %d inside orders for a same-price size change, want 0: %+v", len(out), out)
	}
}
