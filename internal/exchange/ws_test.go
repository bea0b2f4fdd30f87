package exchange

import (
	"testing"

	"tacticmm/pkg/types"
)

func testFeed() *VenueFeed {
	return NewVenueFeed(1, "wss://example.invalid", "asset-1", 100, testLogger())
}

func TestNormalizeBookEncodesClearThenLevelSet(t *testing.T) {
	t.Parallel()
	f := testFeed()

	block := f.normalizeBook(types.WSBookEvent{
		Buys:  []types.PriceLevel{{Price: "0.52", Size: "10"}},
		Sells: []types.PriceLevel{{Price: "0.55", Size: "8"}},
	})

	if len(block.Events) != 3 {
		t.Fatalf("len(events) = %d, want 3 (clear + 1 buy + 1 sell)", len(block.Events))
	}
	if block.Events[0].Kind != types.Clear {
		t.Errorf("events[0].Kind = %v, want Clear", block.Events[0].Kind)
	}
	if block.Events[1].Side != types.Buy || block.Events[1].Price != 52 {
		t.Errorf("events[1] = %+v, want Buy @ 52", block.Events[1])
	}
	if block.Events[2].Side != types.Sell || block.Events[2].Price != 55 {
		t.Errorf("events[2] = %+v, want Sell @ 55", block.Events[2])
	}
	if block.VenueID != 1 {
		t.Errorf("VenueID = %d, want 1", block.VenueID)
	}
}

func TestNormalizePriceChangeRoutesBySide(t *testing.T) {
	t.Parallel()
	f := testFeed()

	block := f.normalizePriceChange(types.WSPriceChangeEvent{
		PriceChanges: []types.WSPriceChange{
			{Price: "0.53", Size: "0", Side: "BUY"},
			{Price: "0.58", Size: "4", Side: "SELL"},
		},
	})

	if len(block.Events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(block.Events))
	}
	if block.Events[0].Side != types.Buy || block.Events[0].Size != 0 {
		t.Errorf("events[0] = %+v, want Buy size 0 (removal)", block.Events[0])
	}
	if block.Events[1].Side != types.Sell || block.Events[1].Price != 58 {
		t.Errorf("events[1] = %+v, want Sell @ 58", block.Events[1])
	}
}

func TestLevelSetSkipsMalformedPrice(t *testing.T) {
	t.Parallel()
	f := testFeed()

	_, ok := f.levelSet(types.Buy, "not-a-number", "10")
	if ok {
		t.Error("expected levelSet to reject a malformed price")
	}
}

func TestDispatchMessageIgnoresUnknownEventType(t *testing.T) {
	t.Parallel()
	f := testFeed()
	// Must not panic or block; blocks channel stays empty.
	f.dispatchMessage([]byte(`{"event_type":"last_trade_price"}`))
	select {
	case b := <-f.blocks:
		t.Fatalf("expected no block for unknown event type, got %+v", b)
	default:
	}
}
