package tactic

import (
	"testing"

	"tacticmm/pkg/types"
)

func testConfig() Config {
	return Config{
		Gamma: 0.1, Sigma: 1.0, K: 1.5, T: 1.0,
		BaseSize: 10, MinSize: 1,
		MinSpreadTicks: 1, PriceToleranceTk: 1, SizeTolerance: 0.1,
	}
}

func TestComputeQuotesBidBelowAsk(t *testing.T) {
	t.Parallel()
	tac := New(testConfig())
	bid, ask := tac.ComputeQuotes(types.FairReading{FairPrice: 100}, 0)
	if bid == nil || ask == nil {
		t.Fatal("expected both sides quoted at zero inventory skew")
	}
	if bid.Price >= ask.Price {
		t.Errorf("bid %v >= ask %v", bid.Price, ask.Price)
	}
}

func TestInventorySkewReducesSize(t *testing.T) {
	t.Parallel()
	tac := New(testConfig())
	bidFlat, _ := tac.ComputeQuotes(types.FairReading{FairPrice: 100}, 0)
	bidSkewed, _ := tac.ComputeQuotes(types.FairReading{FairPrice: 100}, 0.8)

	if bidSkewed.Size >= bidFlat.Size {
		t.Errorf("skewed size %v should be smaller than flat size %v", bidSkewed.Size, bidFlat.Size)
	}
}

func TestReconcileKeepsMatchingOrder(t *testing.T) {
	t.Parallel()
	tac := New(testConfig())
	desired := &Quote{Side: types.Buy, Price: 100, Size: 10}
	live := &types.OrderRecord{OrderID: "1", Side: types.Buy, Price: 100, RequestedSize: 10}

	toCancel, toPlace := tac.Reconcile(desired, nil, live, nil, nil)
	if len(toCancel) != 0 || len(toPlace) != 0 {
		t.Errorf("matching order should be kept, got toCancel=%v toPlace=%v", toCancel, toPlace)
	}
}

func TestReconcileCancelsAndReplaces(t *testing.T) {
	t.Parallel()
	tac := New(testConfig())
	desired := &Quote{Side: types.Buy, Price: 105, Size: 10}
	live := &types.OrderRecord{OrderID: "1", Side: types.Buy, Price: 100, RequestedSize: 10}

	toCancel, toPlace := tac.Reconcile(desired, nil, live, nil, nil)
	if len(toCancel) != 1 || toCancel[0] != "1" {
		t.Errorf("toCancel = %v, want [1]", toCancel)
	}
	if len(toPlace) != 1 || toPlace[0] != desired {
		t.Errorf("toPlace = %v, want [desired]", toPlace)
	}
}

func TestReconcileNoDesiredCancelsLive(t *testing.T) {
	t.Parallel()
	tac := New(testConfig())
	live := &types.OrderRecord{OrderID: "1", Side: types.Buy, Price: 100, RequestedSize: 10}

	toCancel, toPlace := tac.Reconcile(nil, nil, live, nil, nil)
	if len(toCancel) != 1 || len(toPlace) != 0 {
		t.Errorf("toCancel=%v toPlace=%v, want cancel only", toCancel, toPlace)
	}
}

func TestReconcileForceReplacesOnInsideOrderEvenIfMatching(t *testing.T) {
	t.Parallel()
	// Spec.md §4.3/§4.4: an inside-order event on a side forces that side
	// to re-quote, even if the currently live order would otherwise have
	// been kept under the normal price/size tolerance check.
	tac := New(testConfig())
	desired := &Quote{Side: types.Buy, Price: 100, Size: 10}
	live := &types.OrderRecord{OrderID: "1", Side: types.Buy, Price: 100, RequestedSize: 10}
	insideOrders := []types.InsideOrder{{Side: types.Buy, InsertPrice: 102, InsertSize: 3}}

	toCancel, toPlace := tac.Reconcile(desired, nil, live, nil, insideOrders)
	if len(toCancel) != 1 || toCancel[0] != "1" {
		t.Errorf("toCancel = %v, want [1]", toCancel)
	}
	if len(toPlace) != 1 || toPlace[0] != desired {
		t.Errorf("toPlace = %v, want [desired]", toPlace)
	}
}

func TestReconcileIgnoresInsideOrderOnOtherSide(t *testing.T) {
	t.Parallel()
	// An ask-side inside order must not force the bid side to re-quote.
	tac := New(testConfig())
	desired := &Quote{Side: types.Buy, Price: 100, Size: 10}
	live := &types.OrderRecord{OrderID: "1", Side: types.Buy, Price: 100, RequestedSize: 10}
	insideOrders := []types.InsideOrder{{Side: types.Sell, InsertPrice: 110, InsertSize: 3}}

	toCancel, toPlace := tac.Reconcile(desired, nil, live, nil, insideOrders)
	if len(toCancel) != 0 || len(toPlace) != 0 {
		t.Errorf("toCancel=%v toPlace=%v, want matching bid kept", toCancel, toPlace)
	}
}
