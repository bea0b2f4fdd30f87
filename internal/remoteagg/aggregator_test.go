package remoteagg

import (
	"testing"

	"tacticmm/internal/fairvalue"
	"tacticmm/internal/venue"
	"tacticmm/pkg/types"
)

// blockAt builds a two-sided block that prices to mid with DepthWeightedMid
// and contributes 2*halfSize total shares (halfSize on each side).
func blockAt(v venue.ID, mid types.Price, halfSize float64) types.MarketEventBlock {
	return types.MarketEventBlock{
		VenueID: int(v),
		Events: []types.MarketEvent{
			types.NewLevelSet(types.Buy, mid-1, halfSize),
			types.NewLevelSet(types.Sell, mid+1, halfSize),
		},
	}
}

func TestBlendBelowThresholdUnavailable(t *testing.T) {
	t.Parallel()

	a := New(fairvalue.DepthWeightedMid{}, nil, 1.0)
	_, ok := a.ApplyBlock(blockAt(venue.RemoteAlpha, 100, 15))
	if ok {
		t.Fatal("blend available with a single venue at total weight 30 (< 100)")
	}
}

func TestBlendBelowMinVenueSizeIsExcluded(t *testing.T) {
	t.Parallel()

	a := New(fairvalue.DepthWeightedMid{}, nil, 1.0)
	// 2 units per side is below the per-venue minVenueSize gate (10).
	_, ok := a.ApplyBlock(blockAt(venue.RemoteAlpha, 100, 2))
	if ok {
		t.Fatal("blend available from a venue below minVenueSize")
	}
}

func TestBlendThresholdScenario(t *testing.T) {
	t.Parallel()

	// Spec.md §8 scenario 3: two venues, fair prices 100 and 102, smoothed
	// sizes 30 each, no trust adjustment -> total weight 60 < 100 ->
	// unavailable. Raising one to 80 -> total 110, blended ~101.45.
	a := New(fairvalue.DepthWeightedMid{}, nil, 1.0)

	_, ok := a.ApplyBlock(blockAt(venue.RemoteAlpha, 100, 15))
	if ok {
		t.Fatal("blend available after only one venue applied")
	}
	_, ok = a.ApplyBlock(blockAt(venue.RemoteBeta, 102, 15))
	if ok {
		t.Fatal("blend available at total weight 60, want unavailable (< 100)")
	}

	a2 := New(fairvalue.DepthWeightedMid{}, nil, 1.0)
	a2.ApplyBlock(blockAt(venue.RemoteAlpha, 100, 15))
	reading, ok := a2.ApplyBlock(blockAt(venue.RemoteBeta, 102, 40))
	if !ok {
		t.Fatal("blend unavailable at total weight 110, want available")
	}
	want := (100*30 + 102*80) / 110.0
	if diff := reading.FairPrice - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("blended fair = %v, want %v", reading.FairPrice, want)
	}
}

func TestTrustFactorsWeightVenues(t *testing.T) {
	t.Parallel()

	trust := TrustFactors{venue.RemoteAlpha: 2.5}
	a := New(fairvalue.DepthWeightedMid{}, trust, 1.0)
	a.ApplyBlock(blockAt(venue.RemoteAlpha, 100, 20)) // weight 40*2.5=100
	reading, ok := a.ApplyBlock(blockAt(venue.RemoteAlpha, 100, 20))
	if !ok {
		t.Fatal("blend unavailable with trust-adjusted weight >= 100")
	}
	if reading.FairPrice != 100 {
		t.Errorf("FairPrice = %v, want 100", reading.FairPrice)
	}
}

func TestIgnoresHomeVenueBlock(t *testing.T) {
	t.Parallel()

	a := New(fairvalue.DepthWeightedMid{}, nil, 1.0)
	_, ok := a.ApplyBlock(blockAt(venue.Home, 100, 100))
	if ok {
		t.Fatal("ApplyBlock should never produce a reading for the home venue")
	}
}
