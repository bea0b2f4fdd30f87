// Package remoteagg implements the remote venue aggregator, spec.md §4.2,
// grounded directly on original_source/src/remote_venue_aggregator.rs:
// one book, one last fair price, and one size EMA per remote venue; a
// trust-weighted blend with a minimum-size-per-venue gate and a minimum
// total-weighted-size gate before a blended reading is considered available.
package remoteagg

import (
	"tacticmm/internal/book"
	"tacticmm/internal/ema"
	"tacticmm/internal/fairvalue"
	"tacticmm/internal/venue"
	"tacticmm/pkg/types"
)

// Thresholds mirrored from remote_venue_aggregator.rs::calculate_fair: a
// venue's smoothed size must clear minVenueSize before it contributes to the
// blend, and the total trust-adjusted weight must clear minTotalWeight
// before the blended reading is considered available.
const (
	minVenueSize   = 10.0
	minTotalWeight = 100.0
)

// TrustFactors maps a venue to the multiplier applied to its smoothed size
// before blending. Missing entries default to 1.0. Configuration, not law —
// spec.md §4.2.
type TrustFactors map[venue.ID]float64

func (t TrustFactors) factor(v venue.ID) float64 {
	if f, ok := t[v]; ok {
		return f
	}
	return 1.0
}

// Aggregator owns per-remote-venue books, EMAs, and last fair prices, and
// recomputes the blended reading as each venue's block is applied.
type Aggregator struct {
	valuer fairvalue.Valuer
	trust  TrustFactors

	books [venue.Count]*book.Book
	emas  [venue.Count]*ema.EMA
	fairs [venue.Count]float64
	have  [venue.Count]bool // whether fairs[v] holds a valid reading
}

// New builds an aggregator for every remote venue, using valuer to price
// each venue's book and trust to weight venues relative to each other.
func New(valuer fairvalue.Valuer, trust TrustFactors, emaAlpha float64) *Aggregator {
	a := &Aggregator{valuer: valuer, trust: trust}
	for _, v := range venue.Remotes() {
		a.books[v] = book.New()
		a.emas[v] = ema.New(emaAlpha)
	}
	return a
}

// ApplyBlock applies one venue's market-event block (in order, as one
// atomic unit), recomputes that venue's fair value if its book now has both
// sides, and returns the freshly blended reading. ok is false if fewer than
// minTotalWeight units of trust-adjusted size are available.
func (a *Aggregator) ApplyBlock(block types.MarketEventBlock) (types.FairReading, bool) {
	v := venue.ID(block.VenueID)
	if !v.IsRemote() {
		return types.FairReading{}, false
	}
	b := a.books[v]
	for _, ev := range block.Events {
		b.Apply(ev)
	}

	bbo := b.BBO()
	if bbo.Ok {
		reading := a.valuer.Value(b.Bids, b.Asks, bbo)
		a.fairs[v] = reading.FairPrice
		a.have[v] = true
		a.emas[v].AddValue(reading.FairShares)
	}

	return a.blend()
}

// blend implements remote_venue_aggregator.rs::calculate_fair exactly: for
// each venue with a smoothed size >= minVenueSize, weight it by smoothed
// size * trust factor; sum price*weight and weight; if the total weight is
// below minTotalWeight the reading is unavailable.
func (a *Aggregator) blend() (types.FairReading, bool) {
	var totalPrice, totalWeight float64

	for _, v := range venue.Remotes() {
		if !a.have[v] {
			continue
		}
		size, ok := a.emas[v].GetValue()
		if !ok {
			size = 0.0
		}
		if size < 0 {
			panic("remoteagg: negative smoothed size")
		}
		if size < minVenueSize {
			continue
		}
		weight := size * a.trust.factor(v)
		totalPrice += a.fairs[v] * weight
		totalWeight += weight
	}

	if totalWeight < minTotalWeight {
		return types.FairReading{}, false
	}
	return types.FairReading{FairPrice: totalPrice / totalWeight, FairShares: totalWeight}, true
}
