// Package fairvalue defines the pure fair-value function port spec.md §6
// treats as an external collaborator, plus a default implementation so the
// repo runs end to end without a real pricing model plugged in.
package fairvalue

import "tacticmm/pkg/types"

// Valuer computes a fair-value reading from a book's current state. It must
// be a pure function of its arguments: no I/O, no mutation, safe to call on
// every book change.
type Valuer interface {
	Value(bids, asks LevelIterator, bbo types.BBO) types.FairReading
}

// LevelIterator walks one side of a book in its priority order (descending
// for bids, ascending for asks), stopping when fn returns false.
type LevelIterator func(fn func(price types.Price, size float64) bool)

// DepthWeightedMid is the default Valuer: a size-weighted mid price over the
// top N levels on each side, falling back to the plain BBO mid only when the
// levels walked carry no size at all. It stands in for the real pricing model spec.md treats as an
// external pure function — see DESIGN.md.
type DepthWeightedMid struct {
	Depth int // number of levels considered per side, default 5 if <= 0
}

// Value implements Valuer.
func (d DepthWeightedMid) Value(bids, asks LevelIterator, bbo types.BBO) types.FairReading {
	if !bbo.Ok {
		return types.FairReading{}
	}
	depth := d.Depth
	if depth <= 0 {
		depth = 5
	}

	var bidNotional, bidSize float64
	n := 0
	bids(func(price types.Price, size float64) bool {
		bidNotional += float64(price) * size
		bidSize += size
		n++
		return n < depth
	})

	var askNotional, askSize float64
	n = 0
	asks(func(price types.Price, size float64) bool {
		askNotional += float64(price) * size
		askSize += size
		n++
		return n < depth
	})

	totalSize := bidSize + askSize
	if totalSize <= 0 {
		mid := (float64(bbo.Bid.Price) + float64(bbo.Ask.Price)) / 2
		return types.FairReading{FairPrice: mid, FairShares: bbo.Bid.Size + bbo.Ask.Size}
	}

	fair := (bidNotional + askNotional) / totalSize
	return types.FairReading{FairPrice: fair, FairShares: totalSize}
}
