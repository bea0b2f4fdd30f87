// Package localbook implements the home-venue book plus inside-order
// detection and gap-fill synthesis, spec.md §4.3, grounded directly on
// original_source/src/local_book.rs::handle_book_update.
package localbook

import (
	"tacticmm/internal/book"
	"tacticmm/internal/fairvalue"
	"tacticmm/pkg/types"
)

// LocalBook owns the home venue's book, its last fair reading, and the
// previous top-of-book snapshot used to detect what changed.
type LocalBook struct {
	valuer fairvalue.Valuer
	book   *book.Book
	fair   types.FairReading
	prev   types.BBO // previous BBO, used as the comparison baseline
}

// New builds an empty local book.
func New(valuer fairvalue.Valuer) *LocalBook {
	return &LocalBook{valuer: valuer, book: book.New()}
}

// Fair returns the most recently computed fair-value reading.
func (lb *LocalBook) Fair() types.FairReading { return lb.fair }

// BBO returns the current top-of-book snapshot.
func (lb *LocalBook) BBO() types.BBO { return lb.book.BBO() }

// HandleBookUpdate applies events (in order, as one atomic block) and
// returns every inside-order event they produced — real improvements plus
// any synthetic gap-fill orders.
//
// Mirrors handle_book_update exactly: apply events; if both the new and the
// previous BBO are present, walk the descending bid side emitting a Buy
// inside-order for every price strictly better than the old bid (stopping
// at the first price that isn't), mirror for asks; then check for a gap on
// each side and synthesize a size-1 order on the *opposite* side at the
// vanished price if one opened.
func (lb *LocalBook) HandleBookUpdate(events []types.MarketEvent) []types.InsideOrder {
	for _, ev := range events {
		lb.book.Apply(ev)
	}

	bbo := lb.book.BBO()
	if bbo.Ok {
		lb.fair = lb.valuer.Value(lb.book.Bids, lb.book.Asks, bbo)
	}

	var out []types.InsideOrder
	if bbo.Ok && lb.prev.Ok {
		oldBid := lb.prev.Bid.Price
		oldAsk := lb.prev.Ask.Price

		lb.book.Bids(func(price types.Price, size float64) bool {
			if price <= oldBid {
				return false
			}
			out = append(out, types.InsideOrder{Side: types.Buy, InsertPrice: price, InsertSize: size})
			return true
		})
		lb.book.Asks(func(price types.Price, size float64) bool {
			if price >= oldAsk {
				return false
			}
			out = append(out, types.InsideOrder{Side: types.Sell, InsertPrice: price, InsertSize: size})
			return true
		})

		if bbo.Ask.Price > oldAsk {
			out = append(out, types.InsideOrder{Side: types.Buy, InsertPrice: oldAsk, InsertSize: 1})
		}
		if bbo.Bid.Price < oldBid {
			out = append(out, types.InsideOrder{Side: types.Sell, InsertPrice: oldBid, InsertSize: 1})
		}
	}

	if bbo.Ok {
		lb.prev = bbo
	}
	return out
}
