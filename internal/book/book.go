// Package book implements the side-sorted price-level container described
// in spec.md §4.1: apply market events, query the best bid/offer, and walk
// each side in price priority order.
//
// Levels are kept in a github.com/tidwall/btree.BTreeG per side, the same
// sorted-container approach internal/engine/orderbook.go uses in the
// saiputravu-Exchange reference repo, adapted from an order-queue-per-level
// matching engine down to the plain level map this tactic needs.
package book

import (
	"fmt"

	"github.com/tidwall/btree"

	"tacticmm/pkg/types"
)

type level struct {
	price types.Price
	size  float64
}

// Book is a single side-sorted order book: one price-level container per
// side. It stores no order objects, only aggregated size per price level,
// which is all the tactic's signals need.
type Book struct {
	bids *btree.BTreeG[*level] // sorted descending by price
	asks *btree.BTreeG[*level] // sorted ascending by price
}

// New builds an empty book.
func New() *Book {
	return &Book{
		bids: btree.NewBTreeG(func(a, b *level) bool { return a.price > b.price }),
		asks: btree.NewBTreeG(func(a, b *level) bool { return a.price < b.price }),
	}
}

func (b *Book) sideTree(side types.Side) *btree.BTreeG[*level] {
	if side == types.Buy {
		return b.bids
	}
	return b.asks
}

// Apply applies one market event to the book. Clear empties both sides.
// LevelSet inserts, or removes when size == 0. Trade is informational and
// never mutates the book. A negative size is a fatal invariant violation —
// the caller's venue connection should have never produced one.
func (b *Book) Apply(ev types.MarketEvent) {
	switch ev.Kind {
	case types.Clear:
		b.bids = btree.NewBTreeG(func(a, b *level) bool { return a.price > b.price })
		b.asks = btree.NewBTreeG(func(a, b *level) bool { return a.price < b.price })
	case types.Trade:
		// informational only
	case types.LevelSet:
		if ev.Size < 0 {
			panic(fmt.Sprintf("book: negative size %v at price %v", ev.Size, ev.Price))
		}
		tree := b.sideTree(ev.Side)
		if ev.Size == 0 {
			tree.Delete(&level{price: ev.Price})
			return
		}
		tree.Set(&level{price: ev.Price, size: ev.Size})
	}
}

// BBO returns the top-of-book snapshot. Ok is false until both sides have
// at least one level.
func (b *Book) BBO() types.BBO {
	bid, bidOk := b.bids.Min()
	ask, askOk := b.asks.Min()
	if !bidOk || !askOk {
		return types.BBO{}
	}
	return types.BBO{
		Bid: types.BBOSide{Price: bid.price, Size: bid.size},
		Ask: types.BBOSide{Price: ask.price, Size: ask.size},
		Ok:  true,
	}
}

// Bids iterates bid levels in descending price order, calling fn for each.
// Iteration stops early if fn returns false.
func (b *Book) Bids(fn func(price types.Price, size float64) bool) {
	b.bids.Scan(func(l *level) bool { return fn(l.price, l.size) })
}

// Asks iterates ask levels in ascending price order, calling fn for each.
// Iteration stops early if fn returns false.
func (b *Book) Asks(fn func(price types.Price, size float64) bool) {
	b.asks.Scan(func(l *level) bool { return fn(l.price, l.size) })
}

// Len returns (bid level count, ask level count).
func (b *Book) Len() (int, int) {
	return b.bids.Len(), b.asks.Len()
}
