// Package position implements the FIFO PnL ledger spec.md §1 lists as an
// external collaborator (position accounting, interface only). This repo
// still ships a concrete adapter behind that role so the tactic has
// something real to report through — reworked from
// internal/strategy/inventory.go's average-entry-price model into a true
// FIFO lot queue, since spec.md explicitly names FIFO bookkeeping.
//
// Like ordermgr, Ledger holds no lock: it is only ever touched from the
// single reactor goroutine.
package position

import (
	"time"

	"github.com/shopspring/decimal"

	"tacticmm/pkg/types"
)

// lot is one open FIFO entry: size opened at price.
type lot struct {
	size  decimal.Decimal
	price decimal.Decimal
}

// Fill is one execution applied to the ledger.
type Fill struct {
	Timestamp time.Time
	Side      types.Side
	Price     float64
	Size      float64
}

// Snapshot is a point-in-time read of the ledger, safe to copy and log.
type Snapshot struct {
	NetSize       float64
	RealizedPnL   float64
	UnrealizedPnL float64
	LastUpdated   time.Time
}

// Ledger tracks one instrument's position as a FIFO queue of open lots.
// A fill first closes opposite-signed lots from the front (oldest first),
// realizing PnL against each closed lot's entry price, then opens a new lot
// with any remaining size (see OnFill). Sizes use shopspring/decimal so
// repeated partial fills never drift off the order manager's
// cum_filled_size accounting.
type Ledger struct {
	lots          []lot
	realizedPnL   decimal.Decimal
	unrealizedPnL decimal.Decimal
	lastUpdated   time.Time
}

// New builds an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// OnFill applies one execution. A Buy first consumes any short lots at the
// front of the queue (closing them, realizing PnL), then opens a long lot
// with whatever size remains; a Sell is the mirror image against long
// lots. This keeps the queue's lots homogeneous in sign (all long, all
// short, or empty) so a later fill on either side always finds what it
// needs at the front — a true FIFO queue rather than one that can only
// ever close out lots[0].
func (l *Ledger) OnFill(f Fill) {
	size := decimal.NewFromFloat(f.Size)
	price := decimal.NewFromFloat(f.Price)

	switch f.Side {
	case types.Buy:
		remaining := size
		for remaining.IsPositive() && len(l.lots) > 0 && l.lots[0].size.IsNegative() {
			front := &l.lots[0]
			consumed := decimal.Min(remaining, front.size.Neg())
			l.realizedPnL = l.realizedPnL.Add(front.price.Sub(price).Mul(consumed))
			front.size = front.size.Add(consumed)
			remaining = remaining.Sub(consumed)
			if front.size.IsZero() {
				l.lots = l.lots[1:]
			}
		}
		if remaining.IsPositive() {
			l.lots = append(l.lots, lot{size: remaining, price: price})
		}
	case types.Sell:
		remaining := size
		for remaining.IsPositive() && len(l.lots) > 0 && l.lots[0].size.IsPositive() {
			front := &l.lots[0]
			consumed := decimal.Min(remaining, front.size)
			l.realizedPnL = l.realizedPnL.Add(price.Sub(front.price).Mul(consumed))
			front.size = front.size.Sub(consumed)
			remaining = remaining.Sub(consumed)
			if front.size.IsZero() {
				l.lots = l.lots[1:]
			}
		}
		if remaining.IsPositive() {
			// Short beyond what was held: open a short lot at this price.
			l.lots = append(l.lots, lot{size: remaining.Neg(), price: price})
		}
	}
	l.lastUpdated = f.Timestamp
}

// NetSize returns the signed net position: positive long, negative short.
func (l *Ledger) NetSize() float64 {
	total := decimal.Zero
	for _, lo := range l.lots {
		total = total.Add(lo.size)
	}
	f, _ := total.Float64()
	return f
}

// NetDelta returns inventory skew in [-1, 1] relative to capacity, used by
// the tactic to lean its quotes away from further accumulation. capacity
// must be > 0.
func (l *Ledger) NetDelta(capacity float64) float64 {
	if capacity <= 0 {
		return 0
	}
	delta := l.NetSize() / capacity
	if delta > 1 {
		return 1
	}
	if delta < -1 {
		return -1
	}
	return delta
}

// UpdateMarkToMarket recomputes unrealized PnL against the current mid
// price, marking every open lot (long or short) to market.
func (l *Ledger) UpdateMarkToMarket(mid float64) {
	midD := decimal.NewFromFloat(mid)
	total := decimal.Zero
	for _, lo := range l.lots {
		total = total.Add(midD.Sub(lo.price).Mul(lo.size))
	}
	l.unrealizedPnL = total
}

// Snapshot returns a read-only copy of the ledger's current state.
func (l *Ledger) Snapshot() Snapshot {
	realized, _ := l.realizedPnL.Float64()
	unrealized, _ := l.unrealizedPnL.Float64()
	return Snapshot{
		NetSize:       l.NetSize(),
		RealizedPnL:   realized,
		UnrealizedPnL: unrealized,
		LastUpdated:   l.lastUpdated,
	}
}
