// Package tactic implements the quoting decision logic, spec.md §4.4:
// consumes local/remote fair-value changes and inside-order events and
// decides what, if anything, to quote.
//
// The reservation-price / optimal-spread model is carried over from
// internal/strategy/maker.go's Avellaneda-Stoikov implementation,
// generalized from Polymarket's binary-market price range [0,1] and
// USD-denominated order sizing to the generic integer-tick Price and a
// configured base size this spec's single instrument uses.
package tactic

import (
	"math"

	"tacticmm/pkg/types"
)

// Config holds the Avellaneda-Stoikov parameters and sizing knobs. Every
// field is intended to be set from internal/config, not hardcoded.
type Config struct {
	Gamma float64 // risk aversion
	Sigma float64 // estimated volatility
	K     float64 // order arrival intensity
	T     float64 // time horizon

	BaseSize         float64 // base quote size before inventory skew adjustment
	MinSize          float64 // floor below which a side is not quoted
	MinSpreadTicks   float64 // minimum bid/ask spread in ticks
	PriceToleranceTk float64 // reconcile: keep an order within this many ticks of desired
	SizeTolerance    float64 // reconcile: keep an order within this fraction of desired size
}

// Quote is one side of a desired quote.
type Quote struct {
	Side  types.Side
	Price types.Price
	Size  float64
}

// Tactic turns a fair-value reading and inventory skew into a desired
// two-sided quote.
type Tactic struct {
	cfg Config
}

// New builds a Tactic from its tuning configuration.
func New(cfg Config) *Tactic {
	return &Tactic{cfg: cfg}
}

// ComputeQuotes implements the Avellaneda-Stoikov model:
//
//	reservation_price = fair - netDelta * gamma * sigma^2 * T
//	optimal_spread    = gamma * sigma^2 * T + (2/gamma) * ln(1 + gamma/k)
//	bid = reservation_price - optimal_spread/2
//	ask = reservation_price + optimal_spread/2
//
// netDelta is inventory skew in [-1, 1]: positive (long) lowers quotes to
// attract buyers, negative (short) raises them to attract sellers. Returns nil for a side
// that doesn't clear MinSize after the inventory size cut.
func (t *Tactic) ComputeQuotes(fair types.FairReading, netDelta float64) (bid, ask *Quote) {
	c := t.cfg
	reservation := fair.FairPrice - netDelta*c.Gamma*c.Sigma*c.Sigma*c.T
	spread := c.Gamma*c.Sigma*c.Sigma*c.T + (2.0/c.Gamma)*math.Log(1+c.Gamma/c.K)

	bidRaw := reservation - spread/2
	askRaw := reservation + spread/2
	if (askRaw - bidRaw) < c.MinSpreadTicks {
		bidRaw = reservation - c.MinSpreadTicks/2
		askRaw = reservation + c.MinSpreadTicks/2
	}
	if bidRaw < 0 {
		bidRaw = 0
	}

	bidPrice := types.Price(math.Floor(bidRaw))
	askPrice := types.Price(math.Ceil(askRaw))
	if bidPrice >= askPrice {
		if bidPrice == 0 {
			askPrice = bidPrice + 1
		} else {
			bidPrice = askPrice - 1
		}
	}

	absDelta := math.Abs(netDelta)
	sizeFactor := 1.0 - 0.5*absDelta
	size := c.BaseSize * sizeFactor

	if size >= c.MinSize {
		bid = &Quote{Side: types.Buy, Price: bidPrice, Size: size}
		ask = &Quote{Side: types.Sell, Price: askPrice, Size: size}
	}
	return bid, ask
}

// Reconcile diffs the desired quotes against the currently live orders on
// each side (nil if that side has no live order) and reports what to do:
// which live order ids to cancel, and which desired quotes still need to be
// placed because nothing acceptably close is already live. An existing
// order is kept (no cancel, no place) if its price is within
// PriceToleranceTk ticks and its remaining size is within SizeTolerance of
// the desired size — mirrors internal/strategy/maker.go's reconcileOrders.
//
// insideOrders are the real/synthetic InsideOrder events the local book
// produced on this turn (spec.md §4.3/§4.4: "For every inside order event
// (real or synthetic) the tactic may decide to place a new order"). A side
// with at least one inside-order event is force-replaced — its tolerance
// check is skipped — even if the existing live order would otherwise have
// been kept, because an inside order signals the book moved in a way a
// stale quote on that side would miss (per §4.3's rationale for gap-fill
// synthetic orders: "a sudden gap would otherwise produce no event,
// leaving stale quotes").
func (t *Tactic) Reconcile(desiredBid, desiredAsk *Quote, liveBid, liveAsk *types.OrderRecord, insideOrders []types.InsideOrder) (toCancel []string, toPlace []*Quote) {
	var chaseBid, chaseAsk bool
	for _, io := range insideOrders {
		if io.Side == types.Buy {
			chaseBid = true
		} else {
			chaseAsk = true
		}
	}

	keepBid := !chaseBid && t.matches(desiredBid, liveBid)
	keepAsk := !chaseAsk && t.matches(desiredAsk, liveAsk)

	if liveBid != nil && !keepBid {
		toCancel = append(toCancel, liveBid.OrderID)
	}
	if liveAsk != nil && !keepAsk {
		toCancel = append(toCancel, liveAsk.OrderID)
	}
	if desiredBid != nil && !keepBid {
		toPlace = append(toPlace, desiredBid)
	}
	if desiredAsk != nil && !keepAsk {
		toPlace = append(toPlace, desiredAsk)
	}
	return toCancel, toPlace
}

func (t *Tactic) matches(desired *Quote, live *types.OrderRecord) bool {
	if desired == nil || live == nil {
		return desired == nil && live == nil
	}
	remaining := live.RequestedSize - live.CumFilledSize
	priceDiff := math.Abs(float64(desired.Price) - float64(live.Price))
	if priceDiff > t.cfg.PriceToleranceTk {
		return false
	}
	if desired.Size == 0 {
		return remaining == 0
	}
	return math.Abs(remaining-desired.Size)/desired.Size <= t.cfg.SizeTolerance
}
