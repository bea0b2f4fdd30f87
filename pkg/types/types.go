// Package types defines the shared data model used across the tactic: the
// core domain vocabulary (prices, sides, market events, order records), and
// the wire-level JSON shapes exchanged with venues over WebSocket and REST.
// It has no dependencies on internal packages, so it can be imported by any
// layer.
package types

import "time"

// ————————————————————————————————————————————————————————————————————————
// Core enums
// ————————————————————————————————————————————————————————————————————————

// Side represents the direction of an order or book level: Buy or Sell.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderType enumerates the supported order lifecycles on the home venue.
type OrderType string

const (
	OrderTypeGTC OrderType = "GTC" // good-til-cancelled
)

// ————————————————————————————————————————————————————————————————————————
// Market data model (spec.md §3)
// ————————————————————————————————————————————————————————————————————————

// Price is an integer in exchange-native ticks. Conversion to a display
// float is presentation-only and never happens on the hot path.
type Price uint64

// MarketEventKind tags the variant carried by a MarketEvent.
type MarketEventKind int

const (
	Clear MarketEventKind = iota
	LevelSet
	Trade
)

// MarketEvent is a tagged variant over {Clear, LevelSet(side,price,size),
// Trade(side,price,size)}. Trade is informational and never mutates a book.
type MarketEvent struct {
	Kind  MarketEventKind
	Side  Side
	Price Price
	Size  float64
}

// NewClear builds a Clear event.
func NewClear() MarketEvent { return MarketEvent{Kind: Clear} }

// NewLevelSet builds a LevelSet event. size == 0 means "remove this level".
func NewLevelSet(side Side, price Price, size float64) MarketEvent {
	return MarketEvent{Kind: LevelSet, Side: side, Price: price, Size: size}
}

// NewTrade builds an informational Trade event.
func NewTrade(side Side, price Price, size float64) MarketEvent {
	return MarketEvent{Kind: Trade, Side: side, Price: price, Size: size}
}

// MarketEventBlock carries one venue's ordered sequence of events. Events
// within a block are applied atomically, in order, before any other block
// from any venue is considered.
type MarketEventBlock struct {
	VenueID int
	Events  []MarketEvent
}

// BBOSide is one side of a best-bid/best-offer snapshot.
type BBOSide struct {
	Price Price
	Size  float64
}

// BBO is the optional top-of-book snapshot, absent until both sides of a
// book have at least one level.
type BBO struct {
	Bid BBOSide
	Ask BBOSide
	Ok  bool
}

// FairReading is a venue-local or blended fair-value estimate.
type FairReading struct {
	FairPrice  float64
	FairShares float64 // always >= 0
}

// InsideOrder is a real or synthetic signal that a new level appeared
// strictly inside the previous BBO, or that a gap opened on one side and
// should be chased on the opposite side.
type InsideOrder struct {
	Side        Side
	InsertPrice Price
	InsertSize  float64
}

// OrderStatus is the one-way lifecycle of an order record.
type OrderStatus int

const (
	Proposed OrderStatus = iota
	Live
	Late
	CancelRequested
	Gone
)

func (s OrderStatus) String() string {
	switch s {
	case Proposed:
		return "proposed"
	case Live:
		return "live"
	case Late:
		return "late"
	case CancelRequested:
		return "cancel_requested"
	case Gone:
		return "gone"
	default:
		return "unknown"
	}
}

// OrderRecord is the authoritative state of one order. cum_filled_size is
// monotonically non-decreasing and never exceeds requested_size; status
// transitions are one-way through the OrderStatus ordering (Gone is
// terminal); OrderID is unique for the process lifetime.
type OrderRecord struct {
	OrderID        string
	Side           Side
	Price          Price
	RequestedSize  float64
	CumFilledSize  float64
	Status         OrderStatus
	PlacedAt       time.Time
	CancelDeadline time.Time
}

// Transaction is one venue-reported fill update. Timestamp is a monotone
// (per venue) string sort key. CumSize is the venue's cumulative filled
// size for the order as of this report; Size is the incremental delta the
// fill poller derives as `CumSize - previously_seen_cum_size(OrderID)`
// before handing the transaction to the order manager.
type Transaction struct {
	ExecID    string
	OrderID   string
	Timestamp string
	CumSize   float64
	Size      float64
	Price     Price
	Side      Side
}

// ————————————————————————————————————————————————————————————————————————
// Wire-level venue events
// ————————————————————————————————————————————————————————————————————————
// These map 1:1 to the JSON messages a generic CLOB-style venue sends over
// its WebSocket. Market channel events: "book" (full snapshot),
// "price_change" (delta). User channel events: "trade" (fill), "order"
// (placement/cancel/update lifecycle).

// PriceLevel is a single bid or ask level as the venue encodes it over the
// wire: strings, to preserve decimal precision across JSON round-trips.
type PriceLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// WSBookEvent is a full order book snapshot from the market WS channel.
type WSBookEvent struct {
	EventType string       `json:"event_type"`
	AssetID   string       `json:"asset_id"`
	Market    string       `json:"market"`
	Timestamp string       `json:"timestamp"`
	Hash      string       `json:"hash"`
	Buys      []PriceLevel `json:"buys"`
	Sells     []PriceLevel `json:"sells"`
}

// WSPriceChange is a single price level update within a price_change event.
type WSPriceChange struct {
	AssetID string `json:"asset_id"`
	Price   string `json:"price"`
	Size    string `json:"size"`
	Side    string `json:"side"`
	Hash    string `json:"hash"`
}

// WSPriceChangeEvent is an incremental order book update, applied atomically.
type WSPriceChangeEvent struct {
	EventType    string          `json:"event_type"`
	Market       string          `json:"market"`
	Timestamp    string          `json:"timestamp"`
	PriceChanges []WSPriceChange `json:"price_changes"`
}

// WSTradeEvent is a fill notification from the user WS channel.
type WSTradeEvent struct {
	EventType string `json:"event_type"`
	ID        string `json:"id"`
	AssetID   string `json:"asset_id"`
	Side      string `json:"side"`
	Size      string `json:"size"`
	Price     string `json:"price"`
	Timestamp string `json:"timestamp"`
}

// WSOrderEvent is an order lifecycle notification from the user WS channel.
type WSOrderEvent struct {
	EventType    string `json:"event_type"`
	ID           string `json:"id"`
	AssetID      string `json:"asset_id"`
	Side         string `json:"side"`
	Price        string `json:"price"`
	OriginalSize string `json:"original_size"`
	SizeMatched  string `json:"size_matched"`
	Timestamp    string `json:"timestamp"`
	Type         string `json:"type"` // "PLACEMENT", "UPDATE", "CANCELLATION"
}

// WSAuth contains the L2 API credentials for authenticating the user
// WS channel / home-venue REST requests.
type WSAuth struct {
	APIKey     string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

// WSSubscribeMsg is the initial subscription message sent on connect.
type WSSubscribeMsg struct {
	Auth     *WSAuth  `json:"auth,omitempty"`
	Type     string   `json:"type"`
	AssetIDs []string `json:"assets_ids,omitempty"`
}

// BookResponse is the REST response from GET /book for a single token.
type BookResponse struct {
	AssetID   string       `json:"asset_id"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	Hash      string       `json:"hash"`
	Timestamp string       `json:"timestamp"`
	TickSize  string       `json:"tick_size"`
}

// UserOrder is the high-level order the tactic hands to the exchange client.
type UserOrder struct {
	AssetID    string    `json:"asset_id"`
	Price      float64   `json:"price"`
	Size       float64   `json:"size"`
	Side       Side      `json:"side"`
	OrderType  OrderType `json:"order_type"`
	Expiration int64     `json:"expiration"`
}

// OrderResponse is the REST response for a single placed order.
type OrderResponse struct {
	Success  bool   `json:"success"`
	ErrorMsg string `json:"errorMsg"`
	OrderID  string `json:"orderID"`
	Status   string `json:"status"`
}

// CancelResponse is returned by DELETE /orders and /cancel-all.
type CancelResponse struct {
	Canceled []string `json:"canceled"`
}
