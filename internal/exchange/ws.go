// ws.go implements one WebSocket market-data session per venue.
//
// VenueFeed satisfies internal/reactor's VenueConn port: Next(ctx) yields
// normalized types.MarketEventBlock values, Ping keeps the session alive.
// The feed auto-reconnects with exponential backoff (1s -> 30s max) and
// re-subscribes to its asset on reconnection. A read deadline (90s) ensures
// a silently-dead server is detected within three intervals of the
// reactor's default 30s ping.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tacticmm/pkg/types"
)

const (
	readTimeout      = 90 * time.Second
	maxReconnectWait = 30 * time.Second
	writeTimeout     = 10 * time.Second
	blockBufferSize  = 256
)

// VenueFeed manages a single venue's market WebSocket channel: book
// snapshots and incremental price_change deltas, normalized into
// types.MarketEventBlock per spec.md §6 ("a full-book snapshot from the
// venue is encoded as Clear followed by a sequence of LevelSet").
type VenueFeed struct {
	venueID      int
	url          string
	assetID      string
	ticksPerUnit float64 // scales decimal venue prices into integer ticks

	conn   *websocket.Conn
	connMu sync.Mutex

	blocks chan types.MarketEventBlock
	logger *slog.Logger
}

// NewVenueFeed builds a feed for one venue's single tracked asset.
// ticksPerUnit converts a decimal price string (e.g. "0.52") to an integer
// tick count (e.g. 10000 ticks/unit -> 5200).
func NewVenueFeed(venueID int, wsURL, assetID string, ticksPerUnit float64, logger *slog.Logger) *VenueFeed {
	return &VenueFeed{
		venueID:      venueID,
		url:          wsURL,
		assetID:      assetID,
		ticksPerUnit: ticksPerUnit,
		blocks:       make(chan types.MarketEventBlock, blockBufferSize),
		logger:       logger.With("component", "ws_feed", "venue_id", venueID),
	}
}

// Next blocks until a normalized event block is available or ctx is done.
func (f *VenueFeed) Next(ctx context.Context) (types.MarketEventBlock, error) {
	select {
	case block := <-f.blocks:
		return block, nil
	case <-ctx.Done():
		return types.MarketEventBlock{}, ctx.Err()
	}
}

// Ping sends a keepalive frame if the session is connected.
func (f *VenueFeed) Ping(ctx context.Context) error {
	return f.writeMessage(websocket.TextMessage, []byte("PING"))
}

// Run connects and maintains the WebSocket session with auto-reconnect.
// Blocks until ctx is cancelled; callers run it in its own goroutine.
func (f *VenueFeed) Run(ctx context.Context) error {
	backoff := time.Second

	for {
		err := f.connectAndRead(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		f.logger.Warn("venue feed disconnected, reconnecting", "error", err, "backoff", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxReconnectWait {
			backoff = maxReconnectWait
		}
	}
}

func (f *VenueFeed) connectAndRead(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	f.connMu.Lock()
	f.conn = conn
	f.connMu.Unlock()

	defer func() {
		f.connMu.Lock()
		conn.Close()
		f.conn = nil
		f.connMu.Unlock()
	}()

	sub := types.WSSubscribeMsg{Type: "market", AssetIDs: []string{f.assetID}}
	if err := f.writeJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	f.logger.Info("venue feed connected")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		f.dispatchMessage(msg)
	}
}

func (f *VenueFeed) dispatchMessage(data []byte) {
	var envelope struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		f.logger.Debug("ignoring non-json message", "data", string(data))
		return
	}

	var block types.MarketEventBlock
	switch envelope.EventType {
	case "book":
		var evt types.WSBookEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			f.logger.Error("unmarshal book event", "error", err)
			return
		}
		block = f.normalizeBook(evt)

	case "price_change":
		var evt types.WSPriceChangeEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			f.logger.Error("unmarshal price_change event", "error", err)
			return
		}
		block = f.normalizePriceChange(evt)

	default:
		f.logger.Debug("ignoring event", "type", envelope.EventType)
		return
	}

	if len(block.Events) == 0 {
		return
	}

	select {
	case f.blocks <- block:
	default:
		f.logger.Warn("block channel full, dropping event block")
	}
}

// normalizeBook encodes a full snapshot as Clear followed by one LevelSet
// per side per level, per spec.md §6.
func (f *VenueFeed) normalizeBook(evt types.WSBookEvent) types.MarketEventBlock {
	events := make([]types.MarketEvent, 0, 1+len(evt.Buys)+len(evt.Sells))
	events = append(events, types.NewClear())
	for _, lvl := range evt.Buys {
		if ev, ok := f.levelSet(types.Buy, lvl.Price, lvl.Size); ok {
			events = append(events, ev)
		}
	}
	for _, lvl := range evt.Sells {
		if ev, ok := f.levelSet(types.Sell, lvl.Price, lvl.Size); ok {
			events = append(events, ev)
		}
	}
	return types.MarketEventBlock{VenueID: f.venueID, Events: events}
}

func (f *VenueFeed) normalizePriceChange(evt types.WSPriceChangeEvent) types.MarketEventBlock {
	events := make([]types.MarketEvent, 0, len(evt.PriceChanges))
	for _, chg := range evt.PriceChanges {
		side := types.Buy
		if chg.Side == "SELL" || chg.Side == "sell" {
			side = types.Sell
		}
		if ev, ok := f.levelSet(side, chg.Price, chg.Size); ok {
			events = append(events, ev)
		}
	}
	return types.MarketEventBlock{VenueID: f.venueID, Events: events}
}

func (f *VenueFeed) levelSet(side types.Side, priceStr, sizeStr string) (types.MarketEvent, bool) {
	priceF, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		f.logger.Error("malformed price", "price", priceStr, "error", err)
		return types.MarketEvent{}, false
	}
	sizeF, err := strconv.ParseFloat(sizeStr, 64)
	if err != nil {
		f.logger.Error("malformed size", "size", sizeStr, "error", err)
		return types.MarketEvent{}, false
	}
	price := types.Price(math.Round(priceF * f.ticksPerUnit))
	return types.NewLevelSet(side, price, sizeF), true
}

func (f *VenueFeed) writeJSON(v interface{}) error {
	f.connMu.Lock()
	defer f.connMu.Unlock()
	if f.conn == nil {
		return fmt.Errorf("websocket not connected")
	}
	f.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return f.conn.WriteJSON(v)
}

func (f *VenueFeed) writeMessage(msgType int, data []byte) error {
	f.connMu.Lock()
	defer f.connMu.Unlock()
	if f.conn == nil {
		return nil // not yet connected; Ping is best-effort
	}
	f.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return f.conn.WriteMessage(msgType, data)
}
