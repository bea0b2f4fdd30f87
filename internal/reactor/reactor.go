// Package reactor implements the single cooperative event loop, spec.md
// §4.5/§4.6/§5/§9: one goroutine owns every piece of tactic state, selects
// one ready source per turn (market data prioritized), and drives epoch
// transitions on Reset.
//
// Grounded directly on the reactor sketch in
// original_source/src/main.rs: the DIE atomic bool and LOOP generation
// counter, the TacticInternalEvent/TacticEventType split (here: internalEvent
// and the dispatch in handleMarketBlock/handleInternal), the
// md_receiver.try_recv()-first / event_reader.try_recv()-fallback priority,
// the 2-second settle delay and orphan-drain spawn on Reset, and the
// five-consecutive-bad-reset abort.
package reactor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"tacticmm/internal/localbook"
	"tacticmm/internal/metrics"
	"tacticmm/internal/ordermgr"
	"tacticmm/internal/position"
	"tacticmm/internal/remoteagg"
	"tacticmm/internal/risk"
	"tacticmm/internal/tactic"
	"tacticmm/internal/venue"
	"tacticmm/pkg/types"
)

// VenueConn is the exchange connection port, spec.md §6: one per venue,
// exposing only awaitable methods. It holds no tactic state.
type VenueConn interface {
	Next(ctx context.Context) (types.MarketEventBlock, error)
	Ping(ctx context.Context) error
}

// VenueConnFactory builds a fresh VenueConn bound to ctx. The reactor calls
// it once per epoch rather than reusing one connection across resets, so
// that Reset's "reconstructs all connections" (spec.md §4.5) is a real
// teardown-and-redial of the underlying session, not just a fresh reader
// goroutine layered over the same long-lived connection. ctx is the
// epoch's own context: when the epoch ends (Reset or shutdown) and
// cancelEpoch fires, anything the factory started (e.g. a WS session's
// reconnect loop) is torn down with it, and the next epoch calls the
// factory again for a clean session.
type VenueConnFactory func(ctx context.Context) VenueConn

// HomeClient is the home-venue HTTP client port, spec.md §6.
type HomeClient interface {
	RequestTransactionsFrom(ctx context.Context, lastSeenTs string) ([]types.Transaction, error)
	PlaceOrder(ctx context.Context, side types.Side, price types.Price, size float64) (orderID string, err error)
	CancelOrder(ctx context.Context, orderID string) error
}

// Snapshotter renders and atomically persists the tactic's current status.
type Snapshotter interface {
	Write(s Status) error
}

// Status is the point-in-time view handed to the Snapshotter on every html
// tick.
type Status struct {
	Generation  uint64
	BlendedFair types.FairReading
	LocalFair   types.FairReading
	LocalBBO    types.BBO
	Position    position.Snapshot
	LiveBidID   string
	LiveAskID   string
	BadResets   int
}

// Config carries every tuning value spec.md §6 calls out as configuration.
type Config struct {
	MarketDataCapacity int // spec default ~5000
	InternalQueueCap   int // spec default 100

	Ping         time.Duration // default 30s
	HTMLSnapshot time.Duration // default 1s
	Reset        time.Duration // default 10min, graceful
	FillPoll     time.Duration // default 5s
	ResetSettle  time.Duration // default 2s

	OrderLate      time.Duration // L, default 1s
	OrderStale     time.Duration // S, default 5s, S > L
	OrderCheckGone time.Duration // G, default 15s, G > S

	MaxConsecutiveBadResets int // default 5

	InventoryCapacity float64 // denominator for NetDelta
}

// DefaultConfig returns the literal timer cadence from spec.md §6.
func DefaultConfig() Config {
	return Config{
		MarketDataCapacity:      5000,
		InternalQueueCap:        100,
		Ping:                    30 * time.Second,
		HTMLSnapshot:            time.Second,
		Reset:                   10 * time.Minute,
		FillPoll:                5 * time.Second,
		ResetSettle:             2 * time.Second,
		OrderLate:               time.Second,
		OrderStale:              5 * time.Second,
		OrderCheckGone:          15 * time.Second,
		MaxConsecutiveBadResets: 5,
		InventoryCapacity:       100,
	}
}

type internalEventKind int

const (
	evOrderCanceled internalEventKind = iota
	evTrades
	evSetLateStatus
	evCancelStale
	evCheckGone
	evDisplayHTML
	evPing
	evReset
	evOrderPlaced
)

// String names an internalEventKind for metrics labels and logging.
func (k internalEventKind) String() string {
	switch k {
	case evOrderCanceled:
		return "order_canceled"
	case evTrades:
		return "trades"
	case evSetLateStatus:
		return "set_late_status"
	case evCancelStale:
		return "cancel_stale"
	case evCheckGone:
		return "check_gone"
	case evDisplayHTML:
		return "display_html"
	case evPing:
		return "ping"
	case evReset:
		return "reset"
	case evOrderPlaced:
		return "order_placed"
	default:
		return "unknown"
	}
}

type internalEvent struct {
	kind        internalEventKind
	orderID     string
	txns        []types.Transaction
	resetBad    bool
	placedTemp  string
	placedSide  types.Side
	placedPrice types.Price
	placedSize  float64
	placedErr   error
}

// Reactor is the single cooperative event multiplexer.
type Reactor struct {
	cfg    Config
	logger *slog.Logger

	connFactories [venue.Count]VenueConnFactory
	conns         [venue.Count]VenueConn // current epoch's connections, rebuilt by connFactories on every Reset
	homeClient    HomeClient
	snapshotter   Snapshotter

	localBook *localbook.LocalBook
	remoteAgg *remoteagg.Aggregator
	orders    *ordermgr.Manager
	ledger    *position.Ledger
	tac       *tactic.Tactic
	risk      *risk.Monitor
	metrics   *metrics.Metrics

	generation atomic.Uint64
	dead       atomic.Bool

	badResetCount int

	blendedFair types.FairReading
	blendedOK   bool

	liveBidID string
	liveAskID string
}

// New builds a Reactor. connFactories must be indexed by venue.ID and
// include an entry for venue.Home and every venue.Remotes() id; each is
// called fresh at the start of every epoch (see VenueConnFactory).
func New(
	cfg Config,
	logger *slog.Logger,
	connFactories [venue.Count]VenueConnFactory,
	homeClient HomeClient,
	snapshotter Snapshotter,
	localBook *localbook.LocalBook,
	remoteAgg *remoteagg.Aggregator,
	orders *ordermgr.Manager,
	ledger *position.Ledger,
	tac *tactic.Tactic,
	riskMonitor *risk.Monitor,
	m *metrics.Metrics,
) *Reactor {
	return &Reactor{
		cfg:           cfg,
		logger:        logger.With("component", "reactor"),
		connFactories: connFactories,
		homeClient:    homeClient,
		snapshotter:   snapshotter,
		localBook:     localBook,
		remoteAgg:     remoteAgg,
		orders:        orders,
		ledger:        ledger,
		tac:           tac,
		risk:        riskMonitor,
		metrics:     m,
	}
}

// turn increments the reactor-turns-by-kind counter, if metrics are wired.
func (r *Reactor) turn(kind string) {
	if r.metrics != nil {
		r.metrics.ReactorTurns.WithLabelValues(kind).Inc()
	}
}

// Die sets the process-wide shutdown flag; the reactor panics at its next
// turn, per spec.md §7.
func (r *Reactor) Die() { r.dead.Store(true) }

// Run drives epochs until ctx is cancelled or the reactor aborts. Each
// epoch rebuilds its channels and background tasks, runs the inner
// dispatch loop until a Reset is processed, then transitions to the next
// generation.
func (r *Reactor) Run(ctx context.Context) error {
	for {
		if r.dead.Load() {
			panic("reactor: death flag set")
		}

		gen := r.generation.Load()
		mdCh := make(chan types.MarketEventBlock, r.cfg.MarketDataCapacity)
		internalCh := make(chan internalEvent, r.cfg.InternalQueueCap)

		epochCtx, cancelEpoch := context.WithCancel(ctx)
		r.rebuildConns(epochCtx)
		r.spawnVenueReaders(epochCtx, gen, mdCh)
		r.spawnTimers(epochCtx, gen, internalCh)
		r.spawnFillPoller(epochCtx, gen, internalCh)

		resetBad, err := r.runEpoch(epochCtx, mdCh, internalCh)
		cancelEpoch()

		if err != nil {
			return err
		}

		r.logger.Info("epoch reset", "generation", gen, "bad", resetBad, "bad_reset_count", r.badResetCount)
		r.badResetCount = nextBadResetCount(r.badResetCount, resetBad)
		if r.metrics != nil {
			r.metrics.RecordReset(resetBad, r.badResetCount)
		}
		if shouldAbort(r.badResetCount, r.cfg.MaxConsecutiveBadResets) {
			panic(fmt.Sprintf("reactor: %d consecutive bad resets, aborting", r.badResetCount))
		}

		time.Sleep(r.cfg.ResetSettle)
		r.generation.Add(1)
		r.spawnOrphanDrain(mdCh, internalCh)
		time.Sleep(r.cfg.ResetSettle)
	}
}

// runEpoch is the inner dispatch loop for one generation: it selects one
// ready source per turn (market data prioritized), dispatches it, and
// returns when a Reset event is processed.
func (r *Reactor) runEpoch(ctx context.Context, mdCh <-chan types.MarketEventBlock, internalCh chan internalEvent) (resetBad bool, err error) {
	for {
		if r.dead.Load() {
			panic("reactor: death flag set")
		}

		select {
		case block := <-mdCh:
			r.handleMarketBlock(ctx, block, internalCh)
			continue
		default:
		}

		select {
		case block := <-mdCh:
			r.handleMarketBlock(ctx, block, internalCh)
		case evt := <-internalCh:
			if evt.kind == evReset {
				return evt.resetBad, nil
			}
			r.handleInternal(ctx, evt, internalCh)
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

func (r *Reactor) handleMarketBlock(ctx context.Context, block types.MarketEventBlock, internalCh chan internalEvent) {
	r.turn("market_block")
	v := venue.ID(block.VenueID)
	if v == venue.Home {
		insideOrders := r.localBook.HandleBookUpdate(block.Events)
		if fair := r.localBook.Fair(); fair != (types.FairReading{}) {
			if r.metrics != nil {
				r.metrics.LocalFair.Set(fair.FairPrice)
			}
		}
		for _, io := range insideOrders {
			r.logger.Debug("inside order", "side", io.Side, "price", io.InsertPrice, "size", io.InsertSize)
		}
		// spec.md §4.4: every inside order event (real or synthetic) may
		// trigger a new quote decision, independent of whether the blended
		// remote fair itself moved this turn.
		if len(insideOrders) > 0 {
			r.maybeRequote(ctx, internalCh, insideOrders)
		}
		return
	}
	if fair, ok := r.remoteAgg.ApplyBlock(block); ok {
		r.blendedFair = fair
		r.blendedOK = true
		if r.metrics != nil {
			r.metrics.BlendedFair.Set(fair.FairPrice)
		}
		r.maybeRequote(ctx, internalCh, nil)
	} else {
		r.blendedOK = false
	}
}

// maybeRequote recomputes desired quotes from the current blended fair and
// inventory skew, reconciles them against the live bid/ask, and issues the
// minimal cancel/place set. insideOrders carries this turn's local-book
// InsideOrder events, if any, so Reconcile can force a chase on the side
// they signal (spec.md §4.3/§4.4) — nil when the turn was a remote fair
// update rather than a home-book change.
func (r *Reactor) maybeRequote(ctx context.Context, internalCh chan internalEvent, insideOrders []types.InsideOrder) {
	if !r.blendedOK {
		return
	}
	netDelta := r.ledger.NetDelta(r.cfg.InventoryCapacity)
	desiredBid, desiredAsk := r.tac.ComputeQuotes(r.blendedFair, netDelta)

	var liveBid, liveAsk *types.OrderRecord
	if r.liveBidID != "" {
		if rec, ok := r.orders.Record(r.liveBidID); ok {
			liveBid = &rec
		}
	}
	if r.liveAskID != "" {
		if rec, ok := r.orders.Record(r.liveAskID); ok {
			liveAsk = &rec
		}
	}

	toCancel, toPlace := r.tac.Reconcile(desiredBid, desiredAsk, liveBid, liveAsk, insideOrders)
	for _, id := range toCancel {
		r.issueCancel(ctx, id, internalCh)
		if id == r.liveBidID {
			r.liveBidID = ""
		}
		if id == r.liveAskID {
			r.liveAskID = ""
		}
	}
	for _, q := range toPlace {
		r.issuePlace(ctx, q, internalCh)
	}
}

// issuePlace registers the order Proposed under a client-generated
// temporary id before the placement HTTP call even starts — spec.md §3
// creates the order record "when the tactic decides to quote", which
// precedes the venue assigning a real order id. The temp id lets the
// order be reconciled (e.g. a Reset) while the request is in flight; once
// the response arrives, evOrderPlaced finalizes it to the venue's id.
func (r *Reactor) issuePlace(ctx context.Context, q *tactic.Quote, internalCh chan internalEvent) {
	gen := r.generation.Load()
	tempID := uuid.NewString()
	r.orders.Propose(tempID, q.Side, q.Price, q.Size, time.Now())

	go func() {
		orderID, err := r.homeClient.PlaceOrder(ctx, q.Side, q.Price, q.Size)
		if r.generation.Load() != gen {
			return
		}
		sendInternal(internalCh, internalEvent{
			kind: evOrderPlaced, orderID: orderID, placedTemp: tempID,
			placedSide: q.Side, placedPrice: q.Price, placedSize: q.Size, placedErr: err,
		})
	}()
}

func (r *Reactor) issueCancel(ctx context.Context, orderID string, internalCh chan internalEvent) {
	gen := r.generation.Load()
	shouldCancel, err := r.orders.CancelStale(orderID, time.Now(), time.Now().Add(r.cfg.OrderStale))
	if err != nil {
		r.logger.Warn("cancel-stale reconcile mismatch", "order_id", orderID, "error", err)
		return
	}
	if !shouldCancel {
		return
	}
	go func() {
		if err := r.homeClient.CancelOrder(ctx, orderID); err != nil {
			r.logger.Error("cancel order failed", "order_id", orderID, "error", err)
			return
		}
		if r.generation.Load() != gen {
			return
		}
		sendInternal(internalCh, internalEvent{kind: evOrderCanceled, orderID: orderID})
	}()
}

func (r *Reactor) handleInternal(ctx context.Context, evt internalEvent, internalCh chan internalEvent) {
	r.turn(evt.kind.String())
	switch evt.kind {
	case evOrderPlaced:
		if evt.placedErr != nil || evt.orderID == "" {
			r.orders.Reject(evt.placedTemp)
			if r.metrics != nil {
				r.metrics.OrdersRejected.WithLabelValues(string(evt.placedSide)).Inc()
			}
			r.logger.Error("place order failed", "error", evt.placedErr)
			return
		}
		if err := r.orders.Finalize(evt.placedTemp, evt.orderID); err != nil {
			r.logger.Warn("finalize reconcile mismatch", "temp_id", evt.placedTemp, "order_id", evt.orderID, "error", err)
			if r.risk.CheckReconcileError(err) {
				r.forceReset(internalCh, true)
				return
			}
		}
		r.orders.Ack(evt.orderID)
		if evt.placedSide == types.Buy {
			r.liveBidID = evt.orderID
		} else {
			r.liveAskID = evt.orderID
		}
		if r.metrics != nil {
			r.metrics.OrdersPlaced.WithLabelValues(string(evt.placedSide)).Inc()
			r.metrics.OpenOrders.Inc()
		}
		r.scheduleOrderTimers(ctx, evt.orderID, internalCh)

	case evOrderCanceled:
		rec, _ := r.orders.Record(evt.orderID)
		if err := r.orders.AckCancel(evt.orderID); err != nil {
			r.logger.Warn("ack-cancel reconcile mismatch", "order_id", evt.orderID, "error", err)
			if r.risk.CheckReconcileError(err) {
				r.forceReset(internalCh, true)
				return
			}
		}
		if r.metrics != nil {
			r.metrics.OrdersCanceled.WithLabelValues(string(rec.Side)).Inc()
			r.metrics.OpenOrders.Dec()
		}

	case evTrades:
		if err := r.orders.Trades(evt.txns); err != nil {
			r.logger.Error("trade reconcile failed, forcing bad reset", "error", err)
			r.forceReset(internalCh, true)
			return
		}
		for _, tx := range evt.txns {
			r.ledger.OnFill(position.Fill{
				Timestamp: time.Now(),
				Side:      tx.Side,
				Price:     float64(tx.Price),
				Size:      tx.Size,
			})
		}
		if breached, reason := r.risk.CheckPosition(r.ledger.Snapshot()); breached {
			r.logger.Error("risk limit breached, forcing bad reset", "reason", reason)
			r.forceReset(internalCh, true)
			return
		}

	case evSetLateStatus:
		if err := r.orders.SetLateStatus(evt.orderID); err != nil {
			r.logger.Warn("set-late-status reconcile mismatch", "order_id", evt.orderID, "error", err)
		}

	case evCancelStale:
		r.issueCancel(ctx, evt.orderID, internalCh)

	case evCheckGone:
		reconciled, err := r.orders.CheckGone(evt.orderID)
		if err != nil {
			r.logger.Warn("check-gone reconcile mismatch", "order_id", evt.orderID, "error", err)
			if r.risk.CheckReconcileError(err) {
				r.forceReset(internalCh, true)
			}
			return
		}
		if !reconciled {
			r.logger.Warn("order forced Gone unilaterally, venue never confirmed", "order_id", evt.orderID)
		}

	case evDisplayHTML:
		if r.snapshotter == nil {
			return
		}
		status := Status{
			Generation:  r.generation.Load(),
			BlendedFair: r.blendedFair,
			LocalFair:   r.localBook.Fair(),
			LocalBBO:    r.localBook.BBO(),
			Position:    r.ledger.Snapshot(),
			LiveBidID:   r.liveBidID,
			LiveAskID:   r.liveAskID,
			BadResets:   r.badResetCount,
		}
		if err := r.snapshotter.Write(status); err != nil {
			r.logger.Error("html snapshot write failed", "error", err)
		}
		if r.metrics != nil {
			r.metrics.NetPosition.Set(status.Position.NetSize)
			r.metrics.RealizedPnL.Set(status.Position.RealizedPnL)
		}

	case evPing:
		for _, v := range append([]venue.ID{venue.Home}, venue.Remotes()...) {
			conn := r.conns[v]
			if conn == nil {
				continue
			}
			go func(c VenueConn) { _ = c.Ping(ctx) }(conn)
		}
	}
}

// forceReset queues a Reset(bad) event on the internal channel, behind any
// events already queued there; used when a reconcile error is discovered
// mid-turn.
func (r *Reactor) forceReset(internalCh chan internalEvent, bad bool) {
	sendInternal(internalCh, internalEvent{kind: evReset, resetBad: bad})
}

func (r *Reactor) scheduleOrderTimers(ctx context.Context, orderID string, internalCh chan internalEvent) {
	gen := r.generation.Load()
	r.afterGen(ctx, gen, r.cfg.OrderLate, internalCh, internalEvent{kind: evSetLateStatus, orderID: orderID})
	r.afterGen(ctx, gen, r.cfg.OrderStale, internalCh, internalEvent{kind: evCancelStale, orderID: orderID})
	r.afterGen(ctx, gen, r.cfg.OrderCheckGone, internalCh, internalEvent{kind: evCheckGone, orderID: orderID})
}

// afterGen fires evt into internalCh after delay, unless the generation has
// since advanced — the epoch-based cancellation spec.md §5/§9 describes:
// no per-task cancellation token, just a self-check against the counter.
func (r *Reactor) afterGen(ctx context.Context, gen uint64, delay time.Duration, internalCh chan internalEvent, evt internalEvent) {
	go func() {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return
		}
		if r.generation.Load() != gen {
			return
		}
		sendInternal(internalCh, evt)
	}()
}

// rebuildConns calls every non-nil connFactory to mint this epoch's
// VenueConns, bound to the epoch's own ctx. Per spec.md §4.5, Reset
// "reconstructs all connections" — the previous epoch's conns are simply
// dropped (their ctx is already cancelled by the time the next epoch
// starts) in favor of brand new ones.
func (r *Reactor) rebuildConns(ctx context.Context) {
	for v := venue.ID(0); v < venue.Count; v++ {
		factory := r.connFactories[v]
		if factory == nil {
			r.conns[v] = nil
			continue
		}
		r.conns[v] = factory(ctx)
	}
}

func (r *Reactor) spawnVenueReaders(ctx context.Context, gen uint64, mdCh chan types.MarketEventBlock) {
	for v := venue.ID(0); v < venue.Count; v++ {
		conn := r.conns[v]
		if conn == nil {
			continue
		}
		go func(id venue.ID, c VenueConn) {
			for {
				if r.generation.Load() != gen {
					return
				}
				block, err := c.Next(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					r.logger.Warn("venue connection error, will reconnect", "venue", id, "error", err)
					continue
				}
				if r.generation.Load() != gen {
					return
				}
				block.VenueID = int(id)
				select {
				case mdCh <- block:
				case <-ctx.Done():
					return
				}
			}
		}(v, conn)
	}
}

func (r *Reactor) spawnTimers(ctx context.Context, gen uint64, internalCh chan internalEvent) {
	spawn := func(d time.Duration, kind internalEventKind) {
		go func() {
			ticker := time.NewTicker(d)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if r.generation.Load() != gen {
						return
					}
					sendInternal(internalCh, internalEvent{kind: kind})
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	spawn(r.cfg.Ping, evPing)
	spawn(r.cfg.HTMLSnapshot, evDisplayHTML)
	spawn(r.cfg.Reset, evReset) // graceful, periodic Reset(bad=false)
}

func (r *Reactor) spawnFillPoller(ctx context.Context, gen uint64, internalCh chan internalEvent) {
	go func() {
		lastSeenTs := ""
		cumSeen := make(map[string]float64)
		seenExecIDs := make(map[string]bool)
		ticker := time.NewTicker(r.cfg.FillPoll)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
			if r.generation.Load() != gen {
				return
			}
			txns, err := r.homeClient.RequestTransactionsFrom(ctx, lastSeenTs)
			if err != nil {
				r.logger.Warn("fill poll request failed", "error", err)
				continue
			}
			if r.generation.Load() != gen {
				return
			}
			sort.Slice(txns, func(i, j int) bool { return txns[i].Timestamp < txns[j].Timestamp })

			// spec.md §4.6: filter out already-seen exec_ids (a set carried
			// in-task) before deriving each order's incremental fill size —
			// RequestTransactionsFrom is idempotent and safe to retry, so the
			// same transaction can legitimately come back more than once.
			var fresh []types.Transaction
			maxTs := lastSeenTs
			for _, tx := range txns {
				if seenExecIDs[tx.ExecID] {
					continue
				}
				seenExecIDs[tx.ExecID] = true
				prev := cumSeen[tx.OrderID]
				if tx.CumSize < prev {
					continue
				}
				tx.Size = tx.CumSize - prev
				cumSeen[tx.OrderID] = tx.CumSize
				fresh = append(fresh, tx)
				if tx.Timestamp > maxTs {
					maxTs = tx.Timestamp
				}
			}
			if len(fresh) == 0 {
				continue
			}
			lastSeenTs = maxTs
			sendInternal(internalCh, internalEvent{kind: evTrades, txns: fresh})
		}
	}()
}

// spawnOrphanDrain consumes whatever the previous epoch's now-orphaned
// tasks manage to push into its channels after the generation bump, for a
// bounded window, so those sends never deadlock a goroutine that passed
// its generation check just before the bump.
func (r *Reactor) spawnOrphanDrain(mdCh <-chan types.MarketEventBlock, internalCh <-chan internalEvent) {
	go func() {
		deadline := time.After(5 * time.Second)
		for {
			select {
			case <-mdCh:
			case <-internalCh:
			case <-deadline:
				return
			}
		}
	}()
}

// nextBadResetCount updates the consecutive-bad-reset streak: a bad reset
// extends it, a graceful reset (spec.md §9's Reset(bad=false)) clears it —
// only bad resets count toward the 5-strike abort, and a graceful reset is
// evidence the tactic is healthy again.
func nextBadResetCount(current int, bad bool) int {
	if bad {
		return current + 1
	}
	return 0
}

// shouldAbort reports whether the process must abort: five consecutive bad
// resets abort, four must not, per spec.md §8 scenario 6.
func shouldAbort(count, max int) bool {
	return count >= max
}

// sendInternal is a non-blocking send: the internal queue is bounded at
// 100 and senders assert on send failure per spec.md §5/§7 — a full queue
// means the reactor has fallen behind and the process must restart.
func sendInternal(ch chan internalEvent, evt internalEvent) {
	select {
	case ch <- evt:
	default:
		panic("reactor: internal event queue full, reactor has fallen behind")
	}
}
