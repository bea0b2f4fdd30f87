// Package ordermgr implements the order manager, spec.md §4.4: authoritative
// per-order lifecycle (Proposed -> Live -> Late -> CancelRequested -> Gone),
// at-most-once cancellation, and reconciliation against asynchronous fill
// and ack events that may arrive out of order.
//
// Manager holds no lock: spec.md §5 places all tactic state on one
// cooperative reactor task, so every method here is called from that single
// goroutine and needs no synchronization.
package ordermgr

import (
	"errors"
	"fmt"
	"time"

	"tacticmm/pkg/types"
)

// ErrReconcileMismatch is returned for an event that references an unknown
// order id. Per spec.md §7 this is logged and escalates to Reset(bad=true);
// it is not itself a panic.
var ErrReconcileMismatch = errors.New("ordermgr: reconcile mismatch")

// ErrOverfill is returned when a reported cum_filled_size would exceed an
// order's requested_size. Per spec.md §4.4 this is a fatal reconcile error.
var ErrOverfill = errors.New("ordermgr: cum_filled_size exceeds requested_size")

// Manager tracks every order this process has placed and its lifecycle.
type Manager struct {
	orders map[string]*types.OrderRecord
	budget float64 // remaining inventory budget, decremented on fills
}

// New builds a Manager with the given starting inventory budget.
func New(budget float64) *Manager {
	return &Manager{orders: make(map[string]*types.OrderRecord), budget: budget}
}

// RemainingBudget returns the inventory budget left to quote against.
func (m *Manager) RemainingBudget() float64 { return m.budget }

// Record returns the current state of one order.
func (m *Manager) Record(orderID string) (types.OrderRecord, bool) {
	r, ok := m.orders[orderID]
	if !ok {
		return types.OrderRecord{}, false
	}
	return *r, true
}

// Propose registers a newly decided-on order in the Proposed state, before
// any HTTP ack has been received.
func (m *Manager) Propose(orderID string, side types.Side, price types.Price, size float64, now time.Time) {
	m.orders[orderID] = &types.OrderRecord{
		OrderID:       orderID,
		Side:          side,
		Price:         price,
		RequestedSize: size,
		Status:        types.Proposed,
		PlacedAt:      now,
	}
}

// Finalize renames a Proposed order from its client-generated temporary id
// (minted before the venue has responded, so the order can still be
// tracked and reconciled against while the placement HTTP call is
// in-flight) to the venue-assigned order id once the placement response
// arrives. The record itself, and its Proposed status, are unchanged.
func (m *Manager) Finalize(tempID, venueID string) error {
	r, ok := m.orders[tempID]
	if !ok {
		return fmt.Errorf("%w: finalize for unknown order %s", ErrReconcileMismatch, tempID)
	}
	delete(m.orders, tempID)
	r.OrderID = venueID
	m.orders[venueID] = r
	return nil
}

// Reject drops a Proposed order whose placement HTTP call failed — it
// never reached the venue, so there is nothing left to reconcile.
func (m *Manager) Reject(tempID string) {
	delete(m.orders, tempID)
}

// Ack transitions an order from Proposed to Live once the venue confirms
// placement.
func (m *Manager) Ack(orderID string) error {
	r, ok := m.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: ack for unknown order %s", ErrReconcileMismatch, orderID)
	}
	if r.Status == types.Proposed {
		r.Status = types.Live
	}
	return nil
}

// SetLateStatus fires at placement + L ms: if the order is still Live, it
// transitions to Late. No-op otherwise (the order may already be gone).
func (m *Manager) SetLateStatus(orderID string) error {
	r, ok := m.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: late-status for unknown order %s", ErrReconcileMismatch, orderID)
	}
	if r.Status == types.Live {
		r.Status = types.Late
	}
	return nil
}

// CancelStale fires at placement + S ms: if the order is still Live or Late,
// it transitions to CancelRequested and the caller should issue an HTTP
// cancel (shouldCancel == true). If a cancel is already outstanding, or the
// order is already Gone, shouldCancel is false — at most one outstanding
// cancel request per order id.
func (m *Manager) CancelStale(orderID string, now time.Time, deadline time.Time) (shouldCancel bool, err error) {
	r, ok := m.orders[orderID]
	if !ok {
		return false, fmt.Errorf("%w: cancel-stale for unknown order %s", ErrReconcileMismatch, orderID)
	}
	if r.Status != types.Live && r.Status != types.Late {
		return false, nil
	}
	r.Status = types.CancelRequested
	r.CancelDeadline = deadline
	return true, nil
}

// CheckGone fires at placement + G ms: if the order has not already reached
// Gone, it is forced there unilaterally and wasReconciled is false to signal
// the caller should log a reconciliation warning.
func (m *Manager) CheckGone(orderID string) (wasReconciled bool, err error) {
	r, ok := m.orders[orderID]
	if !ok {
		return false, fmt.Errorf("%w: check-gone for unknown order %s", ErrReconcileMismatch, orderID)
	}
	if r.Status == types.Gone {
		return true, nil
	}
	r.Status = types.Gone
	return false, nil
}

// AckCancel marks an order Gone once the venue confirms the cancel. Fills
// that arrive afterward are still applied by Trades — venues may fill an
// order between the cancel request and its ack.
func (m *Manager) AckCancel(orderID string) error {
	r, ok := m.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: ack-cancel for unknown order %s", ErrReconcileMismatch, orderID)
	}
	r.Status = types.Gone
	return nil
}

// Trades applies a batch of fill reports. For each transaction it looks up
// the order, raises cum_filled_size to the reported (absolute) cum_size,
// decrements the remaining inventory budget by the transaction's
// incremental size, and marks the order Gone once fully filled. An unknown
// order id or a cum_size that would exceed requested_size is a fatal
// reconcile error (the caller should respond with Reset(bad=true)); it does
// not panic, since venue reports racing a local Reset are expected.
func (m *Manager) Trades(txns []types.Transaction) error {
	for _, tx := range txns {
		r, ok := m.orders[tx.OrderID]
		if !ok {
			return fmt.Errorf("%w: trade for unknown order %s", ErrReconcileMismatch, tx.OrderID)
		}
		if tx.CumSize < r.CumFilledSize {
			return fmt.Errorf("%w: order %s cum_size went backward (%v -> %v)",
				ErrReconcileMismatch, tx.OrderID, r.CumFilledSize, tx.CumSize)
		}
		if tx.CumSize > r.RequestedSize {
			return fmt.Errorf("%w: order %s reported cum_size %v > requested %v",
				ErrOverfill, tx.OrderID, tx.CumSize, r.RequestedSize)
		}
		r.CumFilledSize = tx.CumSize
		m.budget -= tx.Size
		if r.CumFilledSize == r.RequestedSize {
			r.Status = types.Gone
		}
	}
	return nil
}

// Prune removes every Gone order from the map. It does not check whether
// fills for a pruned order can still arrive: a fill reported after Prune
// finds no record, and Trades returns ErrReconcileMismatch for it. Order
// ids themselves remain unique for the process lifetime; this only drops
// the record from the live map.
func (m *Manager) Prune() {
	for id, r := range m.orders {
		if r.Status == types.Gone {
			delete(m.orders, id)
		}
	}
}
