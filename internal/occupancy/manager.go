// Package occupancy governs the binding between a table and its
// active order.  The one multi-writer race in the system lives here:
// two staff members seating the same table at once.  The occupy path
// therefore depends on a store-level compare-and-swap rather than a
// read-then-write, and a lost race is surfaced to the caller as
// ErrTableAlreadyOccupied — never retried and never overwritten.
package occupancy

import (
    "context"
    "errors"
    "time"

    "github.com/jretamal/comanda-pos/internal/model"
)

// ErrTableAlreadyOccupied is returned when the conditional occupy
// update finds the table already OCCUPIED.  The caller must surface
// it to the user; retrying on a stale read could double-seat.
var ErrTableAlreadyOccupied = errors.New("table already occupied")

// ErrInconsistentTable marks a table that claims to be OCCUPIED but
// whose active-order binding is broken.  It is a repairable anomaly,
// fixed by ForceRelease, not a crash.
var ErrInconsistentTable = errors.New("inconsistent table state")

// TableStore is the slice of the persistence layer the manager
// needs.  OccupyIfAvailable must be a single atomic conditional
// update at the store: it reports ok=false, without error, when the
// table was not AVAILABLE at update time.
type TableStore interface {
    GetTable(ctx context.Context, id uint64) (*model.Table, error)
    OccupyIfAvailable(ctx context.Context, tableID uint64, orderID string, staffID uint64, at time.Time) (bool, error)
    ReleaseTable(ctx context.Context, tableID uint64) error
}

// OrderStatusReader resolves an order's current status.  It is used
// only for inconsistency detection; a fresh point read is always
// authoritative over any cached copy.  found=false (with nil error)
// means the order does not exist, which is distinct from a store
// failure.
type OrderStatusReader interface {
    GetOrderStatus(ctx context.Context, orderID string) (status string, found bool, err error)
}

// Manager enforces the occupancy invariant: OCCUPIED ⇔ bound to a
// live, non-terminal order.
type Manager struct {
    tables TableStore
    orders OrderStatusReader
}

// NewManager constructs a Manager.  Both dependencies must be non-nil.
func NewManager(tables TableStore, orders OrderStatusReader) *Manager {
    if tables == nil || orders == nil {
        panic("nil store passed to occupancy.NewManager")
    }
    return &Manager{tables: tables, orders: orders}
}

// Occupy binds the table to the given order and staff member.  The
// check-and-set happens in one conditional store update; when another
// seating won the race the table is left untouched and
// ErrTableAlreadyOccupied is returned.
func (m *Manager) Occupy(ctx context.Context, tableID uint64, orderID string, staffID uint64) error {
    ok, err := m.tables.OccupyIfAvailable(ctx, tableID, orderID, staffID, time.Now().UTC())
    if err != nil {
        return err
    }
    if !ok {
        return ErrTableAlreadyOccupied
    }
    return nil
}

// Release frees the table: status AVAILABLE, order/staff references
// and occupancy timestamp cleared.  Called when the bound order
// reaches DELIVERED (and from CancelOrder for seated orders).
func (m *Manager) Release(ctx context.Context, tableID uint64) error {
    return m.tables.ReleaseTable(ctx, tableID)
}

// ForceRelease is the manual repair path for an inconsistent table.
// It performs the same unconditional release and is idempotent:
// forcing an already-available table succeeds.
func (m *Manager) ForceRelease(ctx context.Context, tableID uint64) error {
    return m.tables.ReleaseTable(ctx, tableID)
}

// DetectInconsistent reports whether the table violates the
// occupancy invariant: OCCUPIED with a nil order reference, with a
// reference to a missing order, or with a reference to a terminal
// order.  Store failures are propagated so a transient outage is
// never mistaken for an anomaly.
func (m *Manager) DetectInconsistent(ctx context.Context, t *model.Table) (bool, error) {
    if t.Status != model.TableOccupied {
        return false, nil
    }
    if t.ActiveOrderID == nil {
        return true, nil
    }
    status, found, err := m.orders.GetOrderStatus(ctx, *t.ActiveOrderID)
    if err != nil {
        return false, err
    }
    if !found {
        return true, nil
    }
    return model.Terminal(status), nil
}
