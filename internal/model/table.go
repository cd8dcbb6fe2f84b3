package model

import "time"

// Table status values stored in the mesas.status column.
const (
    TableAvailable = "AVAILABLE" // table is free and may be seated
    TableOccupied  = "OCCUPIED"  // table is bound to a live order
)

// Table represents a physical seating unit (mesa) tracked for
// occupancy.  An occupied table is bound to exactly one live order
// through ActiveOrderID.  The binding invariant is:
// status OCCUPIED ⇒ ActiveOrderID is non-nil and the referenced
// order is non-terminal; status AVAILABLE ⇒ ActiveOrderID is nil.
// A row that violates this is an inconsistent table, detected by
// the occupancy manager and repaired via force release.
//
// Fields:
//  ID            – primary key identifier.
//  RoomID        – room that owns this table.
//  Label         – label printed on tickets and shown on the floor plan.
//  Status        – AVAILABLE or OCCUPIED.
//  ActiveOrderID – order currently seated at the table (nil when free).
//  StaffID       – staff member who seated the table (nil when free).
//  OccupiedAt    – when the current occupancy began (nil when free).
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Table struct {
    ID            uint64     // mesas.id
    RoomID        uint64     // mesas.room_id
    Label         string     // mesas.label
    Status        string     // mesas.status
    ActiveOrderID *string    // mesas.active_order_id (nullable, pedido UUID)
    StaffID       *uint64    // mesas.staff_id (nullable)
    OccupiedAt    *time.Time // mesas.occupied_at (nullable)
    CreatedAt     time.Time  // mesas.created_at
    UpdatedAt     time.Time  // mesas.updated_at
}
