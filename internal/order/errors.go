// Package order holds the in-memory lifecycle rules for an order:
// the status state machine and the item ledger.  This file defines
// the sentinel errors shared by both.  Handlers translate them into
// distinct HTTP responses; none of them is ever downgraded to a
// silent no-op.
package order

import "errors"

// ErrInvalidQuantity is returned when an item is added with a
// quantity below one.
var ErrInvalidQuantity = errors.New("invalid quantity")

// ErrEditNotAllowed is returned when a mutation is legal for some
// order status but not the current one, e.g. changing a confirmed
// quantity once preparation has started.
var ErrEditNotAllowed = errors.New("edit not allowed in current order status")

// ErrOrderClosed is returned for any mutation attempt on a
// DELIVERED or CANCELLED order.  Terminal orders are immutable.
var ErrOrderClosed = errors.New("order is closed")

// ErrInvalidTransition is returned when a status change would move
// the order backwards or to an unknown status.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrItemNotFound is returned when the referenced line does not
// belong to the order.
var ErrItemNotFound = errors.New("order item not found")
