package order

import "github.com/jretamal/comanda-pos/internal/model"

// rank orders the forward states of the lifecycle.  CANCELLED is not
// ranked because it is reachable from any non-terminal state rather
// than by forward movement.
var rank = map[string]int{
    model.StatusPending:   0,
    model.StatusPreparing: 1,
    model.StatusReady:     2,
    model.StatusDelivered: 3,
}

// CanTransition validates a status change.  Any forward move is
// permitted (skipping states is fine: PENDING may go straight to
// DELIVERED), cancellation is permitted from every non-terminal
// state, and terminal orders reject everything with ErrOrderClosed.
func CanTransition(from, to string) error {
    if model.Terminal(from) {
        return ErrOrderClosed
    }
    if to == model.StatusCancelled {
        return nil
    }
    fromRank, ok := rank[from]
    if !ok {
        return ErrInvalidTransition
    }
    toRank, ok := rank[to]
    if !ok || toRank <= fromRank {
        return ErrInvalidTransition
    }
    return nil
}

// CanChangeQuantity reports whether quantity edits are legal for the
// given status.  Confirmed quantities freeze once preparation starts,
// so only PENDING orders may change them.
func CanChangeQuantity(status string) error {
    if model.Terminal(status) {
        return ErrOrderClosed
    }
    if status != model.StatusPending {
        return ErrEditNotAllowed
    }
    return nil
}

// CanAddItems reports whether brand-new lines may be appended for
// the given status.  Additions are allowed while the kitchen can
// still act on them (PENDING, PREPARING, READY) and rejected once
// the order is terminal.
func CanAddItems(status string) error {
    if model.Terminal(status) {
        return ErrOrderClosed
    }
    return nil
}
