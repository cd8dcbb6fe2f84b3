// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderClosedEvent is published when an order reaches a terminal state
// (delivered or cancelled). It contains enough information for downstream
// consumers to log, notify, or feed end-of-day reporting without querying
// the primary database.
type OrderClosedEvent struct {
    OrderID      string `json:"order_id"`
    RestaurantID uint64 `json:"restaurant_id"`
    Channel      string `json:"channel"`
    TableLabel   string `json:"table_label,omitempty"`
    Status       string `json:"status"`
    ItemCount    int    `json:"item_count"`
    Subtotal     string `json:"subtotal"`
    Tax          string `json:"tax"`
    Total        string `json:"total"`
    ClosedAt     string `json:"closed_at"`
}
