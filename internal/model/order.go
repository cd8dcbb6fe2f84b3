package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Order status values stored in the pedidos.status column.  PENDING is
// the initial state; DELIVERED and CANCELLED are terminal.
const (
    StatusPending   = "PENDING"
    StatusPreparing = "PREPARING"
    StatusReady     = "READY"
    StatusDelivered = "DELIVERED"
    StatusCancelled = "CANCELLED"
)

// Order channel values stored in the pedidos.channel column.
const (
    ChannelDineIn   = "DINE_IN"
    ChannelTakeAway = "TAKE_AWAY"
    ChannelDelivery = "DELIVERY"
)

// Order represents a customer order (pedido).  Money fields are
// decimals scanned from DECIMAL(10,2) columns; they are always
// recomputable from the item collection plus the adjustment fields.
// Once the status is terminal the record is immutable except for
// historical reads.
//
// Fields:
//  ID              – UUID primary key, generated by the application.
//  RestaurantID    – owning restaurant.
//  Channel         – DINE_IN, TAKE_AWAY or DELIVERY.
//  TableLabel      – label of the seated table (DINE_IN only, else nil).
//  CustomerName    – optional customer name.
//  CustomerPhone   – optional customer phone.
//  CustomerAddress – optional delivery address.
//  PaymentMethod   – payment method chosen at the till.
//  Subtotal        – Σ line subtotals including container-fee lines.
//  Discount        – discount applied to the subtotal (clamped to it).
//  Tip             – tip amount.
//  ServiceCharge   – service charge amount.
//  PackagingCharge – packaging charge amount.
//  ContainerFee    – container fee amount.
//  Tax             – flat-rate tax on the subtotal.
//  Total           – grand total, derived by the totals calculator.
//  Status          – lifecycle state, see Status* constants.
//  HasUnsentItems  – true when items were added after the last kitchen print.
//  CreatedAt       – creation timestamp.
//  CompletedAt     – set when the order becomes DELIVERED or CANCELLED.
type Order struct {
    ID              string          // pedidos.id (UUID)
    RestaurantID    uint64          // pedidos.restaurant_id
    Channel         string          // pedidos.channel
    TableLabel      *string         // pedidos.table_label (nullable)
    CustomerName    *string         // pedidos.customer_name (nullable)
    CustomerPhone   *string         // pedidos.customer_phone (nullable)
    CustomerAddress *string         // pedidos.customer_address (nullable)
    PaymentMethod   string          // pedidos.payment_method
    Subtotal        decimal.Decimal // pedidos.subtotal
    Discount        decimal.Decimal // pedidos.discount
    Tip             decimal.Decimal // pedidos.tip
    ServiceCharge   decimal.Decimal // pedidos.service_charge
    PackagingCharge decimal.Decimal // pedidos.packaging_charge
    ContainerFee    decimal.Decimal // pedidos.container_fee
    Tax             decimal.Decimal // pedidos.tax
    Total           decimal.Decimal // pedidos.total
    Status          string          // pedidos.status
    HasUnsentItems  bool            // pedidos.has_unsent_items
    CreatedAt       time.Time       // pedidos.created_at
    CompletedAt     *time.Time      // pedidos.completed_at (nullable)

    // Items holds the order's line items when loaded with the order.
    Items []OrderItem
}

// Terminal reports whether the given order status is terminal.
// Terminal orders reject every mutation.
func Terminal(status string) bool {
    return status == StatusDelivered || status == StatusCancelled
}
