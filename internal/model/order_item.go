package model

import "github.com/shopspring/decimal"

// AddOn is a priced modifier attached to an order line item.  The
// price is snapshotted when the item is added and never tracks later
// catalog changes.
//
// Fields:
//  Name  – add-on name as shown on tickets.
//  Price – snapshotted add-on price.
type AddOn struct {
    Name  string          `json:"name"`
    Price decimal.Decimal `json:"price"`
}

// OrderItem is a single line of an order.  Product name and unit
// price are frozen at add time.  The Printed flag (impreso) marks
// lines already sent to a kitchen printer so a reprint never fires
// them twice; NewlyAdded marks lines created during the current edit
// session.
//
// Fields:
//  ID          – UUID primary key, generated by the application.
//  OrderID     – owning order.
//  ProductID   – catalog product reference.
//  ProductName – product name snapshot.
//  Quantity    – units ordered, always ≥ 1 for a persisted line.
//  UnitPrice   – unit price snapshot.
//  AddOns      – selected add-ons with price snapshots.
//  Note        – free-text preparation note.
//  Printed     – sent-to-kitchen flag (impreso).
//  NewlyAdded  – created during the current edit session.
type OrderItem struct {
    ID          string          // pedido_items.id (UUID)
    OrderID     string          // pedido_items.pedido_id
    ProductID   string          // pedido_items.product_id
    ProductName string          // pedido_items.product_name
    Quantity    uint32          // pedido_items.quantity
    UnitPrice   decimal.Decimal // pedido_items.unit_price
    AddOns      []AddOn         // pedido_items.addons (JSON column)
    Note        string          // pedido_items.note
    Printed     bool            // pedido_items.impreso
    NewlyAdded  bool            // pedido_items.newly_added
}

// LineSubtotal returns (unit price + Σ add-on prices) × quantity for
// this line.  It is the only place the per-line formula lives.
func (it OrderItem) LineSubtotal() decimal.Decimal {
    unit := it.UnitPrice
    for _, a := range it.AddOns {
        unit = unit.Add(a.Price)
    }
    return unit.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// SameLine reports whether another item would merge into this line:
// same product and an identical add-on set (order-insensitive, price
// included).  Duplicate adds increment quantity instead of creating
// a second line.
func (it OrderItem) SameLine(other OrderItem) bool {
    if it.ProductID != other.ProductID {
        return false
    }
    if len(it.AddOns) != len(other.AddOns) {
        return false
    }
    matched := make([]bool, len(other.AddOns))
outer:
    for _, a := range it.AddOns {
        for i, b := range other.AddOns {
            if !matched[i] && a.Name == b.Name && a.Price.Equal(b.Price) {
                matched[i] = true
                continue outer
            }
        }
        return false
    }
    return true
}
