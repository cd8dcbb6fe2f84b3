package order

import (
    "github.com/google/uuid"
    "github.com/shopspring/decimal"

    "github.com/jretamal/comanda-pos/internal/model"
    "github.com/jretamal/comanda-pos/internal/money"
)

// AddItem appends a product line to the order, snapshotting name,
// unit price and add-on prices at call time.  When an unprinted line
// already exists for the same product with an identical add-on set,
// the quantity is merged into that line instead of creating a
// duplicate.  Printed lines are never merged into: reviving a fired
// line would make the next kitchen ticket repeat quantities the
// kitchen already has.
//
// Adding while the order is PREPARING or READY raises the order's
// HasUnsentItems flag so the operator is warned that the kitchen
// ticket needs a reprint.  Returns the affected line.
func AddItem(o *model.Order, productID, productName string, quantity int, unitPrice decimal.Decimal, addOns []model.AddOn, note string) (*model.OrderItem, error) {
    if err := CanAddItems(o.Status); err != nil {
        return nil, err
    }
    if quantity < 1 {
        return nil, ErrInvalidQuantity
    }
    if unitPrice.IsNegative() {
        return nil, money.ErrNegativePrice
    }
    for _, a := range addOns {
        if a.Price.IsNegative() {
            return nil, money.ErrNegativePrice
        }
    }

    item := model.OrderItem{
        ProductID:   productID,
        ProductName: productName,
        Quantity:    uint32(quantity),
        UnitPrice:   unitPrice,
        AddOns:      addOns,
        Note:        note,
    }

    var affected *model.OrderItem
    for i := range o.Items {
        if !o.Items[i].Printed && o.Items[i].SameLine(item) {
            o.Items[i].Quantity += uint32(quantity)
            o.Items[i].NewlyAdded = true
            affected = &o.Items[i]
            break
        }
    }
    if affected == nil {
        item.ID = uuid.NewString()
        item.OrderID = o.ID
        item.NewlyAdded = true
        o.Items = append(o.Items, item)
        affected = &o.Items[len(o.Items)-1]
    }

    if o.Status == model.StatusPreparing || o.Status == model.StatusReady {
        o.HasUnsentItems = true
    }
    return affected, nil
}

// ChangeQuantity sets a line's quantity.  Only PENDING orders may
// change confirmed quantities; a new quantity of zero or below
// removes the line entirely.
func ChangeQuantity(o *model.Order, itemID string, newQuantity int) error {
    if err := CanChangeQuantity(o.Status); err != nil {
        return err
    }
    for i := range o.Items {
        if o.Items[i].ID != itemID {
            continue
        }
        if newQuantity <= 0 {
            o.Items = append(o.Items[:i], o.Items[i+1:]...)
        } else {
            o.Items[i].Quantity = uint32(newQuantity)
        }
        return nil
    }
    return ErrItemNotFound
}

// ReplaceAll swaps the order's entire item set, the in-memory half of
// the full-save path (the repository persists it as delete-then-insert
// in one transaction).  Replacement can change quantities, so it is
// restricted to PENDING like ChangeQuantity.  Callers must recompute
// totals immediately afterwards.
func ReplaceAll(o *model.Order, items []model.OrderItem) error {
    if err := CanChangeQuantity(o.Status); err != nil {
        return err
    }
    for i := range items {
        if items[i].Quantity < 1 {
            return ErrInvalidQuantity
        }
        if items[i].ID == "" {
            items[i].ID = uuid.NewString()
        }
        items[i].OrderID = o.ID
    }
    o.Items = items
    return nil
}

// UnprintedItems returns the lines not yet sent to a kitchen
// printer, in ledger order.
func UnprintedItems(o *model.Order) []model.OrderItem {
    var out []model.OrderItem
    for _, it := range o.Items {
        if !it.Printed {
            out = append(out, it)
        }
    }
    return out
}

// MarkPrinted flips the sent-to-kitchen flag on exactly the given
// line IDs and nothing else.  When no unprinted lines remain the
// order's HasUnsentItems warning is cleared.
func MarkPrinted(o *model.Order, itemIDs []string) {
    ids := make(map[string]struct{}, len(itemIDs))
    for _, id := range itemIDs {
        ids[id] = struct{}{}
    }
    for i := range o.Items {
        if _, ok := ids[o.Items[i].ID]; ok {
            o.Items[i].Printed = true
        }
    }
    for _, it := range o.Items {
        if !it.Printed {
            return
        }
    }
    o.HasUnsentItems = false
}
