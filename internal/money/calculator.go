// Package money computes order totals.  All arithmetic uses
// shopspring decimals so repeated recomputation over the life of an
// order never drifts the way binary floats would.  Values are kept at
// full precision during the computation and rounded to two decimal
// places only on the final Totals, which is the presentation and
// persistence boundary.
package money

import (
    "errors"

    "github.com/shopspring/decimal"

    "github.com/jretamal/comanda-pos/internal/model"
)

// DefaultTaxRatePercent is the flat tax rate applied to the subtotal
// when no rate is configured.
var DefaultTaxRatePercent = decimal.NewFromInt(10)

// ErrNegativePrice is returned when an item carries a negative unit
// or add-on price.  Negative prices are rejected, never clamped.
var ErrNegativePrice = errors.New("negative price")

// ErrNegativeAdjustment is returned when any adjustment field
// (discount, tip, service charge, packaging charge, container fee)
// is negative.
var ErrNegativeAdjustment = errors.New("negative adjustment")

// Adjustments are the order-level amounts applied on top of the item
// subtotal.  The container fee is treated as a standalone charge that
// participates in the subtotal, matching how fee lines appear on the
// customer receipt.
type Adjustments struct {
    Discount        decimal.Decimal
    Tip             decimal.Decimal
    ServiceCharge   decimal.Decimal
    PackagingCharge decimal.Decimal
    ContainerFee    decimal.Decimal
}

// Totals is the derived money state of an order.
type Totals struct {
    Subtotal decimal.Decimal
    Tax      decimal.Decimal
    Total    decimal.Decimal
}

// Calculate derives {subtotal, tax, total} from an order's items and
// adjustments.  This is the single totals formula for the whole
// system; every call site recomputes through here after any item
// mutation.
//
//	subtotal = Σ (unit + Σ add-ons) × qty, plus the container fee
//	tax      = ratePercent/100 × subtotal, always applied
//	total    = subtotal − discount + tip + service + packaging + tax
//
// The discount is clamped so it never exceeds the subtotal; negative
// prices and negative adjustments are validation errors.  The tax is
// applied unconditionally at the flat rate — it does not vary per
// item and is not skipped when adjustments are present.
func Calculate(items []model.OrderItem, adj Adjustments, ratePercent decimal.Decimal) (Totals, error) {
    for _, it := range items {
        if it.UnitPrice.IsNegative() {
            return Totals{}, ErrNegativePrice
        }
        for _, a := range it.AddOns {
            if a.Price.IsNegative() {
                return Totals{}, ErrNegativePrice
            }
        }
    }
    for _, v := range []decimal.Decimal{adj.Discount, adj.Tip, adj.ServiceCharge, adj.PackagingCharge, adj.ContainerFee} {
        if v.IsNegative() {
            return Totals{}, ErrNegativeAdjustment
        }
    }

    subtotal := adj.ContainerFee
    for _, it := range items {
        subtotal = subtotal.Add(it.LineSubtotal())
    }

    discount := adj.Discount
    if discount.GreaterThan(subtotal) {
        discount = subtotal
    }

    tax := subtotal.Mul(ratePercent).Div(decimal.NewFromInt(100))
    total := subtotal.Sub(discount).Add(adj.Tip).Add(adj.ServiceCharge).Add(adj.PackagingCharge).Add(tax)

    return Totals{
        Subtotal: subtotal.Round(2),
        Tax:      tax.Round(2),
        Total:    total.Round(2),
    }, nil
}
