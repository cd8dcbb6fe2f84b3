// Package printing builds kitchen tickets (comandas) and customer
// receipts and dispatches them to the local printer agent.  Tickets
// are rendered as ESC/POS command sequences, the control language
// spoken by the thermal printers behind the agent.
package printing

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jretamal/comanda-pos/internal/model"
)

// ESC/POS control sequences.  Only the small subset the tickets need.
var (
	cmdInit       = []byte{0x1b, 0x40}             // ESC @  reset printer
	cmdBoldOn     = []byte{0x1b, 0x45, 0x01}       // ESC E 1
	cmdBoldOff    = []byte{0x1b, 0x45, 0x00}       // ESC E 0
	cmdDoubleOn   = []byte{0x1d, 0x21, 0x11}       // GS ! double width+height
	cmdDoubleOff  = []byte{0x1d, 0x21, 0x00}       // GS ! normal
	cmdCenterOn   = []byte{0x1b, 0x61, 0x01}       // ESC a 1
	cmdCenterOff  = []byte{0x1b, 0x61, 0x00}       // ESC a 0
	cmdCut        = []byte{0x1d, 0x56, 0x42, 0x00} // GS V partial cut with feed
	lineSeparator = "--------------------------------\n"
)

// FormatKitchenTicket renders a comanda for the given subset of
// items.  The caller decides the subset (normally the unprinted
// lines); the formatter never filters on its own.  Quantity and
// product name are printed double-size so the kitchen can read them
// at a distance; notes and add-ons follow in normal size.
func FormatKitchenTicket(o *model.Order, items []model.OrderItem, at time.Time) []byte {
	var b bytes.Buffer
	b.Write(cmdInit)
	b.Write(cmdCenterOn)
	b.Write(cmdDoubleOn)
	b.WriteString("COMANDA\n")
	b.Write(cmdDoubleOff)
	if o.TableLabel != nil {
		b.WriteString(fmt.Sprintf("MESA %s\n", *o.TableLabel))
	} else {
		b.WriteString(channelLabel(o.Channel) + "\n")
	}
	b.Write(cmdCenterOff)
	b.WriteString(at.Format("02/01/2006 15:04") + "\n")
	b.WriteString(lineSeparator)
	for _, it := range items {
		b.Write(cmdDoubleOn)
		b.WriteString(fmt.Sprintf("%d x %s\n", it.Quantity, it.ProductName))
		b.Write(cmdDoubleOff)
		for _, a := range it.AddOns {
			b.WriteString(fmt.Sprintf("  + %s\n", a.Name))
		}
		if it.Note != "" {
			b.Write(cmdBoldOn)
			b.WriteString(fmt.Sprintf("  * %s\n", it.Note))
			b.Write(cmdBoldOff)
		}
	}
	b.WriteString(lineSeparator)
	b.Write(cmdCut)
	return b.Bytes()
}

// FormatCustomerReceipt renders the full order with prices and the
// totals block.  Unlike the kitchen ticket it always includes every
// line regardless of print history.
func FormatCustomerReceipt(o *model.Order, at time.Time) []byte {
	var b bytes.Buffer
	b.Write(cmdInit)
	b.Write(cmdCenterOn)
	b.Write(cmdBoldOn)
	b.WriteString("RECIBO\n")
	b.Write(cmdBoldOff)
	if o.TableLabel != nil {
		b.WriteString(fmt.Sprintf("Mesa %s\n", *o.TableLabel))
	} else {
		b.WriteString(channelLabel(o.Channel) + "\n")
	}
	b.Write(cmdCenterOff)
	b.WriteString(at.Format("02/01/2006 15:04") + "\n")
	b.WriteString(lineSeparator)
	for _, it := range o.Items {
		b.WriteString(fmt.Sprintf("%-3d %-22s %6s\n", it.Quantity, clip(it.ProductName, 22), it.LineSubtotal().StringFixed(2)))
		for _, a := range it.AddOns {
			b.WriteString(fmt.Sprintf("    + %-20s %6s\n", clip(a.Name, 20), a.Price.StringFixed(2)))
		}
	}
	b.WriteString(lineSeparator)
	writeTotal(&b, "Subtotal", o.Subtotal)
	if o.Discount.IsPositive() {
		writeTotal(&b, "Descuento", o.Discount.Neg())
	}
	if o.ServiceCharge.IsPositive() {
		writeTotal(&b, "Servicio", o.ServiceCharge)
	}
	if o.PackagingCharge.IsPositive() {
		writeTotal(&b, "Envase", o.PackagingCharge)
	}
	if o.Tip.IsPositive() {
		writeTotal(&b, "Propina", o.Tip)
	}
	writeTotal(&b, "Impuesto", o.Tax)
	b.Write(cmdBoldOn)
	writeTotal(&b, "TOTAL", o.Total)
	b.Write(cmdBoldOff)
	b.WriteString(lineSeparator)
	b.Write(cmdCut)
	return b.Bytes()
}

func writeTotal(b *bytes.Buffer, label string, v decimal.Decimal) {
	b.WriteString(fmt.Sprintf("%-25s %6s\n", label, v.StringFixed(2)))
}

// clip truncates to n runes, not bytes, so accented product names
// never lose half a UTF-8 sequence.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func channelLabel(channel string) string {
	switch channel {
	case model.ChannelTakeAway:
		return "PARA LLEVAR"
	case model.ChannelDelivery:
		return "DELIVERY"
	default:
		return "SALON"
	}
}
