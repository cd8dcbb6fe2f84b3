package printing

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jretamal/comanda-pos/internal/model"
)

func TestClipCountsRunesNotBytes(t *testing.T) {
	// "Jalapeño" is 8 runes but 9 bytes; a byte clip at 8 would cut
	// the ñ in half.
	assert.Equal(t, "Jalapeño", clip("Jalapeño", 8))
	assert.Equal(t, "Jalape", clip("Jalapeño", 6))
	assert.Equal(t, "short", clip("short", 22))
	assert.True(t, utf8.ValidString(clip("ñññññ", 3)))
}

func TestReceiptKeepsAccentedNamesIntact(t *testing.T) {
	o := &model.Order{
		Channel: model.ChannelTakeAway,
		Items: []model.OrderItem{
			{ProductName: "Jalapeño Poppers", Quantity: 1, UnitPrice: decimal.NewFromInt(6)},
		},
		Subtotal: decimal.NewFromInt(6),
		Total:    decimal.NewFromInt(6),
	}
	payload := FormatCustomerReceipt(o, time.Now().UTC())
	assert.Contains(t, string(payload), "Jalapeño Poppers")
	assert.Contains(t, string(payload), "PARA LLEVAR")
}
