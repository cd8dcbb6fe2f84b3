package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jretamal/comanda-pos/internal/model"
	"github.com/jretamal/comanda-pos/internal/money"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func pendingOrder() *model.Order {
	return &model.Order{ID: "order-1", Status: model.StatusPending}
}

func TestAddItemSnapshotsAndFlags(t *testing.T) {
	o := pendingOrder()
	it, err := AddItem(o, "p1", "Margarita", 2, dec("8.50"), nil, "no basil")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), it.Quantity)
	assert.True(t, it.UnitPrice.Equal(dec("8.50")))
	assert.True(t, it.NewlyAdded)
	assert.False(t, it.Printed)
	assert.NotEmpty(t, it.ID)
	assert.Equal(t, "order-1", it.OrderID)
	assert.False(t, o.HasUnsentItems, "pending orders do not raise the reprint warning")
}

func TestAddItemRejectsBadInput(t *testing.T) {
	o := pendingOrder()
	_, err := AddItem(o, "p1", "Margarita", 0, dec("8.50"), nil, "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = AddItem(o, "p1", "Margarita", 1, dec("-8.50"), nil, "")
	assert.ErrorIs(t, err, money.ErrNegativePrice)
	_, err = AddItem(o, "p1", "Margarita", 1, dec("8.50"), []model.AddOn{{Name: "x", Price: dec("-1")}}, "")
	assert.ErrorIs(t, err, money.ErrNegativePrice)
	assert.Empty(t, o.Items)
}

func TestAddItemMergesIdenticalLines(t *testing.T) {
	o := pendingOrder()
	addons := []model.AddOn{{Name: "cheese", Price: dec("1.00")}, {Name: "olives", Price: dec("0.50")}}
	_, err := AddItem(o, "p1", "Margarita", 1, dec("8.50"), addons, "")
	require.NoError(t, err)
	// Same product, same add-on set in different order: merge.
	reordered := []model.AddOn{{Name: "olives", Price: dec("0.50")}, {Name: "cheese", Price: dec("1.00")}}
	_, err = AddItem(o, "p1", "Margarita", 2, dec("8.50"), reordered, "")
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, uint32(3), o.Items[0].Quantity)

	// Different add-on set: separate line.
	_, err = AddItem(o, "p1", "Margarita", 1, dec("8.50"), nil, "")
	require.NoError(t, err)
	assert.Len(t, o.Items, 2)
}

func TestAddItemNeverMergesIntoPrintedLine(t *testing.T) {
	o := pendingOrder()
	_, err := AddItem(o, "p1", "Margarita", 1, dec("8.50"), nil, "")
	require.NoError(t, err)
	o.Items[0].Printed = true

	_, err = AddItem(o, "p1", "Margarita", 1, dec("8.50"), nil, "")
	require.NoError(t, err)
	require.Len(t, o.Items, 2, "a printed line must not absorb new quantity")
	assert.True(t, o.Items[0].Printed)
	assert.False(t, o.Items[1].Printed)
}

func TestAddItemDuringPreparationRaisesWarning(t *testing.T) {
	o := pendingOrder()
	o.Status = model.StatusPreparing
	_, err := AddItem(o, "p2", "Tiramisu", 1, dec("4.00"), nil, "")
	require.NoError(t, err)
	assert.True(t, o.HasUnsentItems)
}

func TestAddItemRejectedOnTerminalOrder(t *testing.T) {
	o := pendingOrder()
	o.Status = model.StatusDelivered
	_, err := AddItem(o, "p2", "Tiramisu", 1, dec("4.00"), nil, "")
	assert.ErrorIs(t, err, ErrOrderClosed)
}

func TestChangeQuantity(t *testing.T) {
	o := pendingOrder()
	it, err := AddItem(o, "p1", "Margarita", 2, dec("8.50"), nil, "")
	require.NoError(t, err)

	require.NoError(t, ChangeQuantity(o, it.ID, 5))
	assert.Equal(t, uint32(5), o.Items[0].Quantity)

	// Zero removes the line.
	require.NoError(t, ChangeQuantity(o, it.ID, 0))
	assert.Empty(t, o.Items)

	assert.ErrorIs(t, ChangeQuantity(o, "missing", 1), ErrItemNotFound)
}

func TestChangeQuantityBlockedOncePreparing(t *testing.T) {
	o := pendingOrder()
	it, err := AddItem(o, "p1", "Margarita", 2, dec("8.50"), nil, "")
	require.NoError(t, err)
	o.Status = model.StatusPreparing
	assert.ErrorIs(t, ChangeQuantity(o, it.ID, 3), ErrEditNotAllowed)
	assert.Equal(t, uint32(2), o.Items[0].Quantity, "failed edit must not mutate")
}

func TestReplaceAllSwapsItemSet(t *testing.T) {
	o := pendingOrder()
	_, err := AddItem(o, "p1", "Margarita", 1, dec("8.50"), nil, "")
	require.NoError(t, err)

	err = ReplaceAll(o, []model.OrderItem{
		{ProductID: "p2", ProductName: "Calzone", Quantity: 2, UnitPrice: dec("9.00")},
	})
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "p2", o.Items[0].ProductID)
	assert.Equal(t, "order-1", o.Items[0].OrderID)
	assert.NotEmpty(t, o.Items[0].ID)
}

func TestReplaceAllValidates(t *testing.T) {
	o := pendingOrder()
	err := ReplaceAll(o, []model.OrderItem{{ProductID: "p2", Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	o.Status = model.StatusPreparing
	err = ReplaceAll(o, nil)
	assert.ErrorIs(t, err, ErrEditNotAllowed)
}

func TestUnprintedItemsAndMarkPrinted(t *testing.T) {
	o := pendingOrder()
	a, _ := AddItem(o, "p1", "Margarita", 1, dec("8.50"), nil, "")
	b, _ := AddItem(o, "p2", "Calzone", 1, dec("9.00"), nil, "")
	c, _ := AddItem(o, "p3", "Tiramisu", 1, dec("4.00"), nil, "")
	MarkPrinted(o, []string{a.ID}) // a already fired
	o.HasUnsentItems = true

	unprinted := UnprintedItems(o)
	require.Len(t, unprinted, 2)
	assert.Equal(t, b.ID, unprinted[0].ID)
	assert.Equal(t, c.ID, unprinted[1].ID)

	// Marking only b keeps c unprinted and the warning raised.
	MarkPrinted(o, []string{b.ID})
	assert.True(t, o.Items[1].Printed)
	assert.False(t, o.Items[2].Printed)
	assert.True(t, o.HasUnsentItems)

	// Marking the rest clears the warning.
	MarkPrinted(o, []string{c.ID})
	assert.False(t, o.HasUnsentItems)
	assert.True(t, o.Items[0].Printed, "the first line was printed before and stays printed")
}
