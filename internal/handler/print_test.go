package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jretamal/comanda-pos/internal/model"
	"github.com/jretamal/comanda-pos/internal/printing"
)

// stubAgent records the devices it was asked to print to.
type stubAgent struct {
	mu      sync.Mutex
	devices []string
}

func (a *stubAgent) Print(_ context.Context, device string, _ []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.devices = append(a.devices, device)
	return nil
}

func (a *stubAgent) Printers(_ context.Context) ([]string, error) {
	return []string{"kitchen-1", "counter-1"}, nil
}

// stubMarker records the item IDs persisted as sent.
type stubMarker struct {
	mu     sync.Mutex
	marked [][]string
}

func (m *stubMarker) MarkItemsPrinted(_ context.Context, _ string, itemIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marked = append(m.marked, itemIDs)
	return nil
}

func printableOrder() *model.Order {
	return &model.Order{
		ID:           "o1",
		RestaurantID: 1,
		Channel:      model.ChannelDineIn,
		Status:       model.StatusPending,
		CreatedAt:    time.Now().UTC(),
		Items: []model.OrderItem{
			{ID: "i1", OrderID: "o1", ProductID: "p1", ProductName: "Paella", Quantity: 1, UnitPrice: decimal.NewFromInt(12)},
		},
	}
}

func TestKitchenPrintsToConfiguredClass(t *testing.T) {
	store := newFakeOrderStore(printableOrder())
	agent := &stubAgent{}
	marker := &stubMarker{}
	coord := printing.NewCoordinator(agent, marker, time.Second)
	h := NewPrintHandler(store, coord, agent, []string{"kitchen-1"}, []string{"counter-1"})

	c, rec := postCtx("/v1/orders/o1/print/kitchen", "o1")
	require.NoError(t, h.Kitchen(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kitchen-1")

	// The kitchen class received the ticket, never the counter class.
	assert.Equal(t, []string{"kitchen-1"}, agent.devices)
	require.Len(t, marker.marked, 1)
	assert.Equal(t, []string{"i1"}, marker.marked[0])
}

func TestKitchenReportsNoNewItems(t *testing.T) {
	o := printableOrder()
	o.Items[0].Printed = true
	store := newFakeOrderStore(o)
	agent := &stubAgent{}
	coord := printing.NewCoordinator(agent, &stubMarker{}, time.Second)
	h := NewPrintHandler(store, coord, agent, []string{"kitchen-1"}, nil)

	c, rec := postCtx("/v1/orders/o1/print/kitchen", "o1")
	require.NoError(t, h.Kitchen(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "no_new_items")
	assert.Empty(t, agent.devices)
}

func TestReceiptPrintsToCounterClass(t *testing.T) {
	store := newFakeOrderStore(printableOrder())
	agent := &stubAgent{}
	marker := &stubMarker{}
	coord := printing.NewCoordinator(agent, marker, time.Second)
	h := NewPrintHandler(store, coord, agent, []string{"kitchen-1"}, []string{"counter-1"})

	c, rec := postCtx("/v1/orders/o1/print/receipt", "o1")
	require.NoError(t, h.Receipt(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"counter-1"}, agent.devices)
	assert.Empty(t, marker.marked, "receipt printing never flips sent flags")
}

func TestPrintersPassthrough(t *testing.T) {
	store := newFakeOrderStore()
	agent := &stubAgent{}
	coord := printing.NewCoordinator(agent, &stubMarker{}, time.Second)
	h := NewPrintHandler(store, coord, agent, nil, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/printers", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Printers(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "counter-1")
}
