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
	"github.com/jretamal/comanda-pos/internal/notify"
	"github.com/jretamal/comanda-pos/internal/occupancy"
	"github.com/jretamal/comanda-pos/internal/repository"
)

// fakeOrderStore is an in-memory OrderStore.  Save and UpdateStatusIf
// enforce the same status guard as the real repository.
type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[string]*model.Order
}

func newFakeOrderStore(orders ...*model.Order) *fakeOrderStore {
	s := &fakeOrderStore{orders: make(map[string]*model.Order)}
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	return s
}

func (s *fakeOrderStore) Create(_ context.Context, o *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *fakeOrderStore) GetByID(_ context.Context, id string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (s *fakeOrderStore) Save(_ context.Context, o *model.Order, expectedStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.orders[o.ID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if cur.Status != expectedStatus {
		return repository.ErrConflict
	}
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *fakeOrderStore) UpdateStatusIf(_ context.Context, id, fromStatus, toStatus string, completedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if cur.Status != fromStatus {
		return repository.ErrConflict
	}
	cur.Status = toStatus
	if model.Terminal(toStatus) {
		cur.CompletedAt = completedAt
	}
	return nil
}

func (s *fakeOrderStore) GetOrderStatus(_ context.Context, id string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return "", false, nil
	}
	return o.Status, true, nil
}

// fakeTableDirectory implements both occupancy.TableStore (the CAS
// slice) and TableDirectory (the seating/close lookup slice) over one
// in-memory map.
type fakeTableDirectory struct {
	mu     sync.Mutex
	tables map[uint64]*model.Table
}

func newFakeTableDirectory(tables ...*model.Table) *fakeTableDirectory {
	s := &fakeTableDirectory{tables: make(map[uint64]*model.Table)}
	for _, t := range tables {
		s.tables[t.ID] = t
	}
	return s
}

func (s *fakeTableDirectory) GetTable(_ context.Context, id uint64) (*model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[id]
	if !ok {
		return nil, repository.ErrTableNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeTableDirectory) FindByActiveOrder(_ context.Context, orderID string) (*model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tables {
		if t.ActiveOrderID != nil && *t.ActiveOrderID == orderID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrTableNotFound
}

func (s *fakeTableDirectory) OccupyIfAvailable(_ context.Context, tableID uint64, orderID string, staffID uint64, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableID]
	if !ok {
		return false, repository.ErrTableNotFound
	}
	if t.Status != model.TableAvailable {
		return false, nil
	}
	t.Status = model.TableOccupied
	t.ActiveOrderID = &orderID
	t.StaffID = &staffID
	t.OccupiedAt = &at
	return true, nil
}

func (s *fakeTableDirectory) ReleaseTable(_ context.Context, tableID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableID]
	if !ok {
		return repository.ErrTableNotFound
	}
	t.Status = model.TableAvailable
	t.ActiveOrderID = nil
	t.StaffID = nil
	t.OccupiedAt = nil
	return nil
}

func testBridge() *notify.Bridge {
	return notify.NewBridge(nil, false, time.Second, func(context.Context) {})
}

func newOrderHandler(store *fakeOrderStore, tables *fakeTableDirectory) *OrderHandler {
	occ := occupancy.NewManager(tables, store)
	return NewOrderHandler(store, tables, occ, testBridge(), 1, decimal.NewFromInt(10))
}

func postCtx(path, orderID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(orderID)
	return c, rec
}

func seatedOrder(orderID string, status string, tableID uint64, label string) (*model.Order, *model.Table) {
	staff := uint64(5)
	now := time.Now().UTC()
	o := &model.Order{
		ID:           orderID,
		RestaurantID: 1,
		Channel:      model.ChannelDineIn,
		TableLabel:   &label,
		Status:       status,
		CreatedAt:    now,
	}
	t := &model.Table{
		ID:            tableID,
		RoomID:        1,
		Label:         label,
		Status:        model.TableOccupied,
		ActiveOrderID: &o.ID,
		StaffID:       &staff,
		OccupiedAt:    &now,
	}
	return o, t
}

func TestCloseReleasesBoundTable(t *testing.T) {
	o, tbl := seatedOrder("o1", model.StatusReady, 7, "T7")
	store := newFakeOrderStore(o)
	tables := newFakeTableDirectory(tbl)
	h := newOrderHandler(store, tables)

	c, rec := postCtx("/v1/orders/o1/close", "o1")
	require.NoError(t, h.Close(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	status, found, err := store.GetOrderStatus(context.Background(), "o1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.StatusDelivered, status)

	got, err := tables.GetTable(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, model.TableAvailable, got.Status)
	assert.Nil(t, got.ActiveOrderID)
	assert.Nil(t, got.StaffID)
	assert.Nil(t, got.OccupiedAt)
}

func TestCancelReleasesBoundTable(t *testing.T) {
	o, tbl := seatedOrder("o1", model.StatusPending, 7, "T7")
	store := newFakeOrderStore(o)
	tables := newFakeTableDirectory(tbl)
	h := newOrderHandler(store, tables)

	c, rec := postCtx("/v1/orders/o1/cancel", "o1")
	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	status, _, err := store.GetOrderStatus(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, status)

	got, err := tables.GetTable(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, model.TableAvailable, got.Status)
	assert.Nil(t, got.ActiveOrderID)
}

func TestCloseTakeAwayHasNoTableToRelease(t *testing.T) {
	o := &model.Order{
		ID:           "o2",
		RestaurantID: 1,
		Channel:      model.ChannelTakeAway,
		Status:       model.StatusReady,
		CreatedAt:    time.Now().UTC(),
	}
	store := newFakeOrderStore(o)
	tables := newFakeTableDirectory()
	h := newOrderHandler(store, tables)

	c, rec := postCtx("/v1/orders/o2/close", "o2")
	require.NoError(t, h.Close(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	status, _, err := store.GetOrderStatus(context.Background(), "o2")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, status)
}

func TestCloseTerminalOrderConflicts(t *testing.T) {
	o, tbl := seatedOrder("o1", model.StatusDelivered, 7, "T7")
	store := newFakeOrderStore(o)
	tables := newFakeTableDirectory(tbl)
	h := newOrderHandler(store, tables)

	c, rec := postCtx("/v1/orders/o1/close", "o1")
	require.NoError(t, h.Close(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// A rejected close must not touch the table.
	got, err := tables.GetTable(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, model.TableOccupied, got.Status)
}
