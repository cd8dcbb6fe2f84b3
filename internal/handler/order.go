package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/jretamal/comanda-pos/internal/model"
	"github.com/jretamal/comanda-pos/internal/money"
	"github.com/jretamal/comanda-pos/internal/notify"
	"github.com/jretamal/comanda-pos/internal/occupancy"
	"github.com/jretamal/comanda-pos/internal/order"
	"github.com/jretamal/comanda-pos/internal/queue"
	"github.com/jretamal/comanda-pos/internal/repository"
)

// OrderHandler groups the collaborators needed to create and mutate
// orders.  Every mutation follows the same shape: fresh point read,
// state-machine validation against what was just read, in-memory
// mutation through the ledger, totals recomputation, guarded save.
// The guard makes a concurrent status change (e.g. the kitchen
// delivering mid-edit) surface as a conflict instead of a lost update.
type OrderHandler struct {
	Orders       OrderStore
	Tables       TableDirectory
	Occupancy    *occupancy.Manager
	Bridge       *notify.Bridge
	RestaurantID uint64
	TaxRate      decimal.Decimal
}

// NewOrderHandler constructs an OrderHandler.  All dependencies must
// be non-nil.
func NewOrderHandler(orders OrderStore, tables TableDirectory, occ *occupancy.Manager, bridge *notify.Bridge, restaurantID uint64, taxRate decimal.Decimal) *OrderHandler {
	if orders == nil || tables == nil || occ == nil || bridge == nil {
		panic("nil dependency passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: orders, Tables: tables, Occupancy: occ, Bridge: bridge, RestaurantID: restaurantID, TaxRate: taxRate}
}

type addOnBody struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type itemBody struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	AddOns      []addOnBody     `json:"addons"`
	Note        string          `json:"note"`
}

func (b itemBody) addOns() []model.AddOn {
	out := make([]model.AddOn, 0, len(b.AddOns))
	for _, a := range b.AddOns {
		out = append(out, model.AddOn{Name: a.Name, Price: a.Price})
	}
	return out
}

// recalculate reruns the single totals formula over the order's
// current items and adjustments and writes the result back onto the
// order.  Called after every item mutation, before every save.
func (h *OrderHandler) recalculate(o *model.Order) error {
	totals, err := money.Calculate(o.Items, money.Adjustments{
		Discount:        o.Discount,
		Tip:             o.Tip,
		ServiceCharge:   o.ServiceCharge,
		PackagingCharge: o.PackagingCharge,
		ContainerFee:    o.ContainerFee,
	}, h.TaxRate)
	if err != nil {
		return err
	}
	o.Subtotal = totals.Subtotal
	o.Tax = totals.Tax
	o.Total = totals.Total
	return nil
}

// Create handles POST /v1/orders.  The order starts PENDING.  For a
// dine-in order with a table_id the table is seated first through the
// atomic occupy; when the subsequent order insert fails the seating
// is rolled back with a force release so no table points at a ghost
// order.  An occupancy conflict is returned to the user as-is —
// retrying on behalf of the caller could double-seat.
func (h *OrderHandler) Create(c echo.Context) error {
	staffID, err := getStaffID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Channel         string          `json:"channel"`
		TableID         *uint64         `json:"table_id"`
		PaymentMethod   string          `json:"payment_method"`
		CustomerName    *string         `json:"customer_name"`
		CustomerPhone   *string         `json:"customer_phone"`
		CustomerAddress *string         `json:"customer_address"`
		Discount        decimal.Decimal `json:"discount"`
		Tip             decimal.Decimal `json:"tip"`
		ServiceCharge   decimal.Decimal `json:"service_charge"`
		PackagingCharge decimal.Decimal `json:"packaging_charge"`
		ContainerFee    decimal.Decimal `json:"container_fee"`
		Items           []itemBody      `json:"items"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	switch body.Channel {
	case model.ChannelDineIn, model.ChannelTakeAway, model.ChannelDelivery:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown channel"})
	}
	if body.TableID != nil && body.Channel != model.ChannelDineIn {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "only dine-in orders can be seated at a table"})
	}

	o := &model.Order{
		ID:              uuid.NewString(),
		RestaurantID:    h.RestaurantID,
		Channel:         body.Channel,
		PaymentMethod:   body.PaymentMethod,
		CustomerName:    body.CustomerName,
		CustomerPhone:   body.CustomerPhone,
		CustomerAddress: body.CustomerAddress,
		Discount:        body.Discount,
		Tip:             body.Tip,
		ServiceCharge:   body.ServiceCharge,
		PackagingCharge: body.PackagingCharge,
		ContainerFee:    body.ContainerFee,
		Status:          model.StatusPending,
		CreatedAt:       time.Now().UTC(),
	}
	for _, it := range body.Items {
		if _, err := order.AddItem(o, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, it.addOns(), it.Note); err != nil {
			return respondError(c, err)
		}
	}
	if err := h.recalculate(o); err != nil {
		return respondError(c, err)
	}

	ctx := c.Request().Context()
	var seatedTable *model.Table
	if body.TableID != nil {
		t, err := h.Tables.GetTable(ctx, *body.TableID)
		if err != nil {
			return respondError(c, err)
		}
		if err := h.Occupancy.Occupy(ctx, t.ID, o.ID, staffID); err != nil {
			return respondError(c, err)
		}
		seatedTable = t
		o.TableLabel = &t.Label
	}

	if err := h.Orders.Create(ctx, o); err != nil {
		if seatedTable != nil {
			// Roll the seating back so the table does not reference an
			// order that was never persisted.
			if relErr := h.Occupancy.ForceRelease(ctx, seatedTable.ID); relErr != nil {
				log.Printf("order: rollback release of table %d failed: %v", seatedTable.ID, relErr)
			}
		}
		return respondError(c, err)
	}
	if seatedTable != nil {
		h.Bridge.Publish(ctx, uintToString(seatedTable.ID))
	}
	return c.JSON(http.StatusCreated, o)
}

// Get handles GET /v1/orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	o, err := h.Orders.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// AddItem handles POST /v1/orders/:id/items.  Adding is legal until
// the order is terminal; an addition after the kitchen ticket was
// fired raises the unsent-items warning on the order.
func (h *OrderHandler) AddItem(c echo.Context) error {
	var body itemBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	return h.mutate(c, func(o *model.Order) error {
		_, err := order.AddItem(o, body.ProductID, body.ProductName, body.Quantity, body.UnitPrice, body.addOns(), body.Note)
		return err
	})
}

// ChangeQuantity handles PATCH /v1/orders/:id/items/:itemId.  Legal
// only while the order is PENDING; a quantity of zero or below
// removes the line.
func (h *OrderHandler) ChangeQuantity(c echo.Context) error {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	itemID := c.Param("itemId")
	return h.mutate(c, func(o *model.Order) error {
		return order.ChangeQuantity(o, itemID, body.Quantity)
	})
}

// ReplaceItems handles PUT /v1/orders/:id/items, the full-save path.
// The entire item set is swapped and persisted with delete-then-insert
// inside one transaction.
func (h *OrderHandler) ReplaceItems(c echo.Context) error {
	var body struct {
		Items []itemBody `json:"items"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	return h.mutate(c, func(o *model.Order) error {
		items := make([]model.OrderItem, 0, len(body.Items))
		for _, it := range body.Items {
			if it.UnitPrice.IsNegative() {
				return money.ErrNegativePrice
			}
			items = append(items, model.OrderItem{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Quantity:    uint32(max(it.Quantity, 0)),
				UnitPrice:   it.UnitPrice,
				AddOns:      it.addOns(),
				Note:        it.Note,
				NewlyAdded:  true,
			})
		}
		return order.ReplaceAll(o, items)
	})
}

// mutate is the shared read-validate-mutate-recalculate-save cycle.
// The save is guarded on the status read at the top, so the state
// machine precondition is effectively re-validated at write time.
func (h *OrderHandler) mutate(c echo.Context, fn func(*model.Order) error) error {
	ctx := c.Request().Context()
	o, err := h.Orders.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	readStatus := o.Status
	if err := fn(o); err != nil {
		return respondError(c, err)
	}
	if err := h.recalculate(o); err != nil {
		return respondError(c, err)
	}
	if err := h.Orders.Save(ctx, o, readStatus); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// AdvanceStatus handles PATCH /v1/orders/:id/status.  Forward moves
// only; reaching DELIVERED also releases the seated table and emits
// the closed event, identical to Close.
func (h *OrderHandler) AdvanceStatus(c echo.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Status == model.StatusCancelled {
		// Cancellation has its own endpoint with release semantics.
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "use the cancel endpoint to cancel an order"})
	}
	return h.transition(c, body.Status)
}

// Cancel handles POST /v1/orders/:id/cancel.  Reachable from any
// non-terminal state; a seated table is released.
func (h *OrderHandler) Cancel(c echo.Context) error {
	return h.transition(c, model.StatusCancelled)
}

// Close handles POST /v1/orders/:id/close: deliver the order,
// release its table, publish the closed event.
func (h *OrderHandler) Close(c echo.Context) error {
	return h.transition(c, model.StatusDelivered)
}

// transition advances an order to the target status with a guarded
// update, then performs terminal side effects: table release, change
// notification, closed event.  A lost guard means another client
// changed the status first and is reported as a conflict.
func (h *OrderHandler) transition(c echo.Context, target string) error {
	ctx := c.Request().Context()
	o, err := h.Orders.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	if err := order.CanTransition(o.Status, target); err != nil {
		return respondError(c, err)
	}
	now := time.Now().UTC()
	if err := h.Orders.UpdateStatusIf(ctx, o.ID, o.Status, target, &now); err != nil {
		return respondError(c, err)
	}
	o.Status = target
	if model.Terminal(target) {
		o.CompletedAt = &now
		h.closeOut(ctx, o)
	}
	return c.JSON(http.StatusOK, o)
}

// closeOut releases the table bound to a terminal order (when there
// is one) and publishes the order.closed event.  Failures here are
// logged, not returned: the status change already committed, and the
// table can always be repaired with a force release.
func (h *OrderHandler) closeOut(ctx context.Context, o *model.Order) {
	t, err := h.Tables.FindByActiveOrder(ctx, o.ID)
	switch {
	case err == nil:
		if relErr := h.Occupancy.Release(ctx, t.ID); relErr != nil {
			log.Printf("order: release of table %d failed: %v", t.ID, relErr)
		} else {
			h.Bridge.Publish(ctx, uintToString(t.ID))
		}
	case errors.Is(err, repository.ErrTableNotFound):
		// Take-away, delivery, or an already-released table.
	default:
		log.Printf("order: table lookup for order %s failed: %v", o.ID, err)
	}

	ev := queue.OrderClosedEvent{
		OrderID:      o.ID,
		RestaurantID: o.RestaurantID,
		Channel:      o.Channel,
		Status:       o.Status,
		ItemCount:    len(o.Items),
		Subtotal:     o.Subtotal.StringFixed(2),
		Tax:          o.Tax.StringFixed(2),
		Total:        o.Total.StringFixed(2),
		ClosedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if o.TableLabel != nil {
		ev.TableLabel = *o.TableLabel
	}
	go func() {
		pctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue.PublishOrderClosed(pctx, ev)
	}()
}

func uintToString(v uint64) string {
	return strconv.FormatUint(v, 10)
}
