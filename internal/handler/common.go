package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jretamal/comanda-pos/internal/model"
	"github.com/jretamal/comanda-pos/internal/money"
	"github.com/jretamal/comanda-pos/internal/occupancy"
	"github.com/jretamal/comanda-pos/internal/order"
	"github.com/jretamal/comanda-pos/internal/printing"
	"github.com/jretamal/comanda-pos/internal/repository"
)

// OrderStore is the slice of the order repository the handlers depend
// on.  *repository.OrderRepo satisfies it; tests inject in-memory
// fakes.
type OrderStore interface {
	Create(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	Save(ctx context.Context, o *model.Order, expectedStatus string) error
	UpdateStatusIf(ctx context.Context, id, fromStatus, toStatus string, completedAt *time.Time) error
}

// TableDirectory resolves tables for seating at order creation and
// for the close-time lookup-and-release.  FindByActiveOrder returns
// repository.ErrTableNotFound when no table is bound to the order,
// which is the normal case for take-away and delivery.
type TableDirectory interface {
	GetTable(ctx context.Context, id uint64) (*model.Table, error)
	FindByActiveOrder(ctx context.Context, orderID string) (*model.Table, error)
}

// getStaffID extracts the staff_id claim from echo.Context and converts it
// to uint64.  The auth middleware stores whatever type the JWT decoder
// produced, so all the likely representations are handled.
func getStaffID(c echo.Context) (uint64, error) {
	v := c.Get("staff_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid staff_id in context")
}

// respondError translates domain and repository sentinels into distinct
// HTTP responses.  Every failure keeps its own message — a generic
// "error" would rob the operator of the reason.  Unknown errors are
// treated as transient store failures and reported as 503 so the client
// retries with backoff.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, money.ErrNegativePrice),
		errors.Is(err, money.ErrNegativeAdjustment):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, order.ErrInvalidTransition):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status transition"})
	case errors.Is(err, order.ErrItemNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order item not found"})
	case errors.Is(err, repository.ErrRoomNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	case errors.Is(err, repository.ErrTableNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
	case errors.Is(err, repository.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	case errors.Is(err, order.ErrEditNotAllowed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "edit not allowed in current order status"})
	case errors.Is(err, order.ErrOrderClosed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "order is closed"})
	case errors.Is(err, occupancy.ErrTableAlreadyOccupied):
		return c.JSON(http.StatusConflict, echo.Map{"error": "table already occupied"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "state changed concurrently, reload and retry"})
	case errors.Is(err, printing.ErrNoPrintersSucceeded):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "no printers succeeded"})
	default:
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
	}
}
