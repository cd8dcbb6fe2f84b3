package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jretamal/comanda-pos/internal/model"
	"github.com/jretamal/comanda-pos/internal/notify"
	"github.com/jretamal/comanda-pos/internal/occupancy"
	"github.com/jretamal/comanda-pos/internal/repository"
)

// TableHandler exposes the occupancy operations and table views.
// Reads report the inconsistency flag alongside the row so staff can
// spot tables whose automatic release was lost; the explicit repair
// is the force-release endpoint, never a silent fix inside a read.
type TableHandler struct {
	Tables    *repository.TableRepo
	Occupancy *occupancy.Manager
	Bridge    *notify.Bridge
}

// NewTableHandler constructs a TableHandler.  All dependencies must
// be non-nil.
func NewTableHandler(tables *repository.TableRepo, occ *occupancy.Manager, bridge *notify.Bridge) *TableHandler {
	if tables == nil || occ == nil || bridge == nil {
		panic("nil dependency passed to NewTableHandler")
	}
	return &TableHandler{Tables: tables, Occupancy: occ, Bridge: bridge}
}

// tableView is the JSON shape for table reads, a Table plus the
// derived inconsistency flag.
type tableView struct {
	*model.Table
	Inconsistent bool `json:"inconsistent"`
}

func parseTableID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// Get handles GET /v1/tables/:id.
func (h *TableHandler) Get(c echo.Context) error {
	id, err := parseTableID(c)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	ctx := c.Request().Context()
	t, err := h.Tables.GetTable(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	inconsistent, err := h.Occupancy.DetectInconsistent(ctx, t)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tableView{Table: t, Inconsistent: inconsistent})
}

// Occupy handles POST /v1/tables/:id/occupy, seating an existing
// order at a free table.  The check-and-set is atomic at the store;
// a lost race returns the conflict to the caller untouched.
func (h *TableHandler) Occupy(c echo.Context) error {
	staffID, err := getStaffID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseTableID(c)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	var body struct {
		OrderID string `json:"order_id"`
	}
	if err := c.Bind(&body); err != nil || body.OrderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_id is required"})
	}
	ctx := c.Request().Context()
	if err := h.Occupancy.Occupy(ctx, id, body.OrderID, staffID); err != nil {
		return respondError(c, err)
	}
	h.Bridge.Publish(ctx, strconv.FormatUint(id, 10))
	t, err := h.Tables.GetTable(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tableView{Table: t})
}

// Release handles POST /v1/tables/:id/release.
func (h *TableHandler) Release(c echo.Context) error {
	return h.release(c, false)
}

// ForceRelease handles POST /v1/tables/:id/force-release, the manual
// recovery path for an inconsistent table.  It is idempotent:
// forcing an already-available table succeeds.
func (h *TableHandler) ForceRelease(c echo.Context) error {
	return h.release(c, true)
}

func (h *TableHandler) release(c echo.Context, force bool) error {
	id, err := parseTableID(c)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	ctx := c.Request().Context()
	if force {
		err = h.Occupancy.ForceRelease(ctx, id)
	} else {
		err = h.Occupancy.Release(ctx, id)
	}
	if err != nil {
		return respondError(c, err)
	}
	h.Bridge.Publish(ctx, strconv.FormatUint(id, 10))
	t, err := h.Tables.GetTable(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tableView{Table: t})
}
