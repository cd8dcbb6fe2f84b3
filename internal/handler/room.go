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

// RoomHandler manages the floor plan: rooms and the tables they own.
type RoomHandler struct {
	Rooms     *repository.RoomRepo
	Tables    *repository.TableRepo
	Occupancy *occupancy.Manager
	Bridge    *notify.Bridge
}

// NewRoomHandler constructs a RoomHandler.  All dependencies must be
// non-nil.
func NewRoomHandler(rooms *repository.RoomRepo, tables *repository.TableRepo, occ *occupancy.Manager, bridge *notify.Bridge) *RoomHandler {
	if rooms == nil || tables == nil || occ == nil || bridge == nil {
		panic("nil dependency passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms, Tables: tables, Occupancy: occ, Bridge: bridge}
}

// Create handles POST /v1/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	var body struct {
		Name         string `json:"name"`
		DisplayOrder uint32 `json:"display_order"`
	}
	if err := c.Bind(&body); err != nil || body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	room := &model.Room{Name: body.Name, DisplayOrder: body.DisplayOrder}
	if err := h.Rooms.Create(c.Request().Context(), room); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// List handles GET /v1/rooms.
func (h *RoomHandler) List(c echo.Context) error {
	rooms, err := h.Rooms.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rooms)
}

// Archive handles POST /v1/rooms/:id/archive.  Archiving keeps the
// row and its tables; it is the path for rooms that still own tables
// and therefore cannot be hard-deleted.
func (h *RoomHandler) Archive(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	if err := h.Rooms.SetActive(c.Request().Context(), id, false); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /v1/rooms/:id.  A room that still owns
// tables is rejected with a conflict; archive it instead.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	if err := h.Rooms.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateTable handles POST /v1/rooms/:id/tables.
func (h *RoomHandler) CreateTable(c echo.Context) error {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || roomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var body struct {
		Label string `json:"label"`
	}
	if err := c.Bind(&body); err != nil || body.Label == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "label is required"})
	}
	ctx := c.Request().Context()
	if _, err := h.Rooms.GetByID(ctx, roomID); err != nil {
		return respondError(c, err)
	}
	t := &model.Table{RoomID: roomID, Label: body.Label}
	if err := h.Tables.Create(ctx, t); err != nil {
		return respondError(c, err)
	}
	h.Bridge.Publish(ctx, "*")
	return c.JSON(http.StatusCreated, t)
}

// ListTables handles GET /v1/rooms/:id/tables.  Each table carries
// the derived inconsistency flag so the floor plan can highlight
// candidates for force release.
func (h *RoomHandler) ListTables(c echo.Context) error {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || roomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	ctx := c.Request().Context()
	tables, err := h.Tables.ListByRoom(ctx, roomID)
	if err != nil {
		return respondError(c, err)
	}
	views := make([]tableView, 0, len(tables))
	for i := range tables {
		inconsistent, err := h.Occupancy.DetectInconsistent(ctx, &tables[i])
		if err != nil {
			return respondError(c, err)
		}
		views = append(views, tableView{Table: &tables[i], Inconsistent: inconsistent})
	}
	return c.JSON(http.StatusOK, views)
}
