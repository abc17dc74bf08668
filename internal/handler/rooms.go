package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-seating/internal/service"
)

// RoomHandler serves /v1/rooms.
type RoomHandler struct {
	Rooms *service.RoomService
}

func NewRoomHandler(rooms *service.RoomService) *RoomHandler {
	return &RoomHandler{Rooms: rooms}
}

// Create handles POST /v1/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	var in service.RoomInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	room, err := h.Rooms.Create(c.Request().Context(), actor, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// Update handles PUT /v1/rooms/:id.
func (h *RoomHandler) Update(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var in service.RoomInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	room, err := h.Rooms.Update(c.Request().Context(), actor, id, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

func (h *RoomHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	room, err := h.Rooms.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

func (h *RoomHandler) List(c echo.Context) error {
	rooms, err := h.Rooms.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": rooms})
}
