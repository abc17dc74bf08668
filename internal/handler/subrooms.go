package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/service"
)

// SubRoomHandler serves /v1/subrooms and the manual archive action.
type SubRoomHandler struct {
	SubRooms *service.SubRoomService
	Archives *service.ArchiveService
}

func NewSubRoomHandler(subRooms *service.SubRoomService, archives *service.ArchiveService) *SubRoomHandler {
	return &SubRoomHandler{SubRooms: subRooms, Archives: archives}
}

// Create handles POST /v1/subrooms.
func (h *SubRoomHandler) Create(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	var in service.SubRoomInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	sr, err := h.SubRooms.Create(c.Request().Context(), actor, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, sr)
}

func (h *SubRoomHandler) Get(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	sr, err := h.SubRooms.Get(c.Request().Context(), actor, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, sr)
}

// List handles GET /v1/subrooms?teacher_id=; the caller's own plans by
// default.
func (h *SubRoomHandler) List(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	teacherID, err := queryUint(c, "teacher_id")
	if err != nil {
		return fail(c, err)
	}
	subs, err := h.SubRooms.ListByTeacher(c.Request().Context(), actor, teacherID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"sub_rooms": subs})
}

// Layout handles GET /v1/subrooms/:id/layout.
func (h *SubRoomHandler) Layout(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	l, err := h.SubRooms.Layout(c.Request().Context(), actor, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

// Archive handles POST /v1/subrooms/:id/archive with an optional
// {"reason": "manual"|"cleanup"} body.
func (h *SubRoomHandler) Archive(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if c.Request().ContentLength > 0 {
		if err := bind(c, &body); err != nil {
			return fail(c, err)
		}
	}
	a, err := h.Archives.ArchiveManual(c.Request().Context(), actor, id, model.ArchiveReason(body.Reason))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}
