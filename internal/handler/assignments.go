package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/service"
)

// AssignmentHandler serves /v1/subrooms/:id/assignments.  Every write
// carries the revision the client last read; a mismatch is a 409.
type AssignmentHandler struct {
	Assignments *service.AssignmentService
}

func NewAssignmentHandler(as *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{Assignments: as}
}

func requireRevision(rev uint64) error {
	if rev == 0 {
		return service.NewValidationError(nil, service.FieldError{Field: "revision", Error: "revision is a required field"})
	}
	return nil
}

// List handles GET /v1/subrooms/:id/assignments.
func (h *AssignmentHandler) List(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	snap, err := h.Assignments.Get(c.Request().Context(), actor, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, service.EditResult{
		SubRoomID:   id,
		Revision:    snap.SubRoom.Revision,
		Assignments: snap.Seats.Assignments(id),
	})
}

// Replace handles PUT /v1/subrooms/:id/assignments: the body is the
// complete assignment set.
func (h *AssignmentHandler) Replace(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var body struct {
		Revision    uint64               `json:"revision"`
		Assignments []model.ProposedSeat `json:"assignments"`
	}
	if err := bind(c, &body); err != nil {
		return fail(c, err)
	}
	if err := requireRevision(body.Revision); err != nil {
		return fail(c, err)
	}
	res, err := h.Assignments.Replace(c.Request().Context(), actor, id, body.Revision, body.Assignments)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Place handles POST /v1/subrooms/:id/assignments/place.
func (h *AssignmentHandler) Place(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var body struct {
		Revision  uint64 `json:"revision"`
		Seat      int    `json:"seat"`
		StudentID uint64 `json:"student_id"`
	}
	if err := bind(c, &body); err != nil {
		return fail(c, err)
	}
	if err := requireRevision(body.Revision); err != nil {
		return fail(c, err)
	}
	res, err := h.Assignments.PlaceSeat(c.Request().Context(), actor, id, body.Revision, body.Seat, body.StudentID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Swap handles POST /v1/subrooms/:id/assignments/swap.
func (h *AssignmentHandler) Swap(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var body struct {
		Revision uint64 `json:"revision"`
		From     int    `json:"from"`
		To       int    `json:"to"`
	}
	if err := bind(c, &body); err != nil {
		return fail(c, err)
	}
	if err := requireRevision(body.Revision); err != nil {
		return fail(c, err)
	}
	res, err := h.Assignments.SwapSeats(c.Request().Context(), actor, id, body.Revision, body.From, body.To)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Unplace handles POST /v1/subrooms/:id/assignments/unplace.
func (h *AssignmentHandler) Unplace(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var body struct {
		Revision  uint64 `json:"revision"`
		StudentID uint64 `json:"student_id"`
		Confirm   bool   `json:"confirm"`
	}
	if err := bind(c, &body); err != nil {
		return fail(c, err)
	}
	if err := requireRevision(body.Revision); err != nil {
		return fail(c, err)
	}
	res, err := h.Assignments.UnplaceStudent(c.Request().Context(), actor, id, body.Revision, body.StudentID, body.Confirm)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Clear handles DELETE /v1/subrooms/:id/assignments/:seat?revision=&confirm=.
func (h *AssignmentHandler) Clear(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	seat, err := strconv.Atoi(c.Param("seat"))
	if err != nil {
		return fail(c, service.NewValidationError(err, service.FieldError{Field: "seat", Error: "must be an integer"}))
	}
	rev, err := queryUint(c, "revision")
	if err != nil {
		return fail(c, err)
	}
	if err := requireRevision(rev); err != nil {
		return fail(c, err)
	}
	confirm, _ := strconv.ParseBool(c.QueryParam("confirm"))
	res, err := h.Assignments.ClearSeat(c.Request().Context(), actor, id, rev, seat, confirm)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Strategy handles POST /v1/subrooms/:id/assignments/strategy.
func (h *AssignmentHandler) Strategy(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var in service.StrategyInput
	if err := bind(c, &in); err != nil {
		return fail(c, err)
	}
	res, err := h.Assignments.ApplyStrategy(c.Request().Context(), actor, id, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
