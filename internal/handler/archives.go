package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-seating/internal/service"
)

// ArchiveHandler serves /v1/archives and the admin sweep trigger.
type ArchiveHandler struct {
	Archives *service.ArchiveService
	Sweeper  *service.Sweeper
}

func NewArchiveHandler(archives *service.ArchiveService, sweeper *service.Sweeper) *ArchiveHandler {
	return &ArchiveHandler{Archives: archives, Sweeper: sweeper}
}

// List handles GET /v1/archives?restored=&limit=.
func (h *ArchiveHandler) List(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	var restored *bool
	if raw := c.QueryParam("restored"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fail(c, service.NewValidationError(err, service.FieldError{Field: "restored", Error: "must be true or false"}))
		}
		restored = &b
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return fail(c, err)
	}
	list, err := h.Archives.List(c.Request().Context(), actor, restored, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"archives": list})
}

// Restore handles POST /v1/archives/:id/restore.
func (h *ArchiveHandler) Restore(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	sr, err := h.Archives.Restore(c.Request().Context(), actor, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, sr)
}

// Sweep handles POST /v1/admin/archives/sweep.  It reports ran=false when
// another instance holds the sweep lock.
func (h *ArchiveHandler) Sweep(c echo.Context) error {
	archived, ran, err := h.Sweeper.SweepOnce(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"archived": archived, "ran": ran})
}
