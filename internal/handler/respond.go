package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-seating/internal/middleware"
	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/seating"
	"github.com/iliyamo/classroom-seating/internal/service"
	"github.com/iliyamo/classroom-seating/internal/store"
)

var errUnauthenticated = errors.New("unauthenticated")

// actorOf returns the caller set by the JWT middleware.
func actorOf(c echo.Context) (model.Actor, error) {
	a, ok := middleware.Actor(c)
	if !ok {
		return model.Actor{}, errUnauthenticated
	}
	return a, nil
}

func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, service.NewValidationError(err, service.FieldError{Field: name, Error: "must be a positive integer"})
	}
	return id, nil
}

func queryUint(c echo.Context, name string) (uint64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, service.NewValidationError(err, service.FieldError{Field: name, Error: "must be a non-negative integer"})
	}
	return n, nil
}

func queryInt(c echo.Context, name string) (int, error) {
	n, err := queryUint(c, name)
	return int(n), err
}

// bind decodes the request body; a decoding failure is a 400.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return service.NewValidationError(err, service.FieldError{Field: "body", Error: "invalid request body"})
	}
	return nil
}

// fail writes err with the status its kind maps to.
func fail(c echo.Context, err error) error {
	var (
		ve *service.ValidationError
		ce *service.ConflictError
	)
	switch {
	case errors.Is(err, errUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": ve.Fields})
	case errors.Is(err, seating.ErrConfirmationRequired):
		return c.JSON(http.StatusPreconditionRequired, echo.Map{"error": "confirmation_required", "message": err.Error()})
	case errors.Is(err, seating.ErrSeatOutOfRange),
		errors.Is(err, seating.ErrDuplicateSeat),
		errors.Is(err, seating.ErrDuplicateStudent),
		errors.Is(err, seating.ErrInvalidStudent),
		errors.Is(err, seating.ErrInvalidTopology),
		errors.Is(err, seating.ErrUnknownStrategy):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_assignment", "message": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden", "message": err.Error()})
	case errors.As(err, &ce):
		return c.JSON(http.StatusConflict, echo.Map{"error": ce.Reason, "message": ce.Message})
	case errors.Is(err, store.ErrStaleRevision):
		return c.JSON(http.StatusConflict, echo.Map{"error": service.ReasonStaleRevision, "message": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, store.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict", "message": err.Error()})
	}
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
