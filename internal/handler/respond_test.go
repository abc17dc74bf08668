package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/classroom-seating/internal/seating"
	"github.com/iliyamo/classroom-seating/internal/service"
	"github.com/iliyamo/classroom-seating/internal/store"
)

func TestFailStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errUnauthenticated, http.StatusUnauthorized},
		{service.NewValidationError(nil, service.FieldError{Field: "name"}), http.StatusBadRequest},
		{fmt.Errorf("place: %w", seating.ErrSeatOutOfRange), http.StatusBadRequest},
		{seating.ErrConfirmationRequired, http.StatusPreconditionRequired},
		{fmt.Errorf("%w: not yours", service.ErrForbidden), http.StatusForbidden},
		{&service.ConflictError{Reason: service.ReasonNotPending}, http.StatusConflict},
		{store.ErrStaleRevision, http.StatusConflict},
		{fmt.Errorf("room 3: %w", store.ErrNotFound), http.StatusNotFound},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		_ = fail(c, tc.err)
		assert.Equal(t, tc.want, rec.Code, tc.err.Error())
	}
}
