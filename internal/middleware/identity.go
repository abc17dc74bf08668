package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-seating/internal/model"
)

// Context keys set by JWTAuth.
const (
	actorKey  = "actor"
	userIDKey = "user_id"
	roleKey   = "role"
)

// Actor returns the authenticated caller stored by JWTAuth.
func Actor(c echo.Context) (model.Actor, bool) {
	a, ok := c.Get(actorKey).(model.Actor)
	return a, ok
}

// userKey identifies the caller for rate limiting; unauthenticated
// requests share the "anon" bucket of their IP.
func userKey(c echo.Context) string {
	if a, ok := Actor(c); ok {
		return strconv.FormatUint(a.ID, 10)
	}
	return "anon"
}
