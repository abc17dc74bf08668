package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-seating/internal/auth"
)

// JWTAuth validates the Bearer access token and stores the caller in the
// context: the model.Actor under "actor", plus "user_id" (uint64) and
// "role" (string) for handlers that only need one of them.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			actor, err := auth.Parse(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(actorKey, actor)
			c.Set(userIDKey, actor.ID)
			c.Set(roleKey, actor.Role)
			return next(c)
		}
	}
}
