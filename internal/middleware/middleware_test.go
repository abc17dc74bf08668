package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seating/internal/auth"
	"github.com/iliyamo/classroom-seating/internal/config"
	"github.com/iliyamo/classroom-seating/internal/model"
)

const secret = "test-secret"

func protected(roles ...string) *echo.Echo {
	e := echo.New()
	g := e.Group("", JWTAuth(secret))
	if len(roles) > 0 {
		g.Use(RequireRole(roles...))
	}
	g.GET("/whoami", func(c echo.Context) error {
		a, _ := Actor(c)
		return c.JSON(http.StatusOK, echo.Map{"id": a.ID, "role": a.Role, "user_id": c.Get("user_id")})
	})
	return e
}

func call(t *testing.T, e *echo.Echo, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, id uint64, role string) string {
	t.Helper()
	raw, _, err := auth.Issue(secret, model.Actor{ID: id, Role: role}, time.Hour)
	require.NoError(t, err)
	return raw
}

func TestJWTAuth(t *testing.T) {
	e := protected()

	rec := call(t, e, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, e, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, e, token(t, 7, model.RoleTeacher))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7,"role":"teacher","user_id":7}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	e := protected(model.RoleAdmin, model.RoleTeacher)

	assert.Equal(t, http.StatusOK, call(t, e, token(t, 1, model.RoleAdmin)).Code)
	assert.Equal(t, http.StatusForbidden, call(t, e, token(t, 20, model.RoleDelegate)).Code)
}

func TestRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/v1/sub-rooms/3/assignments", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.9")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/sub-rooms/:id/assignments")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user"}
	assert.Equal(t, "rl:ip:10.0.0.9:user:anon", rateKey(cfg, c))

	c.Set(actorKey, model.Actor{ID: 7, Role: model.RoleTeacher})
	cfg.KeyStrategy = ""
	assert.Equal(t, "rl:ip:10.0.0.9:user:7:route:PUT /v1/sub-rooms/:id/assignments", rateKey(cfg, c))
}

func TestParseBucketResult(t *testing.T) {
	res, err := parseBucketResult([]any{int64(0), int64(0), int64(1500)})
	require.NoError(t, err)
	assert.False(t, res.allowed)
	assert.Equal(t, 1500*time.Millisecond, res.retry)

	res, err = parseBucketResult([]any{int64(1), int64(59), int64(0)})
	require.NoError(t, err)
	assert.True(t, res.allowed)
	assert.Equal(t, int64(59), res.remaining)

	_, err = parseBucketResult("OK")
	require.Error(t, err)
}

func TestTokenBucketDisabled(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
