package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/service"
)

// MeHandler serves the caller's own settings and inbox under /v1/me.
type MeHandler struct {
	Account *service.AccountService
}

func NewMeHandler(account *service.AccountService) *MeHandler {
	return &MeHandler{Account: account}
}

func (h *MeHandler) Preferences(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	p, err := h.Account.Preferences(c.Request().Context(), actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *MeHandler) SavePreferences(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	var p model.Preferences
	if err := bind(c, &p); err != nil {
		return fail(c, err)
	}
	saved, err := h.Account.SavePreferences(c.Request().Context(), actor, p)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, saved)
}

// Notifications handles GET /v1/me/notifications?limit=.
func (h *MeHandler) Notifications(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return fail(c, err)
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return fail(c, err)
	}
	list, err := h.Account.Notifications(c.Request().Context(), actor, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": list})
}
