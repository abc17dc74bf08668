// Package router wires the HTTP handlers onto echo routes.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-seating/internal/handler"
	"github.com/iliyamo/classroom-seating/internal/middleware"
	"github.com/iliyamo/classroom-seating/internal/model"
)

// Handlers bundles everything RegisterAPI mounts.
type Handlers struct {
	Rooms       *handler.RoomHandler
	SubRooms    *handler.SubRoomHandler
	Assignments *handler.AssignmentHandler
	Proposals   *handler.ProposalHandler
	Archives    *handler.ArchiveHandler
	Me          *handler.MeHandler
}

// RegisterRoutes registers the unauthenticated endpoints: the health check
// and, when metrics is non-nil, the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, health handler.Pinger, metrics http.Handler) {
	e.GET("/healthz", handler.Health(health))
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
}

// RegisterAPI mounts the /v1 API.  Every route requires a valid token;
// role checks that depend only on the caller's role are done here, the
// rest (ownership, reviewer) in the services.
func RegisterAPI(e *echo.Echo, h Handlers, jwtSecret string, mw ...echo.MiddlewareFunc) {
	v1 := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	v1.Use(mw...)

	admin := middleware.RequireRole(model.RoleAdmin)
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleTeacher)
	delegates := middleware.RequireRole(model.RoleDelegate, model.RoleEcoDelegate)

	v1.GET("/rooms", h.Rooms.List)
	v1.GET("/rooms/:id", h.Rooms.Get)
	v1.POST("/rooms", h.Rooms.Create, admin)
	v1.PUT("/rooms/:id", h.Rooms.Update, admin)

	v1.POST("/subrooms", h.SubRooms.Create, staff)
	v1.GET("/subrooms", h.SubRooms.List)
	v1.GET("/subrooms/:id", h.SubRooms.Get)
	v1.GET("/subrooms/:id/layout", h.SubRooms.Layout)
	v1.POST("/subrooms/:id/archive", h.SubRooms.Archive, staff)

	as := v1.Group("/subrooms/:id/assignments")
	as.GET("", h.Assignments.List)
	as.PUT("", h.Assignments.Replace, staff)
	as.POST("/place", h.Assignments.Place, staff)
	as.POST("/swap", h.Assignments.Swap, staff)
	as.POST("/unplace", h.Assignments.Unplace, staff)
	as.POST("/strategy", h.Assignments.Strategy, staff)
	as.DELETE("/:seat", h.Assignments.Clear, staff)

	v1.POST("/proposals", h.Proposals.Create, delegates)
	v1.GET("/proposals", h.Proposals.List)
	v1.GET("/proposals/:id", h.Proposals.Get)
	v1.PUT("/proposals/:id", h.Proposals.Update, delegates)
	v1.POST("/proposals/:id/submit", h.Proposals.Submit, delegates)
	v1.POST("/proposals/:id/approve", h.Proposals.Approve, staff)
	v1.POST("/proposals/:id/reject", h.Proposals.Reject, staff)

	v1.GET("/archives", h.Archives.List, staff)
	v1.POST("/archives/:id/restore", h.Archives.Restore, staff)
	v1.POST("/admin/archives/sweep", h.Archives.Sweep, admin)

	v1.GET("/me/preferences", h.Me.Preferences)
	v1.PUT("/me/preferences", h.Me.SavePreferences)
	v1.GET("/me/notifications", h.Me.Notifications)
}
