package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/production-planner/internal/handler"
	"github.com/iliyamo/production-planner/internal/middleware"
)

// RegisterSchedule registers the schedule synchronization endpoints under
// /v1.  All routes require a valid JWT and the owner or admin role.
func RegisterSchedule(e *echo.Echo, h *handler.ProductionHandler, jwtSecret string, mw Middlewares) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleOwner, middleware.RoleAdmin),
	)
	writes := mw.writes()

	// ---- Shots ----
	g.POST("/shots/:id/schedule", h.SyncShot, writes...)
	g.DELETE("/shots/:id/schedule", h.ClearShot, writes...)

	// ---- Scenes ----
	g.POST("/scenes/:id/schedule", h.SyncScene, writes...)
	g.DELETE("/scenes/:id/schedule", h.ClearScene, writes...)

	// Read-only check, no purge needed.
	g.POST("/shooting-days/:id/conflicts", h.FindConflicts, nonNil(mw.RateLimit)...)
}
