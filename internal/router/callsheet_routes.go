package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/production-planner/internal/handler"
	"github.com/iliyamo/production-planner/internal/middleware"
)

// RegisterCallSheet registers the read-only call sheet endpoint.  Any
// authenticated role may read it.
func RegisterCallSheet(e *echo.Echo, h *handler.ProductionHandler, jwtSecret string, mw Middlewares) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleOwner, middleware.RoleAdmin, middleware.RoleCrew),
	)
	g.GET("/shooting-days/:id/call-sheet", h.GetCallSheet, nonNil(mw.Cache)...)
}
