package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/production-planner/internal/handler"
	"github.com/iliyamo/production-planner/internal/middleware"
)

// RegisterBudget registers the budget linkage and scene budget endpoints.
// All routes require a valid JWT and the owner or admin role.
func RegisterBudget(e *echo.Echo, h *handler.ProductionHandler, jwtSecret string, mw Middlewares) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleOwner, middleware.RoleAdmin),
	)
	writes := mw.writes()

	g.POST("/budget/links/:resource/:id/sync", h.SyncLinkedItems, writes...)
	g.DELETE("/budget/links/:resource/:id", h.UnlinkItems, writes...)
	g.POST("/budget/items/:id/sync-source", h.SyncSourceFromItem, writes...)
	g.POST("/scenes/:id/budget", h.SyncSceneBudget, writes...)
}
