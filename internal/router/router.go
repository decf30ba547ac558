package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // echo provides the router and middleware types

	"github.com/iliyamo/production-planner/internal/handler" // handler holds the endpoint implementations
)

// Middlewares holds the optional Redis-backed middleware shared by the
// route groups.  Nil entries are skipped.
type Middlewares struct {
	RateLimit echo.MiddlewareFunc // token bucket on sync endpoints
	Purge     echo.MiddlewareFunc // drops cached call sheets after writes
	Cache     echo.MiddlewareFunc // caches call sheet responses
}

func (m Middlewares) writes() []echo.MiddlewareFunc {
	return nonNil(m.RateLimit, m.Purge)
}

func nonNil(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAll mounts every API route group.
func RegisterAll(e *echo.Echo, h *handler.ProductionHandler, jwtSecret string, mw Middlewares) {
	RegisterRoutes(e)                      // public health check
	RegisterSchedule(e, h, jwtSecret, mw)  // shot and scene schedule sync
	RegisterBudget(e, h, jwtSecret, mw)    // budget links and scene budgets
	RegisterCallSheet(e, h, jwtSecret, mw) // cached call sheets
}
