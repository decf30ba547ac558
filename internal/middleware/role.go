package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Roles carried in the JWT role claim.
const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
	RoleCrew  = "crew"
)

// RequireRole returns a middleware that aborts with 403 Forbidden unless the
// role JWTAuth stored in the context is one of roles.  Comparison ignores
// case so tokens minted with "OWNER" still pass.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[strings.ToLower(r)] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[strings.ToLower(role)] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
