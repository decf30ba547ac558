package middleware

import "github.com/labstack/echo/v4"

// UserID returns the subject JWTAuth stored in the context, or "anon" when
// the request is not authenticated.
func UserID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok && v != "" {
		return v
	}
	return "anon"
}
