package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/production-planner/internal/logging"
)

// RequestLogger logs one line per request with its route, status and
// latency.  Server errors log at error level.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	log := logging.WithComponent(logger, "http")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			status := c.Response().Status
			fields := []zap.Field{
				zap.String("method", c.Request().Method),
				zap.String("route", c.Path()),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("user_id", UserID(c)),
			}
			if status >= 500 {
				log.Error("request failed", append(fields, zap.Error(err))...)
			} else {
				log.Info("request", fields...)
			}
			return nil
		}
	}
}
