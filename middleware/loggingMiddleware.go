package middleware

import (
	"time"

	"github.com/labstack/echo"
	"go.uber.org/zap"
)

// RequestLogger logs one structured line per handled request.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger.Info("http: request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Duration("took", time.Since(start)))
			return nil
		}
	}
}
