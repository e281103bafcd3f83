package middleware

import (
	"time"

	"cms-search/logger"

	"github.com/labstack/echo/v4"
)

// LoggingMiddleware writes one access log line per request.
func LoggingMiddleware(contextLogger *logger.ContextLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			ctx := logger.WithOperation(req.Context(), req.Method+" "+c.Path())
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				// Let echo render the error so the logged status is final.
				c.Error(err)
			}

			res := c.Response()
			log := contextLogger.WithContext(ctx).With(
				"log_type", "access",
				"method", req.Method,
				"path", req.URL.Path,
				"status_code", res.Status,
				"response_size", res.Size,
				"ip_address", c.RealIP(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			if res.Status >= 500 {
				log.Error("request completed", "error", err)
			} else {
				log.Info("request completed")
			}
			return nil
		}
	}
}
