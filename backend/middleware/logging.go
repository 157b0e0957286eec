package middleware

import (
	"strconv"
	"time"

	"codetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// LoggingMiddleware logs every request and feeds the prometheus request
// counters. The route pattern is used as the path label to keep metric
// cardinality bounded.
func LoggingMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			}
		}
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		duration := time.Since(start).Seconds()

		utils.ReqCount.WithLabelValues(
			c.Method(),
			path,
			strconv.Itoa(status),
		).Inc()

		utils.ReqDuration.WithLabelValues(
			c.Method(),
			path,
		).Observe(duration)

		if status >= 400 {
			class := "client_error"
			if status >= 500 {
				class = "server_error"
			}
			utils.ErrorCount.WithLabelValues(path, class).Inc()
		}

		logger.Info("http_request",
			zap.String("method", c.Method()),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Float64("duration", duration),
			zap.String("client_ip", c.IP()),
		)

		return err
	}
}
