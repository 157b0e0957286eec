package middleware

import (
	"fmt"
	"time"

	"codetrack/backend/cache"
	"codetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RateLimitMiddleware limits requests per client IP using a redis counter.
// With redis disabled it passes everything through.
func RateLimitMiddleware(maxRequests int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !cache.Enabled() {
			return c.Next()
		}

		key := fmt.Sprintf("rate_limit:%s", c.IP())
		count, err := cache.IncrementCounter(key, window)
		if err != nil {
			utils.Logger.Error("rate_limit_error", zap.Error(err))
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequests))
		remaining := maxRequests - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if count > int64(maxRequests) {
			utils.Logger.Warn("rate_limit_exceeded",
				zap.String("ip", c.IP()),
				zap.Int64("count", count),
			)
			return utils.Error(c, fiber.StatusTooManyRequests,
				fiber.NewError(fiber.StatusTooManyRequests, "Too many requests"))
		}

		return c.Next()
	}
}
