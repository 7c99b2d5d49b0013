package middleware

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// CheckRateLimit checks if a resource has exceeded its rate limit.
// Returns true if allowed, false if limit exceeded.
// Rate limiting is disabled when APP_ENV is "test" or "development" so
// dev workflows and the test suite are not throttled.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	switch env {
	case "test", "development":
		return true, nil
	}

	if rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	// INCR and set EXPIRE if new
	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		rdb.Expire(ctx, key, window)
	}
	if cnt > int64(limit) {
		return false, nil
	}
	return true, nil
}

// RateLimit returns a Fiber middleware enforcing limit requests per
// window for the named resource. It keys by authenticated userID when
// available, otherwise by remote IP. When Redis is unavailable the
// middleware fails open: interaction throttling is protection, not a
// correctness gate.
func RateLimit(rdb *redis.Client, resource string, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.IP()
		if uid, ok := c.Locals("userID").(uint); ok {
			id = fmt.Sprintf("u%d", uid)
		}

		allowed, err := CheckRateLimit(c.Context(), rdb, resource, id, limit, window)
		if err != nil {
			Logger.Warn("rate limit check failed, allowing request",
				"resource", resource, "error", err.Error())
			return c.Next()
		}
		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded, slow down",
			})
		}
		return c.Next()
	}
}
