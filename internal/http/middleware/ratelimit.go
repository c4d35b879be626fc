package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// RateLimit throttles all requests through one token bucket of rps tokens per second
// and the given burst. rps <= 0 disables it.
func RateLimit(rps float64, burst int) fiber.Handler {
	if rps <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	retryAfter := strconv.Itoa(int(1/rps) + 1)

	return func(c *fiber.Ctx) error {
		if !limiter.Allow() {
			c.Set(fiber.HeaderRetryAfter, retryAfter)
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}
