package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"financeapi/internal/logger"
)

const (
	// RequestIDHeader is the standard header name used to propagate request IDs.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the key used to store the request ID in Fiber's context locals.
	RequestIDLocalKey = "request_id"
)

// RequestID ensures every request has an id. An incoming X-Request-ID is reused,
// otherwise a UUID is generated. The id is stored in locals, echoed in the response
// header, and attached to the request-scoped logger in the user context.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)

		ctx := c.UserContext()
		c.SetUserContext(logger.ToContext(ctx, logger.FromContext(ctx).With("request_id", id)))

		return c.Next()
	}
}
