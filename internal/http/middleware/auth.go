package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"financeapi/internal/auth"
	"financeapi/internal/logger"
)

const (
	// UserIDLocalKey holds the authenticated user id.
	UserIDLocalKey = "user_id"
	// UsernameLocalKey holds the authenticated username.
	UsernameLocalKey = "username"
)

// TokenVerifier checks a session token.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RequireSession rejects requests without a valid session token. The token is read
// from the session cookie, or from an "Authorization: Bearer" header.
func RequireSession(v TokenVerifier, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookieName)
		if token == "" {
			if h := c.Get(fiber.HeaderAuthorization); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
				token = strings.TrimSpace(h[7:])
			}
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		claims, err := v.Verify(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired session")
		}

		c.Locals(UserIDLocalKey, claims.UserID())
		c.Locals(UsernameLocalKey, claims.Username)
		ctx := c.UserContext()
		c.SetUserContext(logger.ToContext(ctx, logger.FromContext(ctx).With("user_id", claims.UserID())))
		return c.Next()
	}
}

// UserID returns the id stored by RequireSession, or "".
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDLocalKey).(string)
	return id
}
