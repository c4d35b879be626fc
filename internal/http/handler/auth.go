package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"financeapi/internal/auth"
	"financeapi/internal/http/middleware"
)

// CookieOptions describes the session cookie written on login.
type CookieOptions struct {
	Name   string
	Secure bool
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Register godoc
// @Summary Register a user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body auth.RegisterInput true "Registration"
// @Success 201 {object} map[string]bool
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /api/auth/register [post]
func Register(svc auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in auth.RegisterInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}
		if _, err := svc.Register(c.UserContext(), in); err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
	}
}

// Login godoc
// @Summary Log in
// @Description Accepts an email or username. Sets the session cookie and returns the token.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} auth.Session
// @Failure 401 {object} errorPayload
// @Router /api/auth/login [post]
func Login(svc auth.Service, cookie CookieOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in loginRequest
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}
		if in.Login == "" || in.Password == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "login and password are required")
		}
		sess, err := svc.Authenticate(c.UserContext(), in.Login, in.Password)
		if err != nil {
			return respondError(c, err)
		}
		c.Cookie(&fiber.Cookie{
			Name:     cookie.Name,
			Value:    sess.Token,
			Path:     "/",
			Expires:  sess.ExpiresAt,
			HTTPOnly: true,
			Secure:   cookie.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.Status(fiber.StatusOK).JSON(sess)
	}
}

// Session returns the user behind the current session.
func Session(svc auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := svc.CurrentUser(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": user})
	}
}

// Logout expires the session cookie. Tokens are stateless, so a copied bearer
// token stays valid until it expires.
func Logout(cookie CookieOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     cookie.Name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HTTPOnly: true,
			Secure:   cookie.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.SendStatus(fiber.StatusNoContent)
	}
}
