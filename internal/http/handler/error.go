package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"financeapi/internal/auth"
	"financeapi/internal/http/middleware"
	"financeapi/internal/ledger"
	"financeapi/internal/logger"
	"financeapi/internal/marketdata"
	"financeapi/internal/repository"
	"financeapi/internal/service"
	"financeapi/internal/validation"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return v
	}
	return ""
}

// writeError writes a standardized JSON error response. message must be safe to show.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// respondError maps a domain error to its HTTP status and code. Unrecognized errors
// are logged and answered with a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return c.Status(fiber.StatusBadRequest).JSON(errorPayload{
			RequestID: requestIDFromCtx(c),
			Error: errorEnvelope{
				Code:    "VALIDATION_FAILED",
				Message: "validation failed",
				Fields:  verrs,
			},
		})
	}

	switch {
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "ID_REQUIRED", "id is required")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "record not found")
	case errors.Is(err, auth.ErrDuplicateUser):
		return writeError(c, fiber.StatusConflict, "CONFLICT", "email or username already registered")
	case errors.Is(err, auth.ErrInvalidCredentials):
		return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
	case errors.Is(err, auth.ErrInvalidToken):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "session is invalid or expired")
	case errors.Is(err, ledger.ErrIncompleteTransfer), errors.Is(err, ledger.ErrSameAccount), errors.Is(err, ledger.ErrUnknownAccount):
		return writeError(c, fiber.StatusBadRequest, "INVALID_MOVEMENT", err.Error())
	case errors.Is(err, marketdata.ErrInvalidSymbol):
		return writeError(c, fiber.StatusBadRequest, "INVALID_SYMBOL", "invalid symbol")
	case errors.Is(err, marketdata.ErrQuoteUnavailable):
		return writeError(c, fiber.StatusBadGateway, "QUOTE_UNAVAILABLE", "quote unavailable")
	case errors.Is(err, service.ErrStorageUnavailable):
		return writeError(c, fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "object storage is not configured")
	case errors.Is(err, repository.ErrStoreUnavailable):
		return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return writeError(c, fiber.StatusGatewayTimeout, "TIMEOUT", "request timed out")
	}

	logger.FromContext(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			return respondError(c, err)
		}

		switch fe.Code {
		case fiber.StatusBadRequest:
			return writeError(c, fe.Code, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, fe.Code, "UNAUTHORIZED", fe.Message)
		case fiber.StatusNotFound:
			return writeError(c, fe.Code, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, fe.Code, "PAYLOAD_TOO_LARGE", "request body too large")
		case fiber.StatusTooManyRequests:
			return writeError(c, fe.Code, "RATE_LIMITED", "too many requests")
		case fiber.StatusServiceUnavailable:
			return writeError(c, fe.Code, "SERVICE_UNAVAILABLE", "service unavailable")
		default:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
	}
}
