package middleware

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"

	"financeapi/internal/logger"
)

// Logger writes one JSON access log line per request to stdout.
func Logger() fiber.Handler {
	return LoggerWithWriter(os.Stdout, "info")
}

// LoggerWithWriter logs request_id, method, path, status and latency in milliseconds,
// plus trace_id when the request is traced.
// 5xx responses are logged at error level, 4xx at warn.
func LoggerWithWriter(w io.Writer, level string) fiber.Handler {
	log := logger.New(w, level)

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}
		rid, _ := c.Locals(RequestIDLocalKey).(string)

		lvl := slog.LevelInfo
		switch {
		case status >= fiber.StatusInternalServerError:
			lvl = slog.LevelError
		case status >= fiber.StatusBadRequest:
			lvl = slog.LevelWarn
		}
		attrs := []any{
			"request_id", rid,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", float64(time.Since(start).Microseconds()) / 1000,
			"ts", time.Now().UTC().Format(time.RFC3339Nano),
		}
		if sc := trace.SpanContextFromContext(c.UserContext()); sc.HasTraceID() {
			attrs = append(attrs, "trace_id", sc.TraceID().String())
		}
		log.Log(c.UserContext(), lvl, "http_request", attrs...)

		return err
	}
}
