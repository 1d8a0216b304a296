// Package middleware provides Fiber middleware for request context, logging,
// tracing, metrics and authentication.
package middleware

import (
	"log/slog"
	"time"

	"talkshalk/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// ContextMiddleware copies the request ID, user ID and trace ID from Fiber
// locals into the request context so the context-aware logger picks them up.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ctx = observability.WithRequestID(ctx, rid)
		}
		if uid, ok := c.Locals("userID").(uint); ok {
			ctx = observability.WithUserID(ctx, uid)
		}
		if tid, ok := c.Locals("traceID").(string); ok && tid != "" {
			ctx = observability.WithTraceID(ctx, tid)
		}

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// StructuredLogger returns a Fiber middleware for logging requests using slog
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		latency := time.Since(start)

		fields := []any{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", latency),
			slog.String("user_agent", c.Get("User-Agent")),
		}

		if err != nil {
			fields = append(fields, slog.String("error", err.Error()))
			observability.Logger.ErrorContext(c.UserContext(), "request failed", fields...)
		} else {
			observability.Logger.InfoContext(c.UserContext(), "request processed", fields...)
		}

		return err
	}
}
