package middleware

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/snapcal/snapcal/server/internal/observability"
)

const requestIDHeader = "X-Request-Id"

// RequestID attaches a request-scoped logging context to every request and
// echoes the request ID back in the response headers.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			reqCtx := observability.NewRequestContextWithID(slog.Default(), requestID, c.Request().Method+" "+c.Path())
			ctx := observability.WithRequestContext(c.Request().Context(), reqCtx)
			c.SetRequest(c.Request().WithContext(ctx))

			c.Response().Header().Set(requestIDHeader, requestID)
			return next(c)
		}
	}
}
