package apikey

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/eleven-am/pose-coach/internal/shared"
	"github.com/labstack/echo/v4"
)

const contextKey = "api_key"

// Middleware rejects requests without a valid bearer key carrying role.
func Middleware(store *Store, role Role, logger *slog.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "apikey")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				return shared.Unauthorized("missing_key", "API key required")
			}

			key, err := store.Validate(c.Request().Context(), strings.TrimPrefix(authHeader, "Bearer "))
			switch {
			case errors.Is(err, shared.ErrUnauthorized):
				return shared.Unauthorized("key_expired", "API key expired")
			case errors.Is(err, shared.ErrNotFound):
				return shared.Unauthorized("invalid_key", "invalid API key")
			case err != nil:
				logger.Error("failed to validate API key", "error", err)
				return shared.InternalError("auth_failed", "failed to validate API key")
			}

			if !key.Allows(role) {
				return shared.Forbidden("insufficient_role", "API key lacks the "+string(role)+" role")
			}

			c.Set(contextKey, key)
			return next(c)
		}
	}
}

// FromContext returns the key attached by Middleware, if any.
func FromContext(c echo.Context) (*APIKey, bool) {
	key, ok := c.Get(contextKey).(*APIKey)
	return key, ok
}
