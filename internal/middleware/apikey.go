package middleware

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/purefire/storefront-api/internal/model"
    "github.com/purefire/storefront-api/internal/repository"
)

const ctxAPIKey = "api_key"

// APIKeyAuth validates the X-API-Key header against the key store and
// injects the resolved key into the request context.  Missing, unknown,
// revoked and expired keys are all rejected with the same 401 so callers
// learn nothing about which case they hit.
func APIKeyAuth(keys *repository.APIKeyRepo) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            secret := c.Request().Header.Get("X-API-Key")
            if secret == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "API key required"})
            }
            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()
            key, err := keys.Verify(ctx, secret)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired API key"})
            }
            c.Set(ctxAPIKey, &key)
            return next(c)
        }
    }
}

// RequirePermission enforces that the authenticated API key grants the
// given permission, either exactly or via the "*" wildcard.  The 403 body
// echoes required vs granted for diagnosability.
func RequirePermission(perm string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := APIKeyFrom(c)
            if key == nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "API key required"})
            }
            if !key.HasPermission(perm) {
                return c.JSON(http.StatusForbidden, echo.Map{
                    "error":    "insufficient permissions",
                    "required": perm,
                    "granted":  key.Permissions,
                })
            }
            return next(c)
        }
    }
}

// APIKeyFrom returns the key set by APIKeyAuth, or nil.
func APIKeyFrom(c echo.Context) *model.APIKey {
    if v, ok := c.Get(ctxAPIKey).(*model.APIKey); ok {
        return v
    }
    return nil
}
