package middleware // middleware provides reusable HTTP middleware for the API

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/purefire/storefront-api/internal/repository"
    "github.com/purefire/storefront-api/internal/utils"
)

// Context keys set by the auth middleware.  Handlers read the authenticated
// identity through the helpers below rather than touching the keys directly.
const (
    ctxAdminID    = "admin_id"
    ctxAdminEmail = "admin_email"
    ctxAdminRole  = "admin_role"
)

// AdminAuth returns middleware that validates a Bearer access token and
// injects the admin's identity into the request context.  Because access
// tokens are stateless and cannot be revoked before expiry, the middleware
// re-checks on every request that the account still exists and is active;
// deactivating an account therefore locks it out within one request, not
// one token lifetime.
func AdminAuth(secret string, users *repository.AdminUserRepo) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            claims, err := utils.ParseToken(secret, raw, utils.TokenTypeAccess)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
            }

            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()
            u, err := users.GetByID(ctx, claims.UserID)
            if err != nil || !u.IsActive {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "user not found or inactive"})
            }

            c.Set(ctxAdminID, u.ID)
            c.Set(ctxAdminEmail, u.Email)
            c.Set(ctxAdminRole, u.Role)
            return next(c)
        }
    }
}

// AdminID returns the authenticated admin's id, or 0 when unauthenticated.
func AdminID(c echo.Context) uint64 {
    if v, ok := c.Get(ctxAdminID).(uint64); ok {
        return v
    }
    return 0
}

// AdminEmail returns the authenticated admin's email.
func AdminEmail(c echo.Context) string {
    if v, ok := c.Get(ctxAdminEmail).(string); ok {
        return v
    }
    return ""
}

// AdminRole returns the authenticated admin's role.
func AdminRole(c echo.Context) string {
    if v, ok := c.Get(ctxAdminRole).(string); ok {
        return v
    }
    return ""
}
