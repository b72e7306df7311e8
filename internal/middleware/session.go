package middleware

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/purefire/storefront-api/internal/repository"
    "github.com/purefire/storefront-api/internal/utils"
)

const (
    ctxAccountID    = "account_id"
    ctxAccountEmail = "account_email"
)

// Authenticate validates a storefront session token: signature first, then
// the session row must still exist and be unexpired (logout deletes it).
func Authenticate(secret string, sessions *repository.SessionRepo) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            claims, ok := resolveSession(c, secret, sessions)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
            }
            c.Set(ctxAccountID, claims.UserID)
            c.Set(ctxAccountEmail, claims.Email)
            return next(c)
        }
    }
}

// OptionalAuth attaches the account identity when a valid session token is
// present and silently continues as a guest otherwise.  Used on endpoints
// like order creation that serve both guests and logged-in customers.
func OptionalAuth(secret string, sessions *repository.SessionRepo) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if claims, ok := resolveSession(c, secret, sessions); ok {
                c.Set(ctxAccountID, claims.UserID)
                c.Set(ctxAccountEmail, claims.Email)
            }
            return next(c)
        }
    }
}

func resolveSession(c echo.Context, secret string, sessions *repository.SessionRepo) (utils.Claims, bool) {
    auth := c.Request().Header.Get("Authorization")
    if !strings.HasPrefix(auth, "Bearer ") {
        return utils.Claims{}, false
    }
    raw := strings.TrimPrefix(auth, "Bearer ")
    claims, err := utils.ParseToken(secret, raw, utils.TokenTypeSession)
    if err != nil {
        return utils.Claims{}, false
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()
    accountID, err := sessions.Validate(ctx, utils.HashToken(raw))
    if err != nil || accountID != claims.UserID {
        return utils.Claims{}, false
    }
    return claims, true
}

// AccountID returns the authenticated account id, or 0 for guests.
func AccountID(c echo.Context) uint64 {
    if v, ok := c.Get(ctxAccountID).(uint64); ok {
        return v
    }
    return 0
}

// AccountEmail returns the authenticated account email, or "" for guests.
func AccountEmail(c echo.Context) string {
    if v, ok := c.Get(ctxAccountEmail).(string); ok {
        return v
    }
    return ""
}
