package middleware

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
)

// RequireRole returns middleware enforcing that the authenticated admin
// holds one of the given roles.  The 403 body echoes the required and the
// actual role so a misconfigured client can diagnose itself without
// guessing.  Assumes AdminAuth ran earlier in the chain.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role := AdminRole(c)
            if role == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
            }
            if !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{
                    "error":         "forbidden",
                    "required_role": strings.Join(roles, " or "),
                    "current_role":  role,
                })
            }
            return next(c)
        }
    }
}
