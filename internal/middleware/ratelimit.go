package middleware

import (
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/purefire/storefront-api/internal/config"
    "github.com/purefire/storefront-api/internal/utils"
)

// NewFixedWindow returns middleware implementing a fixed-window request
// counter in Redis (INCR + EXPIRE on first hit).  The window starts when
// the first request of a period lands, so counting is approximate under
// concurrent bursts; that is the documented contract for this surface.
// Requests are keyed by API key when present, caller IP otherwise.  When
// Redis is unavailable the middleware fails open.
func NewFixedWindow(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := cfg.Prefix + ":" + rateKey(c)
            ctx := c.Request().Context()

            count, err := rdb.Incr(ctx, key).Result()
            if err != nil {
                // Redis down: serve the request rather than block the surface.
                return next(c)
            }
            if count == 1 {
                rdb.Expire(ctx, key, cfg.Window)
            }

            remaining := int64(cfg.Max) - count
            if remaining < 0 {
                remaining = 0
            }
            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

            if count > int64(cfg.Max) {
                ttl, err := rdb.TTL(ctx, key).Result()
                if err != nil || ttl < 0 {
                    ttl = cfg.Window
                }
                secs := int(ttl / time.Second)
                if secs < 1 {
                    secs = 1
                }
                c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "error":       "too_many_requests",
                    "retry_after": secs,
                })
            }
            return next(c)
        }
    }
}

// rateKey identifies the caller: the API key when authenticated, otherwise
// the remote IP.
func rateKey(c echo.Context) string {
    if secret := c.Request().Header.Get("X-API-Key"); secret != "" {
        // Hashed so plain secrets never appear in Redis.
        return "key:" + utils.HashToken(secret)
    }
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    return "ip:" + ip
}
