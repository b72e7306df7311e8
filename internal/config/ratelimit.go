package config

import (
    "os"
    "strconv"
    "time"
)

// RateLimitConfig controls the fixed-window request counter applied to the
// API-key surface.  Counting is approximate under concurrent bursts; the
// window boundary is wherever the first request of a window lands.
type RateLimitConfig struct {
    Enabled bool
    Window  time.Duration // length of one counting window
    Max     int           // requests allowed per key per window
    Prefix  string        // Redis key namespace
}

// LoadRateLimitConfig reads environment variables to build a RateLimitConfig.
// Defaults allow 100 requests per hour per API key, matching the limits the
// AI consumers were onboarded with.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled: envBool("RATE_LIMIT_ENABLED", true),
        Window:  envDur("RATE_LIMIT_WINDOW", time.Hour),
        Max:     envNum("RATE_LIMIT_MAX", 100),
        Prefix:  envStr("RATE_LIMIT_PREFIX", "rl"),
    }
    if cfg.Max < 1 {
        cfg.Max = 1
    }
    if cfg.Window <= 0 {
        cfg.Window = time.Hour
    }
    return cfg
}

// StrictRateLimitConfig derives a tighter limiter for batch-style endpoints:
// 10 requests per 15 minutes under a separate key namespace.
func StrictRateLimitConfig(base RateLimitConfig) RateLimitConfig {
    return RateLimitConfig{
        Enabled: base.Enabled,
        Window:  envDur("RATE_LIMIT_STRICT_WINDOW", 15*time.Minute),
        Max:     envNum("RATE_LIMIT_STRICT_MAX", 10),
        Prefix:  base.Prefix + ":strict",
    }
}

func envStr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}

func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    switch v {
    case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
        return true
    case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
        return false
    }
    return d
}

func envNum(k string, d int) int {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if dur, err := time.ParseDuration(v); err == nil {
        return dur
    }
    return d
}
