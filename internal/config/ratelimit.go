package config

import "time"

// RateLimitConfig bounds how many booking actions one occupant may send
// per window.
type RateLimitConfig struct {
    Enabled bool
    Limit   int
    Window  time.Duration
    Prefix  string
}

func LoadRateLimitConfig() RateLimitConfig {
    c := RateLimitConfig{
        Enabled: envBool("RATE_LIMIT_ENABLED", true),
        Limit:   envInt("RATE_LIMIT_LIMIT", 30),
        Window:  envDur("RATE_LIMIT_WINDOW", time.Minute),
        Prefix:  envStr("RATE_LIMIT_PREFIX", "rl"),
    }
    if c.Limit < 1 { c.Limit = 1 }
    if c.Window < time.Second { c.Window = time.Second }
    return c
}
