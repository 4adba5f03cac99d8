package middleware

import (
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/jrwishart93/james-square-booking/internal/config"
)

// windowScript counts one hit in the current window and returns
// {hits, milliseconds until the window resets}.
var windowScript = redis.NewScript(`
    local hits = redis.call('INCR', KEYS[1])
    if hits == 1 then
        redis.call('PEXPIRE', KEYS[1], ARGV[1])
    end
    local ttl = redis.call('PTTL', KEYS[1])
    if ttl < 0 then
        redis.call('PEXPIRE', KEYS[1], ARGV[1])
        ttl = tonumber(ARGV[1])
    end
    return { hits, ttl }
`)

// NewFixedWindow limits each occupant to cfg.Limit requests per
// cfg.Window.  Guests share a per-IP bucket.  Redis failures let the
// request through.
func NewFixedWindow(cfg config.RateLimitConfig, rdb *redis.Client, log *zap.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    if log == nil {
        log = zap.NewNop()
    }
    windowMs := cfg.Window.Milliseconds()

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := rateKey(cfg, c)
            vals, err := windowScript.Run(c.Request().Context(), rdb, []string{key}, windowMs).Int64Slice()
            if err != nil || len(vals) != 2 {
                log.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
                return next(c)
            }
            hits, ttlMs := vals[0], vals[1]

            remaining := int64(cfg.Limit) - hits
            if remaining < 0 {
                remaining = 0
            }
            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

            if hits > int64(cfg.Limit) {
                secs := int((time.Duration(ttlMs)*time.Millisecond + time.Second - 1) / time.Second)
                h.Set("Retry-After", strconv.Itoa(secs))
                log.Debug("rate limited", zap.String("key", key), zap.Int64("hits", hits))
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "code":        "rate_limited",
                    "error":       "too many requests, slow down",
                    "retry_after": secs,
                })
            }
            return next(c)
        }
    }
}

func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
    uid := userID(c)
    if uid == "guest" {
        ip := c.RealIP()
        if ip == "" {
            ip = "unknown"
        }
        return strings.Join([]string{cfg.Prefix, "ip", ip}, ":")
    }
    return strings.Join([]string{cfg.Prefix, "user", uid}, ":")
}
