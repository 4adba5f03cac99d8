package config

import "time"

// CacheConfig controls the Redis cache of generated slot schedules.
// When Enabled is false or no Redis client is configured, schedules are
// generated on every request.
type CacheConfig struct {
    Enabled bool
    TTL     time.Duration
    Prefix  string
}

// LoadCacheConfig reads CACHE_* variables.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled: envBool("CACHE_ENABLED", true),
        TTL:     envDur("CACHE_TTL", 10*time.Minute),
        Prefix:  envStr("CACHE_PREFIX", "slots"),
    }
}
