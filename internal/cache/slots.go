// Package cache keeps generated slot schedules in Redis.  Schedules are
// a pure function of (rules, facility, date), so entries never need
// invalidating; a rules change produces new keys through the version.
package cache

import (
    "context"
    "encoding/json"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/jrwishart93/james-square-booking/internal/config"
    "github.com/jrwishart93/james-square-booking/internal/model"
    "github.com/jrwishart93/james-square-booking/internal/schedule"
)

// SlotCache is safe to use with a nil Redis client; every lookup then
// misses and stores are dropped.
type SlotCache struct {
    rdb     *redis.Client
    ttl     time.Duration
    prefix  string
    version string
}

// NewSlotCache returns a cache keyed under cfg.Prefix and version
// (normally schedule.Rules.Fingerprint).
func NewSlotCache(cfg config.CacheConfig, rdb *redis.Client, version string) *SlotCache {
    if !cfg.Enabled {
        rdb = nil
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 10 * time.Minute
    }
    return &SlotCache{rdb: rdb, ttl: ttl, prefix: cfg.Prefix, version: version}
}

func (c *SlotCache) key(f model.Facility, date string) string {
    return strings.Join([]string{c.prefix, c.version, strings.ToLower(string(f)), date}, ":")
}

// Get returns the cached schedule, if any.  Redis errors count as a miss.
func (c *SlotCache) Get(ctx context.Context, f model.Facility, date string) ([]schedule.Slot, bool) {
    if c.rdb == nil {
        return nil, false
    }
    raw, err := c.rdb.Get(ctx, c.key(f, date)).Bytes()
    if err != nil {
        return nil, false
    }
    var slots []schedule.Slot
    if err := json.Unmarshal(raw, &slots); err != nil {
        return nil, false
    }
    return slots, true
}

// Set stores a schedule.  Failures are ignored.
func (c *SlotCache) Set(ctx context.Context, f model.Facility, date string, slots []schedule.Slot) {
    if c.rdb == nil {
        return
    }
    raw, err := json.Marshal(slots)
    if err != nil {
        return
    }
    _ = c.rdb.SetEx(ctx, c.key(f, date), raw, c.ttl).Err()
}

// GetOrGenerate returns the cached schedule or calls gen and caches its
// result.  hit reports which path was taken.
func (c *SlotCache) GetOrGenerate(ctx context.Context, f model.Facility, date string, gen func() []schedule.Slot) (slots []schedule.Slot, hit bool) {
    if slots, ok := c.Get(ctx, f, date); ok {
        return slots, true
    }
    slots = gen()
    c.Set(ctx, f, date, slots)
    return slots, false
}
