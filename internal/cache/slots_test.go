package cache

import (
    "context"
    "reflect"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/redis/go-redis/v9"

    "github.com/jrwishart93/james-square-booking/internal/config"
    "github.com/jrwishart93/james-square-booking/internal/model"
    "github.com/jrwishart93/james-square-booking/internal/schedule"
)

func TestGetOrGenerate(t *testing.T) {
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })

    cfg := config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "slots"}
    c := NewSlotCache(cfg, rdb, "v1")
    gen := schedule.NewGenerator(schedule.DefaultRules())
    date, _ := model.ParseDate("2026-02-03")

    calls := 0
    generate := func() []schedule.Slot { calls++; return gen.Generate(date, model.Pool) }

    first, hit := c.GetOrGenerate(context.Background(), model.Pool, "2026-02-03", generate)
    if hit || calls != 1 {
        t.Fatalf("first call hit=%v calls=%d", hit, calls)
    }
    second, hit := c.GetOrGenerate(context.Background(), model.Pool, "2026-02-03", generate)
    if !hit || calls != 1 {
        t.Fatalf("second call hit=%v calls=%d", hit, calls)
    }
    if !reflect.DeepEqual(first, second) {
        t.Errorf("cached schedule differs:\n%v\n%v", first, second)
    }
    if !mr.Exists("slots:v1:pool:2026-02-03") {
        t.Errorf("expected key missing; keys=%v", mr.Keys())
    }
    if ttl := mr.TTL("slots:v1:pool:2026-02-03"); ttl != time.Minute {
        t.Errorf("ttl = %s", ttl)
    }

    other := NewSlotCache(cfg, rdb, "v2")
    if _, ok := other.Get(context.Background(), model.Pool, "2026-02-03"); ok {
        t.Error("new rules version served an old entry")
    }
}

func TestDisabledCacheAlwaysMisses(t *testing.T) {
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })

    c := NewSlotCache(config.CacheConfig{Enabled: false, Prefix: "slots"}, rdb, "v1")
    c.Set(context.Background(), model.Gym, "2026-02-03", []schedule.Slot{{Start: "06:00"}})
    if _, ok := c.Get(context.Background(), model.Gym, "2026-02-03"); ok {
        t.Error("disabled cache returned a hit")
    }
    if len(mr.Keys()) != 0 {
        t.Errorf("disabled cache wrote keys %v", mr.Keys())
    }

    nilClient := NewSlotCache(config.CacheConfig{Enabled: true}, nil, "v1")
    if _, hit := nilClient.GetOrGenerate(context.Background(), model.Gym, "2026-02-03", func() []schedule.Slot { return nil }); hit {
        t.Error("nil client returned a hit")
    }
}
