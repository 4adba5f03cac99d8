package config

// Redis backs the slot-schedule cache and the booking rate limiter.  Both
// degrade to pass-through when the server cannot be reached at startup.

import (
    "context"
    "crypto/tls"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient builds a client from REDIS_ADDR (or REDIS_HOST and
// REDIS_PORT), REDIS_PASSWORD, REDIS_DB and REDIS_TLS.  It returns nil
// when the server does not answer a ping within two seconds.
func NewRedisClient() *redis.Client {
    addr := os.Getenv("REDIS_ADDR")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); addr == "" && host != "" && port != "" {
        addr = host + ":" + port
    }
    if addr == "" {
        addr = "localhost:6379"
    }
    db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
    var tlsConf *tls.Config
    if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
        tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      addr,
        Password:  os.Getenv("REDIS_PASSWORD"),
        DB:        db,
        TLSConfig: tlsConf,
    })
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
