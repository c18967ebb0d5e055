package config

// Redis backs the distributed rate limiter. Connection parameters come from
// the Config struct rather than ambient environment lookups. When no address
// is configured or the server is unreachable at startup, the constructor
// returns nil and callers degrade by disabling rate limiting.

import (
    "context"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient builds a Redis client from the loaded configuration. The
// returned client is nil when rate limiting is not configured or the server
// does not answer a ping within two seconds.
func NewRedisClient(cfg Config) *redis.Client {
    if cfg.RedisAddr == "" {
        return nil
    }
    client := redis.NewClient(&redis.Options{
        Addr:     cfg.RedisAddr,
        Password: cfg.RedisPass,
        DB:       cfg.RedisDB,
    })
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        return nil
    }
    return client
}
