package config

import (
    "os"
    "strconv"
    "time"
)

// RateLimitConfig controls the Redis token-bucket limiter applied in front of
// the API. Requests are keyed per client IP. When Enabled is false or no
// Redis client could be constructed, the middleware is a no-op.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    Prefix         string
}

// LoadRateLimitConfig reads rate-limiter settings from the environment,
// falling back to defaults suitable for a small deployment.
func LoadRateLimitConfig() RateLimitConfig {
    return RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       getenvInt("RATE_LIMIT_CAPACITY", 60),
        RefillTokens:   getenvInt("RATE_LIMIT_REFILL_TOKENS", 10),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 10*time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        Prefix:         getenv("RATE_LIMIT_PREFIX", "ratelimit"),
    }
}

func envBool(key string, def bool) bool {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    b, err := strconv.ParseBool(s)
    if err != nil {
        return def
    }
    return b
}

func envDur(key string, def time.Duration) time.Duration {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    d, err := time.ParseDuration(s)
    if err != nil {
        return def
    }
    return d
}
