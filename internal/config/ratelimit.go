package config

import "time"

// RateLimitConfig configures the Redis token bucket on the sync routes.
// A bucket holds at most Capacity tokens and gains Refill tokens per
// Interval; one request costs one token.
//
// KeyStrategy picks what a bucket is shared by: "user", "ip" or
// "user_route" (default: one bucket per caller and route).
type RateLimitConfig struct {
	Enabled     bool
	Capacity    int
	Refill      int
	Interval    time.Duration
	TTL         time.Duration
	KeyStrategy string
	Prefix      string
}

// LoadRateLimitConfig reads the RATE_LIMIT_* variables.
func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:     envBool("RATE_LIMIT_ENABLED", true),
		Capacity:    envInt("RATE_LIMIT_CAPACITY", 30),
		Refill:      envInt("RATE_LIMIT_REFILL", 1),
		Interval:    envDur("RATE_LIMIT_INTERVAL", 2*time.Second),
		TTL:         envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy: envStr("RATE_LIMIT_KEY_STRATEGY", "user_route"),
		Prefix:      envStr("RATE_LIMIT_PREFIX", "rl"),
	}.Normalize()
}

// Normalize clamps the bucket to usable values.  TTL is at least the time
// an empty bucket takes to refill.
func (c RateLimitConfig) Normalize() RateLimitConfig {
	c.Capacity = max(c.Capacity, 1)
	c.Refill = max(c.Refill, 1)
	if c.Interval <= 0 {
		c.Interval = time.Second
	}
	full := time.Duration((c.Capacity+c.Refill-1)/c.Refill) * c.Interval
	c.TTL = max(c.TTL, full, time.Minute)
	if c.Prefix == "" {
		c.Prefix = "rl"
	}
	return c
}
