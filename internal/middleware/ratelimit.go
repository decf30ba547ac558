package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/production-planner/internal/config"
	"github.com/iliyamo/production-planner/internal/logging"
)

// bucketScript refills the bucket for the time elapsed since the last
// request and takes one token.  Tokens are fractional so a refill rate
// below one per interval still works.  Returns {allowed, remaining,
// retry_after_ms}.
var bucketScript = redis.NewScript(`
local capacity = tonumber(ARGV[2])
local per_ms = tonumber(ARGV[3]) / tonumber(ARGV[4])
local now = tonumber(ARGV[1])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens') or capacity)
local seen = tonumber(redis.call('HGET', KEYS[1], 'seen_ms') or now)
tokens = math.min(capacity, tokens + math.max(0, now - seen) * per_ms)

local allowed, wait = 0, 0
if tokens >= 1 then
	allowed = 1
	tokens = tokens - 1
else
	wait = math.ceil((1 - tokens) / per_ms)
end

redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'seen_ms', now)
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return { allowed, math.floor(tokens), wait }
`)

type bucketResult struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

func parseBucket(v interface{}) (bucketResult, bool) {
	arr, ok := v.([]interface{})
	if !ok || len(arr) != 3 {
		return bucketResult{}, false
	}
	n := make([]int64, 3)
	for i, x := range arr {
		if n[i], ok = x.(int64); !ok {
			return bucketResult{}, false
		}
	}
	return bucketResult{allowed: n[0] == 1, remaining: n[1], retry: time.Duration(n[2]) * time.Millisecond}, true
}

// NewTokenBucket rate limits requests with a Redis token bucket per key.
// Redis errors let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, logger *zap.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	cfg = cfg.Normalize()
	log := logging.WithComponent(logger, "ratelimit")
	limit := strconv.Itoa(cfg.Capacity)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			raw, err := bucketScript.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(), cfg.Capacity, cfg.Refill, cfg.Interval.Milliseconds(), cfg.TTL.Milliseconds(),
			).Result()
			if err != nil {
				log.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
				return next(c)
			}
			res, ok := parseBucket(raw)
			if !ok {
				log.Warn("unexpected rate limit reply", zap.String("key", key), zap.Any("reply", raw))
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.remaining, 10))
			if res.allowed {
				return next(c)
			}
			secs := int((res.retry + time.Second - 1) / time.Second)
			h.Set("Retry-After", strconv.Itoa(secs))
			log.Debug("rate limited", zap.String("key", key), zap.Duration("retry", res.retry))
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded", "retry_after": secs})
		}
	}
}

// buildRateKey names the bucket a request draws from.  Routes are keyed
// by pattern so every shot shares one bucket per caller.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "user":
		parts = append(parts, "user", UserID(c))
	case "ip":
		parts = append(parts, "ip", c.RealIP())
	default:
		parts = append(parts, "user", UserID(c), "route", c.Request().Method+" "+c.Path())
	}
	return strings.Join(parts, ":")
}
