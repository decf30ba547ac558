package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV": "test", "APP_PORT": "8080", "DB_USER": "planner", "DB_HOST": "localhost",
		"DB_PORT": "3306", "DB_NAME": "production", "JWT_SECRET": "s3cret",
	} {
		t.Setenv(k, v)
	}
}

func TestFromEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://broker:5672/")
	t.Setenv("SYNC_CONSUMER_ENABLED", "yes")
	t.Setenv("LOG_LEVEL", "")

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 60, cfg.AccessTTLMin)
	assert.Equal(t, "amqp://broker:5672/", cfg.AMQPURL)
	assert.True(t, cfg.PublishEvents)
	assert.True(t, cfg.SyncConsumerEnabled)
	assert.Equal(t, "logs", cfg.SyncLogDir)

	t.Setenv("RABBITMQ_URL", "amqp://primary/")
	assert.Equal(t, "amqp://primary/", FromEnv().AMQPURL)
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL", "-3")
	t.Setenv("RATE_LIMIT_INTERVAL", "bogus")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("RATE_LIMIT_PREFIX", "")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.Refill)
	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, time.Minute, cfg.TTL)
	assert.Equal(t, "rl", cfg.Prefix)
	assert.Equal(t, "user_route", cfg.KeyStrategy)
}

func TestRateLimitNormalizeKeepsRefillWindow(t *testing.T) {
	cfg := RateLimitConfig{Capacity: 100, Refill: 3, Interval: 5 * time.Second, TTL: time.Second}.Normalize()
	// 34 intervals refill an empty bucket of 100 at 3 per interval.
	assert.Equal(t, 170*time.Second, cfg.TTL)

	cfg = RateLimitConfig{Capacity: 5, Refill: 1, Interval: -time.Second, TTL: time.Hour}.Normalize()
	assert.Equal(t, time.Second, cfg.Interval)
	assert.Equal(t, time.Hour, cfg.TTL)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head,")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("CACHE_PREFIX", "")
	t.Setenv("CACHE_ENABLED", "off")

	cfg := LoadCacheConfig()
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
	assert.Equal(t, 2*time.Minute, cfg.TTL)
	assert.Equal(t, "callsheet", cfg.Prefix)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1<<20, cfg.MaxBodyBytes)
}

func TestRedisOptions(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_ADDR", "ignored:1")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_TLS", "1")

	opts := RedisOptions()
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.NotNil(t, opts.TLSConfig)
}
