package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cinetick/cinema-booking/internal/config"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	cfg := config.LoadRateLimitConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 20, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, time.Second, cfg.RefillInterval)
	assert.Equal(t, "ip_route", cfg.KeyStrategy)
	assert.Equal(t, "cinetick:rl", cfg.Prefix)
	assert.False(t, cfg.Debug)
}

func TestLoadRateLimitConfigOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_CAPACITY", "5")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_KEY_STRATEGY", "user_route")

	cfg := config.LoadRateLimitConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 5, cfg.Capacity)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	assert.Equal(t, "user_route", cfg.KeyStrategy)
}

func TestLoadRateLimitConfigTTLFloor(t *testing.T) {
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "30s")

	cfg := config.LoadRateLimitConfig()
	assert.Equal(t, 5*time.Minute, cfg.TTL, "bucket state must survive several refill rounds")
}

func TestLoadRateLimitConfigClampsNonsense(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")

	cfg := config.LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
}
