package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadRateLimitsDefaults(t *testing.T) {
	limits := LoadRateLimits()

	assert.Equal(t, 1000, limits.Global.Capacity)
	assert.Equal(t, 100, limits.Public.Capacity)
	assert.Equal(t, 100, limits.Traveller.Capacity)
	assert.Equal(t, 500, limits.Driver.Capacity)

	for _, b := range []RateLimitConfig{limits.Global, limits.Public, limits.Traveller, limits.Driver} {
		assert.True(t, b.Enabled)
		assert.Equal(t, time.Minute, b.RefillInterval)
		assert.Equal(t, b.Capacity, b.RefillTokens, "bucket refills its full capacity each interval")
	}
}

func TestLoadRateLimitsOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_DRIVER_CAPACITY", "50")
	t.Setenv("RATE_LIMIT_DRIVER_REFILL_INTERVAL", "30s")
	t.Setenv("RATE_LIMIT_PUBLIC_ENABLED", "false")

	limits := LoadRateLimits()
	assert.Equal(t, 50, limits.Driver.Capacity)
	assert.Equal(t, 30*time.Second, limits.Driver.RefillInterval)
	assert.False(t, limits.Public.Enabled)
}

func TestLoadBucketClampsInvalid(t *testing.T) {
	t.Setenv("RATE_LIMIT_GLOBAL_CAPACITY", "-5")

	limits := LoadRateLimits()
	assert.Equal(t, 1, limits.Global.Capacity)
}
