package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig describes one token bucket: a burst capacity plus a
// steady refill rate.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
}

// RateLimits bundles the admission-control budgets. The global bucket
// is keyed by client address and applied before authentication; the
// role buckets are keyed by user and applied after. Administrators are
// exempt from role buckets but still count against the global one.
type RateLimits struct {
	Global    RateLimitConfig
	Public    RateLimitConfig
	Traveller RateLimitConfig
	Driver    RateLimitConfig

	// PruneInterval controls how often idle buckets are swept; idle
	// full buckets older than PruneAfter are dropped.
	PruneInterval time.Duration
	PruneAfter    time.Duration
}

// LoadRateLimits builds the budget set from the environment. Defaults:
// 1000 requests/min per address globally, 100/min for public and
// traveller traffic, 500/min for drivers.
func LoadRateLimits() RateLimits {
	return RateLimits{
		Global:    loadBucket("RATE_LIMIT_GLOBAL", 1000, time.Minute),
		Public:    loadBucket("RATE_LIMIT_PUBLIC", 100, time.Minute),
		Traveller: loadBucket("RATE_LIMIT_TRAVELLER", 100, time.Minute),
		Driver:    loadBucket("RATE_LIMIT_DRIVER", 500, time.Minute),

		PruneInterval: envDur("RATE_LIMIT_PRUNE_INTERVAL", 5*time.Minute),
		PruneAfter:    envDur("RATE_LIMIT_PRUNE_AFTER", 10*time.Minute),
	}
}

// loadBucket reads <prefix>_ENABLED, <prefix>_CAPACITY and
// <prefix>_REFILL_INTERVAL. The bucket refills its full capacity each
// interval, so CAPACITY doubles as both burst size and sustained rate.
func loadBucket(prefix string, capacity int, interval time.Duration) RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool(prefix+"_ENABLED", true),
		Capacity:       envInt(prefix+"_CAPACITY", capacity),
		RefillInterval: envDur(prefix+"_REFILL_INTERVAL", interval),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Minute
	}
	cfg.RefillTokens = cfg.Capacity
	return cfg
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			return dur
		}
	}
	return d
}
