// Package ratelimit implements an in-process token-bucket admission
// controller.  Buckets are keyed by caller identity (client IP before
// authentication, user ID after) and refill continuously over time.
// The mechanism is role-agnostic: budgets are supplied by the caller,
// policy selection happens in the router wiring.
package ratelimit

import (
	"sync"
	"time"
)

// bucket holds the mutable token state for a single key.  The mutex
// makes refill-and-take atomic per key; buckets for different keys
// never share a lock.
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// refill tops the bucket up according to elapsed wall time, capped at
// capacity, and advances lastRefill.  Callers must hold b.mu.
func (b *bucket) refill(now time.Time, capacity, refillPerMs float64) {
	elapsed := now.Sub(b.lastRefill)
	if elapsed <= 0 {
		return
	}
	// Fractional milliseconds matter: truncating here would starve the
	// bucket whenever calls arrive faster than once per millisecond,
	// since lastRefill advances to now regardless.
	b.tokens += float64(elapsed) / float64(time.Millisecond) * refillPerMs
	if b.tokens > capacity {
		b.tokens = capacity
	}
	b.lastRefill = now
}

// take removes one token if at least one is available and reports
// whether the caller was admitted.  Callers must hold b.mu.
func (b *bucket) take() bool {
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}
