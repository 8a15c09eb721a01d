package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Decision describes the outcome of a single admission attempt.  The
// Remaining and RetryAfter fields feed the X-RateLimit-* and
// Retry-After response headers.
type Decision struct {
	Allowed    bool
	Limit      int           // bucket capacity
	Remaining  int           // whole tokens left after this attempt
	RetryAfter time.Duration // time until a token is available (zero when allowed)
}

// Limiter is a keyed collection of token buckets sharing one budget:
// every key gets its own bucket with the same capacity and refill
// rate.  Buckets are created lazily and initialized full, so the first
// burst from a new caller is always admitted up to capacity.
type Limiter struct {
	capacity    float64
	refillPerMs float64

	mu      sync.RWMutex
	buckets map[string]*bucket

	// now is swappable for tests; production code uses time.Now.
	now func() time.Time
}

// New builds a Limiter that grants refillTokens per refillInterval up
// to capacity tokens.  Non-positive inputs are clamped to the smallest
// useful values, mirroring the config loader's defaults.
func New(capacity, refillTokens int, refillInterval time.Duration) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	if refillTokens < 1 {
		refillTokens = 1
	}
	if refillInterval <= 0 {
		refillInterval = time.Second
	}
	return &Limiter{
		capacity:    float64(capacity),
		refillPerMs: float64(refillTokens) / float64(refillInterval.Milliseconds()),
		buckets:     make(map[string]*bucket),
		now:         time.Now,
	}
}

// TryAcquire consumes one token for key and reports whether the
// request is admitted.  It never fails: under any race the worst
// outcome is a rejection.
func (l *Limiter) TryAcquire(key string) bool {
	return l.Take(key).Allowed
}

// Take is TryAcquire with the full decision attached.  The per-key
// bucket mutex is held across refill and take, so two concurrent
// requests for the same key can never both spend the last token.
func (l *Limiter) Take(key string) Decision {
	b := l.bucketFor(key)
	now := l.now()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill(now, l.capacity, l.refillPerMs)
	allowed := b.take()

	d := Decision{
		Allowed:   allowed,
		Limit:     int(l.capacity),
		Remaining: int(b.tokens),
	}
	if !allowed {
		// Milliseconds until the bucket accrues one whole token.
		deficit := 1 - b.tokens
		d.RetryAfter = time.Duration(math.Ceil(deficit/l.refillPerMs)) * time.Millisecond
	}
	return d
}

// bucketFor returns the bucket for key, creating it full on first use.
// The double-checked locking keeps the common path on the read lock so
// independent keys do not contend.
func (l *Limiter) bucketFor(key string) *bucket {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok = l.buckets[key]; ok {
		return b
	}
	b = &bucket{tokens: l.capacity, lastRefill: l.now()}
	l.buckets[key] = b
	return b
}

// PruneIdle drops buckets that have been idle for at least idleFor and
// are fully refilled, and returns how many were removed.  Dropping a
// full bucket is safe because a lazily recreated bucket starts full;
// partially drained buckets are kept so eviction can never hand tokens
// back early.
func (l *Limiter) PruneIdle(idleFor time.Duration) int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		b.mu.Lock()
		idle := now.Sub(b.lastRefill) >= idleFor
		b.refill(now, l.capacity, l.refillPerMs)
		full := b.tokens >= l.capacity
		b.mu.Unlock()
		if idle && full {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of live buckets.  Used by the sweeper log
// line and by tests.
func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}
