package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance time deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(capacity, refillTokens int, interval time.Duration) (*Limiter, *fakeClock) {
	clk := newFakeClock()
	l := New(capacity, refillTokens, interval)
	l.now = clk.Now
	return l, clk
}

func TestTake_BurstUpToCapacityThenReject(t *testing.T) {
	// Capacity 100, fully refilled over 60 seconds.
	l, _ := newTestLimiter(100, 100, 60*time.Second)

	for i := 0; i < 100; i++ {
		require.True(t, l.TryAcquire("k"), "request %d should be admitted", i+1)
	}

	d := l.Take("k")
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
}

func TestTake_RefillProportionalToElapsedTime(t *testing.T) {
	// One token per millisecond, so elapsed time maps 1:1 to tokens.
	l, clk := newTestLimiter(100, 100, 100*time.Millisecond)

	for i := 0; i < 100; i++ {
		require.True(t, l.TryAcquire("k"))
	}
	require.False(t, l.TryAcquire("k"))

	// Half the refill interval restores half the budget.
	clk.Advance(50 * time.Millisecond)
	admitted := 0
	for l.TryAcquire("k") {
		admitted++
	}
	assert.Equal(t, 50, admitted)
}

func TestTake_SubMillisecondPollingStillRefills(t *testing.T) {
	// 100 tokens per second.  Polling every 500us means each call sees
	// less than one millisecond of elapsed time; the refill must credit
	// those fractions instead of rounding them down to zero.
	l, clk := newTestLimiter(100, 100, time.Second)

	for i := 0; i < 100; i++ {
		require.True(t, l.TryAcquire("k"))
	}
	require.False(t, l.TryAcquire("k"))

	admitted := 0
	for i := 0; i < 20000; i++ { // 10 simulated seconds
		clk.Advance(500 * time.Microsecond)
		if l.TryAcquire("k") {
			admitted++
		}
	}

	// 10s at 100 tokens/s restores ~1000 tokens while draining.
	assert.InDelta(t, 1000, admitted, 5)
}

func TestTake_TokensNeverExceedCapacity(t *testing.T) {
	l, clk := newTestLimiter(10, 10, time.Second)

	// A long idle period must not accumulate more than capacity.
	require.True(t, l.TryAcquire("k"))
	clk.Advance(time.Hour)

	admitted := 0
	for l.TryAcquire("k") {
		admitted++
	}
	assert.Equal(t, 10, admitted)
}

func TestTake_IndependentKeys(t *testing.T) {
	l, _ := newTestLimiter(2, 1, time.Second)

	require.True(t, l.TryAcquire("a"))
	require.True(t, l.TryAcquire("a"))
	require.False(t, l.TryAcquire("a"))

	// Exhausting "a" must not affect "b".
	assert.True(t, l.TryAcquire("b"))
}

func TestTake_ConcurrentSameKeyNeverOveradmits(t *testing.T) {
	const capacity = 100
	const workers = 20
	const perWorker = 50

	l, _ := newTestLimiter(capacity, 1, time.Hour)

	var admitted int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if l.TryAcquire("shared") {
					atomic.AddInt64(&admitted, 1)
				}
			}
		}()
	}
	wg.Wait()

	// 1000 attempts against a 100-token bucket with negligible refill.
	assert.Equal(t, int64(capacity), admitted)
}

func TestDecision_Headers(t *testing.T) {
	l, _ := newTestLimiter(5, 1, time.Second)

	d := l.Take("k")
	assert.True(t, d.Allowed)
	assert.Equal(t, 5, d.Limit)
	assert.Equal(t, 4, d.Remaining)
	assert.Equal(t, time.Duration(0), d.RetryAfter)
}

func TestPruneIdle_DropsOnlyFullIdleBuckets(t *testing.T) {
	l, clk := newTestLimiter(10, 10, time.Second)

	require.True(t, l.TryAcquire("idle"))
	require.True(t, l.TryAcquire("drained"))
	require.Equal(t, 2, l.Len())

	// After a minute both buckets are fully refilled and idle.
	clk.Advance(time.Minute)
	removed := l.PruneIdle(30 * time.Second)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, l.Len())

	// A bucket drained moments ago survives the sweep.
	for i := 0; i < 10; i++ {
		require.True(t, l.TryAcquire("hot"))
	}
	removed = l.PruneIdle(30 * time.Second)
	assert.Equal(t, 0, removed)
	assert.Equal(t, 1, l.Len())
}

func TestNew_ClampsInvalidInputs(t *testing.T) {
	l := New(0, 0, 0)

	assert.True(t, l.TryAcquire("k"))
	assert.False(t, l.TryAcquire("k"))
}
