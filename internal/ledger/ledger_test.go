package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/journey-booking/internal/ledger"
)

// memCounter is an in-memory SeatCounter whose totals the tests mutate
// through the commit callbacks, the way the real store does.
type memCounter struct {
	mu     sync.Mutex
	booked map[uint64]int
	err    error
}

func newMemCounter() *memCounter {
	return &memCounter{booked: make(map[uint64]int)}
}

func (c *memCounter) BookedSeats(_ context.Context, journeyID uint64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	return c.booked[journeyID], nil
}

func (c *memCounter) add(journeyID uint64, seats int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.booked[journeyID] += seats
}

func TestReserve_CommitsWithinCapacity(t *testing.T) {
	counter := newMemCounter()
	l := ledger.New(counter)

	err := l.Reserve(context.Background(), 1, 3, 4, func(context.Context) error {
		counter.add(1, 3)
		return nil
	})

	require.NoError(t, err)
	booked, _ := counter.BookedSeats(context.Background(), 1)
	assert.Equal(t, 3, booked)
}

func TestReserve_RejectsOverCapacity(t *testing.T) {
	counter := newMemCounter()
	counter.add(1, 3)
	l := ledger.New(counter)

	committed := false
	err := l.Reserve(context.Background(), 1, 2, 4, func(context.Context) error {
		committed = true
		return nil
	})

	assert.ErrorIs(t, err, ledger.ErrInsufficientCapacity)
	assert.False(t, committed, "commit must not run when capacity is exhausted")
}

func TestReserve_RejectsNonPositiveSeats(t *testing.T) {
	l := ledger.New(newMemCounter())

	for _, seats := range []int{0, -1} {
		err := l.Reserve(context.Background(), 1, seats, 10, func(context.Context) error { return nil })
		assert.ErrorIs(t, err, ledger.ErrInvalidSeatCount)
	}
}

func TestReserve_CommitFailureLeaksNothing(t *testing.T) {
	counter := newMemCounter()
	l := ledger.New(counter)
	boom := errors.New("insert failed")

	err := l.Reserve(context.Background(), 1, 2, 4, func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)

	// The failed reservation must not consume capacity.
	avail, err := l.AvailableSeats(context.Background(), 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, avail)
}

func TestReserve_PropagatesCounterError(t *testing.T) {
	counter := newMemCounter()
	counter.err = errors.New("db down")
	l := ledger.New(counter)

	err := l.Reserve(context.Background(), 1, 1, 4, func(context.Context) error { return nil })
	assert.ErrorContains(t, err, "db down")
}

func TestReserve_ConcurrentNeverOverbooks(t *testing.T) {
	const capacity = 10
	const workers = 50

	counter := newMemCounter()
	l := ledger.New(counter)

	var wg sync.WaitGroup
	successes := make(chan int, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.Reserve(context.Background(), 7, 2, capacity, func(context.Context) error {
				counter.add(7, 2)
				return nil
			})
			if err == nil {
				successes <- 2
			}
		}()
	}
	wg.Wait()
	close(successes)

	total := 0
	for s := range successes {
		total += s
	}
	booked, _ := counter.BookedSeats(context.Background(), 7)
	assert.Equal(t, total, booked)
	assert.LessOrEqual(t, booked, capacity)
	assert.Equal(t, capacity, booked, "all capacity should be claimable under contention")
}

func TestReserve_DifferentJourneysDoNotBlock(t *testing.T) {
	counter := newMemCounter()
	l := ledger.New(counter)

	// Hold journey 1's critical section open and show journey 2 proceeds.
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = l.Reserve(context.Background(), 1, 1, 10, func(context.Context) error {
			close(done)
			<-release
			return nil
		})
	}()
	<-done

	err := l.Reserve(context.Background(), 2, 1, 10, func(context.Context) error {
		counter.add(2, 1)
		return nil
	})
	close(release)

	require.NoError(t, err)
}

func TestRelease_RestoresCapacity(t *testing.T) {
	counter := newMemCounter()
	l := ledger.New(counter)
	ctx := context.Background()

	require.NoError(t, l.Reserve(ctx, 1, 4, 4, func(context.Context) error {
		counter.add(1, 4)
		return nil
	}))
	require.ErrorIs(t, l.Reserve(ctx, 1, 1, 4, func(context.Context) error { return nil }),
		ledger.ErrInsufficientCapacity)

	require.NoError(t, l.Release(ctx, 1, func(context.Context) error {
		counter.add(1, -4)
		return nil
	}))

	avail, err := l.AvailableSeats(ctx, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, avail)

	// Freed capacity is immediately reservable again.
	assert.NoError(t, l.Reserve(ctx, 1, 4, 4, func(context.Context) error {
		counter.add(1, 4)
		return nil
	}))
}

func TestOverride_BypassesCapacityCheck(t *testing.T) {
	counter := newMemCounter()
	counter.add(1, 4)
	l := ledger.New(counter)

	// Push the booking from 4 to 9 seats on a 4-seat journey.
	err := l.Override(context.Background(), 1, 9, func(context.Context) error {
		counter.add(1, 5)
		return nil
	})
	require.NoError(t, err)

	avail, err := l.AvailableSeats(context.Background(), 1, 4)
	require.NoError(t, err)
	assert.Equal(t, -5, avail, "admin overbooking drives availability negative")
}

func TestOverride_StillValidatesSeatCount(t *testing.T) {
	l := ledger.New(newMemCounter())

	err := l.Override(context.Background(), 1, 0, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ledger.ErrInvalidSeatCount)
}
