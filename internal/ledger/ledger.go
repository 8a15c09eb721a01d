// Package ledger serializes seat-count mutations per journey so that
// concurrent bookings can never observe stale availability and both
// commit.  The ledger owns no seat counts itself: the authoritative
// total is always recomputed from the booking store inside the
// critical section, which keeps the check and the commit indivisible
// for a given journey while leaving unrelated journeys free to proceed
// in parallel.
package ledger

import (
	"context"
	"errors"
	"sync"
)

// ErrInsufficientCapacity is returned when a reservation would push the
// journey's booked total past its capacity.
var ErrInsufficientCapacity = errors.New("insufficient capacity")

// ErrInvalidSeatCount is returned for non-positive seat counts.
var ErrInvalidSeatCount = errors.New("seat count must be positive")

// SeatCounter reports the authoritative number of seats currently
// booked on a journey.  The MySQL booking repository satisfies it with
// a SUM over the bookings table.
type SeatCounter interface {
	BookedSeats(ctx context.Context, journeyID uint64) (int, error)
}

// CapacityLedger guards the capacity invariant: barring an explicit
// administrative override, the sum of booked seats on a journey never
// exceeds its total.  All seat mutations for a journey pass through
// the same per-journey lock.
type CapacityLedger struct {
	counter SeatCounter

	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

// New returns a CapacityLedger backed by the given seat counter.
func New(counter SeatCounter) *CapacityLedger {
	if counter == nil {
		panic("nil seat counter passed to ledger.New")
	}
	return &CapacityLedger{
		counter: counter,
		locks:   make(map[uint64]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing mutations for one journey,
// creating it on first use.  Locks are never evicted; the map is
// bounded by the number of journeys ever booked in this process.
func (l *CapacityLedger) lockFor(journeyID uint64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[journeyID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[journeyID] = m
	}
	return m
}

// Reserve admits seats against totalSeats and, while still holding the
// journey's lock, runs commit to persist the booking.  The reservation
// is provisional: if commit returns an error nothing has been
// persisted and the capacity is released by construction, so no
// explicit compensation is needed on any failure path.
func (l *CapacityLedger) Reserve(ctx context.Context, journeyID uint64, seats, totalSeats int, commit func(context.Context) error) error {
	if seats <= 0 {
		return ErrInvalidSeatCount
	}

	m := l.lockFor(journeyID)
	m.Lock()
	defer m.Unlock()

	booked, err := l.counter.BookedSeats(ctx, journeyID)
	if err != nil {
		return err
	}
	if booked+seats > totalSeats {
		return ErrInsufficientCapacity
	}
	return commit(ctx)
}

// Release runs release under the journey's lock so that a concurrent
// Reserve sees either the pre- or post-cancellation total, never a
// partial state.  Release itself imposes no capacity check.
func (l *CapacityLedger) Release(ctx context.Context, journeyID uint64, release func(context.Context) error) error {
	m := l.lockFor(journeyID)
	m.Lock()
	defer m.Unlock()
	return release(ctx)
}

// Override applies an administrative seat-count change without any
// capacity check.  Administrators may deliberately overbook; the only
// validation kept is that the new count is positive.  The journey lock
// is still taken so the write is ordered against reservations.
func (l *CapacityLedger) Override(ctx context.Context, journeyID uint64, newSeats int, apply func(context.Context) error) error {
	if newSeats <= 0 {
		return ErrInvalidSeatCount
	}

	m := l.lockFor(journeyID)
	m.Lock()
	defer m.Unlock()
	return apply(ctx)
}

// AvailableSeats returns totalSeats minus the authoritative booked
// total.  The result can be negative when an administrator has
// overbooked the journey.
func (l *CapacityLedger) AvailableSeats(ctx context.Context, journeyID uint64, totalSeats int) (int, error) {
	booked, err := l.counter.BookedSeats(ctx, journeyID)
	if err != nil {
		return 0, err
	}
	return totalSeats - booked, nil
}
