// Package service contains the booking orchestration logic.  The
// service validates journey timing, pickup geofencing and seat counts,
// and routes every seat mutation through the capacity ledger so the
// capacity invariant holds under concurrent requests.  No SQL lives
// here; the service depends on small store interfaces satisfied by the
// repository layer.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/journey-booking/internal/geo"
	"github.com/iliyamo/journey-booking/internal/ledger"
	"github.com/iliyamo/journey-booking/internal/model"
	"github.com/iliyamo/journey-booking/internal/repository"
)

// ErrPastJourney is returned when a traveller tries to book a journey
// whose departure time has already passed.
var ErrPastJourney = errors.New("cannot book a past journey")

// ErrJourneyDeparted is returned when a traveller tries to cancel a
// booking after the journey has departed.
var ErrJourneyDeparted = errors.New("journey has already departed")

// ErrPickupOutOfRange is returned when the pickup point lies outside
// the origin city's configured radius.
var ErrPickupOutOfRange = errors.New("pickup point outside origin city radius")

// ErrInvalidPickupPoint is returned for NaN or out-of-range pickup
// coordinates, rejected before any distance math runs.
var ErrInvalidPickupPoint = errors.New("invalid pickup coordinates")

// JourneyStore is the journey lookup the service needs.
type JourneyStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Journey, error)
}

// CityStore is the city lookup the service needs for geofencing.
type CityStore interface {
	GetByID(ctx context.Context, id uint64) (*model.City, error)
}

// BookingStore is the booking persistence the service drives.  Create
// must report a duplicate (journey, user) pair as
// repository.ErrDuplicateBooking; with MySQL this falls out of the
// UNIQUE constraint on the bookings table.
type BookingStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	Create(ctx context.Context, b *model.Booking) error
	Delete(ctx context.Context, id uint64) error
	UpdateSeats(ctx context.Context, id uint64, seats int) error
	ExistsForUser(ctx context.Context, journeyID, userID uint64) (bool, error)
}

// BookingService orchestrates booking creation, cancellation and the
// administrative variants.  All outcomes are one of the package's
// sentinel errors or a success value; nothing here panics or retries.
type BookingService struct {
	journeys JourneyStore
	cities   CityStore
	bookings BookingStore
	ledger   *ledger.CapacityLedger

	// now is swappable for tests; production code uses time.Now.
	now func() time.Time
}

// NewBookingService wires the service to its stores and ledger.
func NewBookingService(journeys JourneyStore, cities CityStore, bookings BookingStore, led *ledger.CapacityLedger) *BookingService {
	if journeys == nil || cities == nil || bookings == nil || led == nil {
		panic("nil dependency passed to NewBookingService")
	}
	return &BookingService{
		journeys: journeys,
		cities:   cities,
		bookings: bookings,
		ledger:   led,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateBooking reserves seats on a journey for a traveller.  The
// pipeline is: journey exists, journey in the future, valid seat
// count, valid coordinates, capacity reservation, geofence check,
// duplicate check, persist.  Everything after the capacity check runs
// inside the ledger's per-journey critical section, so a failure on
// any later step releases the provisional reservation by construction.
func (s *BookingService) CreateBooking(ctx context.Context, travellerID, journeyID uint64, seats int, pickupLat, pickupLng float64) (*model.Booking, error) {
	journey, err := s.journeys.GetByID(ctx, journeyID)
	if err != nil {
		return nil, err
	}
	if journey.Departed(s.now()) {
		return nil, ErrPastJourney
	}
	if seats <= 0 {
		return nil, ledger.ErrInvalidSeatCount
	}
	if !geo.ValidCoordinate(pickupLat, pickupLng) {
		return nil, ErrInvalidPickupPoint
	}

	booking := &model.Booking{
		JourneyID: journeyID,
		UserID:    travellerID,
		Seats:     seats,
		PickupLat: pickupLat,
		PickupLng: pickupLng,
	}
	err = s.ledger.Reserve(ctx, journeyID, seats, journey.TotalSeats, func(ctx context.Context) error {
		origin, err := s.cities.GetByID(ctx, journey.OriginCityID)
		if err != nil {
			return err
		}
		if !geo.IsWithinRadius(pickupLat, pickupLng, origin.CenterLat, origin.CenterLng, origin.PickupRadiusKm) {
			return ErrPickupOutOfRange
		}

		exists, err := s.bookings.ExistsForUser(ctx, journeyID, travellerID)
		if err != nil {
			return err
		}
		if exists {
			return repository.ErrDuplicateBooking
		}
		// The unique constraint backstops the check above when two
		// requests from the same traveller race.
		return s.bookings.Create(ctx, booking)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// CancelBooking deletes a traveller's own booking and releases its
// seats.  Cancellation is refused once the journey has departed.
func (s *BookingService) CancelBooking(ctx context.Context, travellerID, bookingID uint64) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.UserID != travellerID {
		return repository.ErrForbidden
	}

	journey, err := s.journeys.GetByID(ctx, booking.JourneyID)
	if err != nil && !errors.Is(err, repository.ErrJourneyNotFound) {
		return err
	}
	if journey != nil && journey.Departed(s.now()) {
		return ErrJourneyDeparted
	}

	return s.ledger.Release(ctx, booking.JourneyID, func(ctx context.Context) error {
		return s.bookings.Delete(ctx, bookingID)
	})
}

// AdminCancelBooking deletes any booking with no ownership or timing
// checks.
func (s *BookingService) AdminCancelBooking(ctx context.Context, bookingID uint64) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	return s.ledger.Release(ctx, booking.JourneyID, func(ctx context.Context) error {
		return s.bookings.Delete(ctx, bookingID)
	})
}

// AdminOverrideSeats overwrites a booking's seat count with no
// capacity check.  Administrators may deliberately overbook a journey;
// the only validation kept is a positive seat count.
func (s *BookingService) AdminOverrideSeats(ctx context.Context, bookingID uint64, newSeats int) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	err = s.ledger.Override(ctx, booking.JourneyID, newSeats, func(ctx context.Context) error {
		return s.bookings.UpdateSeats(ctx, bookingID, newSeats)
	})
	if err != nil {
		return nil, err
	}
	booking.Seats = newSeats
	return booking, nil
}

// AvailableSeats returns the journey's remaining capacity, recomputed
// from the authoritative store.  Negative values are possible after an
// administrative override.
func (s *BookingService) AvailableSeats(ctx context.Context, journeyID uint64) (int, error) {
	journey, err := s.journeys.GetByID(ctx, journeyID)
	if err != nil {
		return 0, err
	}
	return s.ledger.AvailableSeats(ctx, journeyID, journey.TotalSeats)
}
