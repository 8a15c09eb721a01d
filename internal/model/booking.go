package model

import "time"

// Booking records a traveller's seat reservation on a journey as
// stored in the `bookings` table.  The pair (JourneyID, UserID) is
// unique: a traveller holds at most one booking per journey.  The
// pickup coordinate is validated against the origin city's geofence at
// creation time only; later city edits do not retroactively invalidate
// existing bookings.
//
// Fields:
//  ID        – primary key identifier.
//  JourneyID – journey being booked.
//  UserID    – traveller who owns the booking.
//  Seats     – number of seats reserved, always > 0.
//  PickupLat – pickup point latitude in degrees.
//  PickupLng – pickup point longitude in degrees.
//  CreatedAt – timestamp of creation.
type Booking struct {
	ID        uint64    // bookings.id
	JourneyID uint64    // bookings.journey_id
	UserID    uint64    // bookings.user_id
	Seats     int       // bookings.seats
	PickupLat float64   // bookings.pickup_lat
	PickupLng float64   // bookings.pickup_lng
	CreatedAt time.Time // bookings.created_at
}
