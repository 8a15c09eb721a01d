package model

import "time"

// Journey represents a scheduled transport run between two cities as
// stored in the `journeys` table.  TotalSeats is the hard capacity that
// the booking ledger enforces; DriverID is assigned later by an
// administrator and stays nil until then.
//
// Fields:
//  ID                – primary key identifier.
//  OriginCityID      – city where the journey departs.
//  DestinationCityID – city where the journey arrives.
//  DepartureTime     – departure timestamp, stored in UTC.
//  TotalSeats        – total seat capacity, always > 0.
//  DriverID          – assigned driver (nullable).
//  CreatedAt         – timestamp of creation.
type Journey struct {
	ID                uint64    // journeys.id
	OriginCityID      uint64    // journeys.origin_city_id
	DestinationCityID uint64    // journeys.destination_city_id
	DepartureTime     time.Time // journeys.departure_time (UTC)
	TotalSeats        int       // journeys.total_seats
	DriverID          *uint64   // journeys.driver_id (nullable)
	CreatedAt         time.Time // journeys.created_at
}

// Departed reports whether the journey's departure time has passed at
// the given instant.
func (j *Journey) Departed(now time.Time) bool {
	return j.DepartureTime.Before(now)
}
