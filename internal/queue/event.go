// Package queue defines message payloads exchanged over the message broker.
package queue

// EventType discriminates booking events sharing the booking.events queue.
type EventType string

const (
	// EventBookingCreated is published after a booking is persisted.
	EventBookingCreated EventType = "booking.created"
	// EventBookingCancelled is published after a booking is removed,
	// whether by the traveller or an administrator.
	EventBookingCancelled EventType = "booking.cancelled"
)

// BookingEvent is published whenever a booking is created or cancelled.
// It carries enough information for downstream consumers to log or
// notify without querying the primary database.
type BookingEvent struct {
	Type            EventType `json:"type"`
	BookingID       uint64    `json:"booking_id"`
	JourneyID       uint64    `json:"journey_id"`
	UserID          uint64    `json:"user_id"`
	Seats           int       `json:"seats"`
	OriginCity      string    `json:"origin_city"`
	DestinationCity string    `json:"destination_city"`
	DepartureTime   string    `json:"departure_time"`
	OccurredAt      string    `json:"occurred_at"`
}
