package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/journey-booking/internal/model"
)

// ErrDuplicateBooking indicates that the traveller already holds a
// booking on the journey.  The bookings table carries a UNIQUE
// (journey_id, user_id) constraint, so even two racing requests from
// the same traveller collapse to a single booking: the loser's INSERT
// fails with a duplicate-key error mapped to this sentinel.
var ErrDuplicateBooking = errors.New("booking already exists for this journey")

// BookingRepo provides persistence for bookings.  It is the
// authoritative source the capacity ledger recomputes booked totals
// from; it deliberately keeps no counter of its own.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingCols = `id, journey_id, user_id, seats, pickup_lat, pickup_lng, created_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.JourneyID, &b.UserID, &b.Seats, &b.PickupLat, &b.PickupLng, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return &b, nil
}

// Create inserts a booking and populates the generated ID and creation
// timestamp on the provided record.  A duplicate (journey_id, user_id)
// pair is reported as ErrDuplicateBooking.  Insert and timestamp
// read-back run in one transaction so the record handed back matches
// the stored row.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO bookings (journey_id, user_id, seats, pickup_lat, pickup_lng) VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, b.JourneyID, b.UserID, b.Seats, b.PickupLat, b.PickupLng)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateBooking
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	var createdAt time.Time
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at FROM bookings WHERE id = ?`, id).Scan(&createdAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	b.ID = uint64(id)
	b.CreatedAt = createdAt.UTC()
	return nil
}

// GetByID retrieves a booking by its ID.  It returns ErrBookingNotFound
// when no row matches.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// Delete removes a booking by id.  Returns ErrBookingNotFound when
// nothing was deleted.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// UpdateSeats overwrites the seat count on a booking.  Capacity is not
// checked here: this is the administrative override path, ordered
// against reservations by the capacity ledger.
func (r *BookingRepo) UpdateSeats(ctx context.Context, id uint64, seats int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE bookings SET seats = ? WHERE id = ?`, seats, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
	}
	return nil
}

// BookedSeats returns the total number of seats currently booked on a
// journey.  This satisfies ledger.SeatCounter; the ledger calls it
// inside the per-journey critical section so the sum cannot go stale
// between check and commit.
func (r *BookingRepo) BookedSeats(ctx context.Context, journeyID uint64) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(seats), 0) FROM bookings WHERE journey_id = ?`, journeyID).Scan(&total)
	return total, err
}

// ExistsForUser reports whether the traveller already has a booking on
// the journey.
func (r *BookingRepo) ExistsForUser(ctx context.Context, journeyID, userID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM bookings WHERE journey_id = ? AND user_id = ? LIMIT 1`, journeyID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByUser returns all bookings created by the given traveller,
// newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return r.list(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

// ListByJourney returns all bookings on the given journey.
func (r *BookingRepo) ListByJourney(ctx context.Context, journeyID uint64) ([]model.Booking, error) {
	return r.list(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE journey_id = ? ORDER BY created_at`, journeyID)
}

// ListAll returns every booking, newest first.  Used by the
// administrative overview endpoint.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	return r.list(ctx, `SELECT `+bookingCols+` FROM bookings ORDER BY created_at DESC`)
}

func (r *BookingRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// PassengerPickup is one row of a driver's pickup manifest: who to
// collect, how many seats they hold and where they asked to be picked
// up.
type PassengerPickup struct {
	BookingID     uint64  `json:"booking_id"`
	PassengerName string  `json:"passenger_name"`
	Seats         int     `json:"seats"`
	PickupLat     float64 `json:"pickup_lat"`
	PickupLng     float64 `json:"pickup_lng"`
}

// PassengersByJourney returns the pickup manifest for a journey,
// joining traveller names onto their bookings.
func (r *BookingRepo) PassengersByJourney(ctx context.Context, journeyID uint64) ([]PassengerPickup, error) {
	const q = `SELECT b.id, u.name, b.seats, b.pickup_lat, b.pickup_lng
	           FROM bookings b
	           JOIN users u ON u.id = b.user_id
	           WHERE b.journey_id = ?
	           ORDER BY b.created_at`
	rows, err := r.db.QueryContext(ctx, q, journeyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passengers := make([]PassengerPickup, 0)
	for rows.Next() {
		var p PassengerPickup
		if err := rows.Scan(&p.BookingID, &p.PassengerName, &p.Seats, &p.PickupLat, &p.PickupLng); err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return passengers, nil
}
