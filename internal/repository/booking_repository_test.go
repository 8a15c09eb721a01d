package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/journey-booking/internal/model"
	"github.com/iliyamo/journey-booking/internal/repository"
)

func newBookingRepo(t *testing.T) (*repository.BookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewBookingRepo(db), mock
}

func TestBookingCreateAssignsIDAndTimestamp(t *testing.T) {
	repo, mock := newBookingRepo(t)
	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO bookings (journey_id, user_id, seats, pickup_lat, pickup_lng) VALUES (?, ?, ?, ?, ?)`)).
		WithArgs(uint64(3), uint64(7), 2, -6.2, 106.8).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT created_at FROM bookings WHERE id = ?`)).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectCommit()

	b := &model.Booking{JourneyID: 3, UserID: 7, Seats: 2, PickupLat: -6.2, PickupLng: 106.8}
	require.NoError(t, repo.Create(context.Background(), b))
	assert.Equal(t, uint64(11), b.ID)
	assert.Equal(t, created, b.CreatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreateMapsDuplicateKey(t *testing.T) {
	repo, mock := newBookingRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bookings`)).
		WithArgs(uint64(3), uint64(7), 2, -6.2, 106.8).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '3-7' for key 'uniq_journey_user'"))
	mock.ExpectRollback()

	b := &model.Booking{JourneyID: 3, UserID: 7, Seats: 2, PickupLat: -6.2, PickupLng: 106.8}
	err := repo.Create(context.Background(), b)
	assert.ErrorIs(t, err, repository.ErrDuplicateBooking)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingGetByIDNotFound(t *testing.T) {
	repo, mock := newBookingRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, journey_id, user_id, seats, pickup_lat, pickup_lng, created_at FROM bookings WHERE id = ?`)).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "journey_id", "user_id", "seats", "pickup_lat", "pickup_lng", "created_at"}))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookedSeatsSumsJourney(t *testing.T) {
	repo, mock := newBookingRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT COALESCE(SUM(seats), 0) FROM bookings WHERE journey_id = ?`)).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(7))

	total, err := repo.BookedSeats(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 7, total)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingDeleteMissingRow(t *testing.T) {
	repo, mock := newBookingRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM bookings WHERE id = ?`)).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 5)
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistsForUser(t *testing.T) {
	repo, mock := newBookingRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT 1 FROM bookings WHERE journey_id = ? AND user_id = ? LIMIT 1`)).
		WithArgs(uint64(3), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT 1 FROM bookings WHERE journey_id = ? AND user_id = ? LIMIT 1`)).
		WithArgs(uint64(3), uint64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err := repo.ExistsForUser(context.Background(), 3, 7)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsForUser(context.Background(), 3, 8)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPassengersByJourney(t *testing.T) {
	repo, mock := newBookingRepo(t)

	rows := sqlmock.NewRows([]string{"id", "name", "seats", "pickup_lat", "pickup_lng"}).
		AddRow(1, "Ayu", 2, -6.19, 106.82).
		AddRow(2, "Budi", 1, -6.21, 106.79)
	mock.ExpectQuery(`SELECT b\.id, u\.name, b\.seats, b\.pickup_lat, b\.pickup_lng`).
		WithArgs(uint64(3)).
		WillReturnRows(rows)

	passengers, err := repo.PassengersByJourney(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, passengers, 2)
	assert.Equal(t, "Ayu", passengers[0].PassengerName)
	assert.Equal(t, 2, passengers[0].Seats)
	assert.Equal(t, uint64(2), passengers[1].BookingID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
