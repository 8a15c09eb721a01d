package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/journey-booking/internal/model"
)

// JourneyRepo provides CRUD operations for journeys.  Departure times
// are stored as DATETIME in UTC; the driver connection is opened with
// parseTime=true&loc=UTC so rows scan directly into time.Time.
type JourneyRepo struct {
	db *sql.DB
}

// NewJourneyRepo returns a JourneyRepo bound to the given database.
func NewJourneyRepo(db *sql.DB) *JourneyRepo { return &JourneyRepo{db: db} }

const journeyCols = `id, origin_city_id, destination_city_id, departure_time, total_seats, driver_id, created_at`

// scanJourney reads one journey row from a row scanner.
func scanJourney(row interface{ Scan(...interface{}) error }) (*model.Journey, error) {
	var j model.Journey
	var driverID sql.NullInt64
	err := row.Scan(&j.ID, &j.OriginCityID, &j.DestinationCityID, &j.DepartureTime,
		&j.TotalSeats, &driverID, &j.CreatedAt)
	if err != nil {
		return nil, err
	}
	if driverID.Valid {
		did := uint64(driverID.Int64)
		j.DriverID = &did
	}
	j.DepartureTime = j.DepartureTime.UTC()
	j.CreatedAt = j.CreatedAt.UTC()
	return &j, nil
}

// Create inserts a new journey and populates the generated ID and
// creation timestamp on the provided record.
func (r *JourneyRepo) Create(ctx context.Context, j *model.Journey) error {
	const q = `INSERT INTO journeys (origin_city_id, destination_city_id, departure_time, total_seats, driver_id) VALUES (?, ?, ?, ?, ?)`
	var driverID interface{}
	if j.DriverID != nil {
		driverID = *j.DriverID
	}
	result, err := r.db.ExecContext(ctx, q,
		j.OriginCityID, j.DestinationCityID, j.DepartureTime.UTC(), j.TotalSeats, driverID)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	j.ID = uint64(id)

	created, err := r.GetByID(ctx, j.ID)
	if err != nil {
		return err
	}
	j.CreatedAt = created.CreatedAt
	return nil
}

// GetByID retrieves a journey by its ID.  It returns ErrJourneyNotFound
// when no row matches.
func (r *JourneyRepo) GetByID(ctx context.Context, id uint64) (*model.Journey, error) {
	j, err := scanJourney(r.db.QueryRowContext(ctx,
		`SELECT `+journeyCols+` FROM journeys WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJourneyNotFound
		}
		return nil, err
	}
	return j, nil
}

// Update persists changes to origin, destination, departure time and
// total seats.  It returns ErrJourneyNotFound when the journey does
// not exist.
func (r *JourneyRepo) Update(ctx context.Context, j *model.Journey) error {
	const q = `UPDATE journeys SET origin_city_id = ?, destination_city_id = ?, departure_time = ?, total_seats = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q,
		j.OriginCityID, j.DestinationCityID, j.DepartureTime.UTC(), j.TotalSeats, j.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports zero rows both for a missing id and for a no-op
		// update, so double-check existence before reporting not-found.
		if _, getErr := r.GetByID(ctx, j.ID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// Delete removes a journey by id.  Bookings cascade via the foreign
// key, so no separate cleanup is needed.  Returns ErrJourneyNotFound
// when nothing was deleted.
func (r *JourneyRepo) Delete(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM journeys WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrJourneyNotFound
	}
	return nil
}

// AssignDriver sets (or clears, with nil) the driver on a journey.
func (r *JourneyRepo) AssignDriver(ctx context.Context, journeyID uint64, driverID *uint64) error {
	var val interface{}
	if driverID != nil {
		val = *driverID
	}
	result, err := r.db.ExecContext(ctx, `UPDATE journeys SET driver_id = ? WHERE id = ?`, val, journeyID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, getErr := r.GetByID(ctx, journeyID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// UnassignDriverEverywhere clears the driver from every journey it is
// assigned to.  Used when an administrator deletes a driver account.
func (r *JourneyRepo) UnassignDriverEverywhere(ctx context.Context, driverID uint64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE journeys SET driver_id = NULL WHERE driver_id = ?`, driverID)
	return err
}

// List returns all journeys ordered by departure time ascending.
func (r *JourneyRepo) List(ctx context.Context) ([]model.Journey, error) {
	return r.list(ctx, `SELECT `+journeyCols+` FROM journeys ORDER BY departure_time`)
}

// ListByDriver returns all journeys assigned to the given driver.
func (r *JourneyRepo) ListByDriver(ctx context.Context, driverID uint64) ([]model.Journey, error) {
	return r.list(ctx,
		`SELECT `+journeyCols+` FROM journeys WHERE driver_id = ? ORDER BY departure_time`, driverID)
}

func (r *JourneyRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Journey, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	journeys := make([]model.Journey, 0)
	for rows.Next() {
		j, err := scanJourney(rows)
		if err != nil {
			return nil, err
		}
		journeys = append(journeys, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return journeys, nil
}
