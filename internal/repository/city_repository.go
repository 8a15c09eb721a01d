package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/journey-booking/internal/model"
)

// CityRepo provides read access to the cities table.  Cities are
// reference data seeded administratively; this service only reads
// them.
type CityRepo struct {
	db *sql.DB
}

// NewCityRepo returns a CityRepo bound to the given database.
func NewCityRepo(db *sql.DB) *CityRepo { return &CityRepo{db: db} }

// GetByID retrieves a city by its ID.  It returns ErrCityNotFound when
// no row matches.
func (r *CityRepo) GetByID(ctx context.Context, id uint64) (*model.City, error) {
	const q = `SELECT id, name, center_lat, center_lng, pickup_radius_km FROM cities WHERE id = ?`
	var c model.City
	err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.CenterLat, &c.CenterLng, &c.PickupRadiusKm)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCityNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns all cities ordered by name.
func (r *CityRepo) List(ctx context.Context) ([]model.City, error) {
	const q = `SELECT id, name, center_lat, center_lng, pickup_radius_km FROM cities ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cities := make([]model.City, 0)
	for rows.Next() {
		var c model.City
		if err := rows.Scan(&c.ID, &c.Name, &c.CenterLat, &c.CenterLng, &c.PickupRadiusKm); err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cities, nil
}
