package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/journey-booking/internal/geo"
)

func TestHaversineKm_JakartaBandung(t *testing.T) {
	// Jakarta center to Bandung center, roughly 120-130 km apart.
	d := geo.HaversineKm(-6.2088, 106.8456, -6.9175, 107.6191)

	require.Greater(t, d, 100.0)
	require.Less(t, d, 150.0)
}

func TestHaversineKm_ZeroDistance(t *testing.T) {
	d := geo.HaversineKm(-6.2088, 106.8456, -6.2088, 106.8456)

	assert.Equal(t, 0.0, d)
}

func TestIsWithinRadius_CenterPoint(t *testing.T) {
	// A point 0 km away is trivially inside any radius.
	assert.True(t, geo.IsWithinRadius(-6.2088, 106.8456, -6.2088, 106.8456, 10.0))
}

func TestIsWithinRadius_FarPoint(t *testing.T) {
	// Bandung is ~125 km from Jakarta center, well past a 10 km fence.
	assert.False(t, geo.IsWithinRadius(-6.9175, 107.6191, -6.2088, 106.8456, 10.0))
}

func TestIsWithinRadius_BoundaryInclusive(t *testing.T) {
	centerLat, centerLng := -6.2088, 106.8456

	// Walk due north until we find a point whose computed distance we can
	// then use as the exact fence radius; the boundary must be inside.
	pointLat := centerLat + 10.0/111.0 // ~10 km north
	d := geo.HaversineKm(pointLat, centerLng, centerLat, centerLng)

	assert.True(t, geo.IsWithinRadius(pointLat, centerLng, centerLat, centerLng, d))
	assert.False(t, geo.IsWithinRadius(pointLat, centerLng, centerLat, centerLng, d-0.001))
}

func TestIsWithinRadius_FifteenKmOutsideTenKmFence(t *testing.T) {
	centerLat, centerLng := -6.2088, 106.8456

	// ~15 km north of the center.
	pointLat := centerLat + 15.0/111.0
	d := geo.HaversineKm(pointLat, centerLng, centerLat, centerLng)
	require.InDelta(t, 15.0, d, 0.2)

	assert.False(t, geo.IsWithinRadius(pointLat, centerLng, centerLat, centerLng, 10.0))
}

func TestValidCoordinate(t *testing.T) {
	cases := []struct {
		name string
		lat  float64
		lng  float64
		want bool
	}{
		{"jakarta", -6.2088, 106.8456, true},
		{"north pole", 90, 0, true},
		{"date line", 0, -180, true},
		{"lat too big", 90.001, 0, false},
		{"lng too big", 0, 180.5, false},
		{"nan lat", math.NaN(), 0, false},
		{"nan lng", 0, math.NaN(), false},
		{"inf", math.Inf(1), 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, geo.ValidCoordinate(tc.lat, tc.lng))
		})
	}
}
