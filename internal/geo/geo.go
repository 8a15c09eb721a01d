// Package geo provides great-circle distance math for pickup geofence
// validation.  All functions are pure; callers are responsible for
// rejecting invalid coordinates before asking for a distance.
package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometers between
// two points given as (lat, lng) pairs in degrees.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return earthRadiusKm * c
}

// IsWithinRadius reports whether the pickup point lies inside the
// circle of maxRadiusKm around the center.  A point exactly on the
// boundary is inside.
func IsWithinRadius(pickupLat, pickupLng, centerLat, centerLng, maxRadiusKm float64) bool {
	return HaversineKm(pickupLat, pickupLng, centerLat, centerLng) <= maxRadiusKm
}

// ValidCoordinate reports whether lat/lng form a usable WGS-84
// coordinate: finite and within [-90, 90] x [-180, 180].
func ValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
