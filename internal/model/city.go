package model

// City represents a serviced city as stored in the `cities` table.
// Cities are read-mostly reference data: every journey links an origin
// and destination city, and the origin city's center plus pickup radius
// define the geofence inside which travellers may request pickup.
//
// Fields:
//  ID             – primary key identifier.
//  Name           – unique city name.
//  CenterLat      – latitude of the city center in degrees.
//  CenterLng      – longitude of the city center in degrees.
//  PickupRadiusKm – allowed pickup radius around the center, kilometers.
type City struct {
	ID             uint64  // cities.id
	Name           string  // cities.name
	CenterLat      float64 // cities.center_lat
	CenterLng      float64 // cities.center_lng
	PickupRadiusKm float64 // cities.pickup_radius_km
}
