package domain

import "math"

// Location is an immutable geographic point (latitude, longitude) with an
// optional human-readable address.
type Location struct {
	Lat     float64
	Lng     float64
	Address string
}

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in
// kilometers, using a fixed Earth radius of 6371 km.
func HaversineKm(a, b Location) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
