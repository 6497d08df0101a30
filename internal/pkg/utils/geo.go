package utils

import (
	"github.com/golang/geo/s2"
	"github.com/landmark-guide/internal/domain"
)

// EarthRadiusMeters is the mean earth radius.
const EarthRadiusMeters = 6371008.8

// Distance is the great-circle (haversine) distance in meters. It is exactly
// symmetric and zero only for identical coordinates.
func Distance(a, b domain.Coordinate) float64 {
	if a == b {
		return 0
	}
	// fixed argument order keeps the float evaluation identical both ways
	if b.Lat < a.Lat || (b.Lat == a.Lat && b.Lon < a.Lon) {
		a, b = b, a
	}
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lon)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// Contains reports whether point lies in the region's rectangle, edges included.
func Contains(region domain.Region, point domain.Coordinate) bool {
	b := region.Bounds()
	return point.Lat >= b.MinLat && point.Lat <= b.MaxLat &&
		point.Lon >= b.MinLon && point.Lon <= b.MaxLon
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	return domain.Coordinate{Lat: lat, Lon: lon}.Valid()
}
