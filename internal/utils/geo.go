package utils

import (
	"math"

	"github.com/mmcloughlin/geohash"
	"github.com/motowave/motowave/internal/pkg/models"
)

// EarthRadiusKm is the spherical-earth approximation radius
const EarthRadiusKm = 6371.0

// DistanceKm calculates the great-circle distance between two coordinates
// in kilometers using the Haversine formula
func DistanceKm(a, b models.Coordinate) float64 {
	// Convert latitude and longitude from degrees to radians
	lat1 := a.Latitude * math.Pi / 180.0
	lon1 := a.Longitude * math.Pi / 180.0
	lat2 := b.Latitude * math.Pi / 180.0
	lon2 := b.Longitude * math.Pi / 180.0

	// Haversine formula
	dLat := lat2 - lat1
	dLon := lon2 - lon1
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// EncodeCell converts a coordinate to a geohash cell of the given precision.
// Used to key cached reverse-geocode results: nearby fixes share a cell.
func EncodeCell(c models.Coordinate, precision uint) string {
	return geohash.EncodeWithPrecision(c.Latitude, c.Longitude, precision)
}

// DecodeCell converts a geohash string back to its center coordinate
func DecodeCell(hash string) models.Coordinate {
	lat, lng := geohash.DecodeCenter(hash)
	return models.Coordinate{Latitude: lat, Longitude: lng}
}
