package models

import "time"

// Coordinate is a plain latitude/longitude pair. It is a value type with
// no identity; route points are Coordinates ordered by array index.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Fix is a single timestamped GPS reading pushed by a device.
type Fix struct {
	Coordinate
	Timestamp time.Time `json:"timestamp"`
}

// CityVisit records a city discovered during a recording session.
// The coordinate is the fix at which the city was first detected.
type CityVisit struct {
	Name      string  `json:"name"`
	StateCode string  `json:"state_code"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeocodeResult is the typed output of the reverse-geocoding gateway.
// City may come from the geocoder's city or subregion field; State may
// be a full state name, a two-letter code, or empty.
type GeocodeResult struct {
	City  string `json:"city"`
	State string `json:"state"`
}
