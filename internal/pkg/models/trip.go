package models

import (
	"time"

	"github.com/google/uuid"
)

// FinalizedTrip is the immutable upload DTO built when the user confirms
// saving a session. It is never mutated after creation.
type FinalizedTrip struct {
	Title      string       `json:"title"`
	DistanceKm float64      `json:"distance_km"`
	Route      []Coordinate `json:"route"`
	Cities     []CityVisit  `json:"cities"`
}

// Trip is the remote trip record
type Trip struct {
	ID            uuid.UUID `json:"id" db:"id"`
	OwnerID       uuid.UUID `json:"owner_id" db:"owner_id"`
	Title         string    `json:"title" db:"title"`
	TotalDistance float64   `json:"total_distance" db:"total_distance"`
	StartLat      *float64  `json:"start_lat,omitempty" db:"start_lat"`
	StartLon      *float64  `json:"start_lon,omitempty" db:"start_lon"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// CityVisitRow is a persisted city visit as stored remotely, with the
// location encoded as a WKT POINT.
type CityVisitRow struct {
	Name        string `json:"name" db:"city_name"`
	State       string `json:"state" db:"state"`
	LocationWKT string `json:"location_wkt" db:"location"`
}

// TripDetail is a retrieved trip together with its raw geometry, before
// WKT decoding.
type TripDetail struct {
	Trip     Trip           `json:"trip"`
	RouteWKT string         `json:"route_wkt"`
	Cities   []CityVisitRow `json:"cities_data"`
}

// TripView is a fully decoded trip as served to clients.
type TripView struct {
	Trip   Trip         `json:"trip"`
	Route  []Coordinate `json:"route"`
	Cities []CityVisit  `json:"cities"`
}

// CityMarker is one distinct visited city for the passport map rollup.
type CityMarker struct {
	CityName string  `json:"city_name" db:"city_name"`
	State    string  `json:"state" db:"state"`
	Lat      float64 `json:"lat" db:"lat"`
	Lon      float64 `json:"lon" db:"lon"`
}

// TripCompletedEvent is published after a trip upload succeeds.
type TripCompletedEvent struct {
	TripID     uuid.UUID `json:"trip_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	Title      string    `json:"title"`
	DistanceKm float64   `json:"distance_km"`
	CityCount  int       `json:"city_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// CityDiscoveredEvent is published when a session records a new city.
type CityDiscoveredEvent struct {
	OwnerID   uuid.UUID `json:"owner_id"`
	City      CityVisit `json:"city"`
	CreatedAt time.Time `json:"created_at"`
}
