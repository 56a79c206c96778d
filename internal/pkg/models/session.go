package models

import "time"

// SessionState represents the lifecycle state of a recording session
type SessionState string

const (
	SessionStateIdle       SessionState = "IDLE"
	SessionStateRecording  SessionState = "RECORDING"
	SessionStatePaused     SessionState = "PAUSED"
	SessionStateFinalizing SessionState = "FINALIZING"
)

// SessionSnapshot is the durable portion of an in-progress session. It is
// what the session store persists and what survives a process restart.
// Invariant: DistanceKm never decreases while a session is alive, and an
// empty route implies zero distance.
type SessionSnapshot struct {
	Route      []Coordinate `json:"route"`
	DistanceKm float64      `json:"distance_km"`
	Cities     []CityVisit  `json:"cities"`
}

// SessionStatus is the live view of a session returned to clients.
type SessionStatus struct {
	State      SessionState `json:"state"`
	DistanceKm float64      `json:"distance_km"`
	RouteSize  int          `json:"route_size"`
	Cities     []CityVisit  `json:"cities"`
	StartedAt  *time.Time   `json:"started_at,omitempty"`
}
