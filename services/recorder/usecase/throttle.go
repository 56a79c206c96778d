package usecase

import "time"

// ThrottleGate decides whether a reverse-geocode city check is permitted.
// It is a pure decision function over an explicit state, so the policy is
// testable without a session.
type ThrottleGate struct {
	// MinDistanceKm is how far the session must travel between checks.
	MinDistanceKm float64
	// MinInterval is how long the session must wait between checks.
	MinInterval time.Duration
}

// ThrottleState captures everything the gate needs to decide.
type ThrottleState struct {
	DistanceSinceLastCheckKm float64
	TimeSinceLastCheck       time.Duration
	// IsFirstCheck is true while the session has never completed a city
	// check. The origin city must be captured even for short trips.
	IsFirstCheck bool
	// CooldownUntil suppresses all checks after a rate-limit error.
	// Zero means no cooldown is armed.
	CooldownUntil time.Time
}

// ShouldCheckCity reports whether a city check is permitted at now.
func (g ThrottleGate) ShouldCheckCity(state ThrottleState, now time.Time) bool {
	// A rate-limit cooldown suppresses everything, including the first check
	if !state.CooldownUntil.IsZero() && now.Before(state.CooldownUntil) {
		return false
	}

	if state.IsFirstCheck {
		return true
	}

	return state.DistanceSinceLastCheckKm > g.MinDistanceKm &&
		state.TimeSinceLastCheck > g.MinInterval
}
