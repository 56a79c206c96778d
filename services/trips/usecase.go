package trips

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/motowave/motowave/internal/pkg/models"
)

// ErrTripTooShort refuses uploads whose distance is below the minimum.
// It is decided before any network traffic.
var ErrTripTooShort = errors.New("trip is too short to save")

// ErrAuthExpired classifies upload failures caused by expired or revoked
// credentials. The caller should re-authenticate and retry.
var ErrAuthExpired = errors.New("authentication expired")

// ErrUploadTimeout classifies uploads that exceeded the save deadline.
var ErrUploadTimeout = errors.New("trip upload timed out")

// ErrTripNotFound is returned when a trip does not exist or belongs to
// another owner.
var ErrTripNotFound = errors.New("trip not found")

// TripUC defines the trip store use cases
type TripUC interface {
	// Upload saves a finalized trip remotely and returns the created
	// record. Failures are classified: ErrTripTooShort, ErrAuthExpired,
	// ErrUploadTimeout, or a generic error.
	Upload(ctx context.Context, trip models.FinalizedTrip, ownerID uuid.UUID) (*models.Trip, error)

	// GetTrip returns one trip with its decoded route and cities
	GetTrip(ctx context.Context, ownerID, tripID uuid.UUID) (*models.TripView, error)

	// ListTrips returns the owner's trips, newest first
	ListTrips(ctx context.Context, ownerID uuid.UUID) ([]models.Trip, error)

	// ListVisitedCities returns the owner's distinct visited cities
	ListVisitedCities(ctx context.Context, ownerID uuid.UUID) ([]models.CityMarker, error)
}
