package trips

import (
	"context"

	"github.com/google/uuid"
	"github.com/motowave/motowave/internal/pkg/models"
)

// TripRepo defines the remote trip store boundary
type TripRepo interface {
	// InsertTrip creates the trip row and returns it
	InsertTrip(ctx context.Context, ownerID uuid.UUID, trip models.FinalizedTrip) (*models.Trip, error)

	// InsertRoute stores the trip's route as a WKT LINESTRING
	InsertRoute(ctx context.Context, tripID uuid.UUID, routeWKT string) error

	// InsertCityVisits stores the trip's visited cities. Failures here are
	// non-fatal to the upload.
	InsertCityVisits(ctx context.Context, tripID uuid.UUID, cities []models.CityVisitRow) error

	// GetTripDetail returns one trip with its raw geometry
	GetTripDetail(ctx context.Context, ownerID, tripID uuid.UUID) (*models.TripDetail, error)

	// ListTrips returns the owner's trips, newest first
	ListTrips(ctx context.Context, ownerID uuid.UUID) ([]models.Trip, error)

	// ListVisitedCities returns the owner's distinct visited cities
	ListVisitedCities(ctx context.Context, ownerID uuid.UUID) ([]models.CityMarker, error)
}
