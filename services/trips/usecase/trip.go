package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/motowave/motowave/internal/pkg/logger"
	"github.com/motowave/motowave/internal/pkg/models"
	"github.com/motowave/motowave/internal/utils"
	"github.com/motowave/motowave/services/trips"
)

// TripService implements trips.TripUC against the remote trip store
type TripService struct {
	cfg    *models.Config
	repo   trips.TripRepo
	events trips.TripGW
}

// NewTripService creates the trip use case
func NewTripService(cfg *models.Config, repo trips.TripRepo, events trips.TripGW) *TripService {
	return &TripService{
		cfg:    cfg,
		repo:   repo,
		events: events,
	}
}

// Upload saves a finalized trip: the trip row and its route must land,
// city visits are best effort. The whole save runs under the upload
// deadline; exceeding it is classified as ErrUploadTimeout.
func (s *TripService) Upload(ctx context.Context, trip models.FinalizedTrip, ownerID uuid.UUID) (*models.Trip, error) {
	// Guard before touching the network
	if trip.DistanceKm < s.cfg.Upload.MinTripKm {
		return nil, trips.ErrTripTooShort
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Upload.Timeout)
	defer cancel()

	created, err := s.repo.InsertTrip(ctx, ownerID, trip)
	if err != nil {
		return nil, classifyUploadErr(fmt.Errorf("failed to insert trip: %w", err))
	}

	if err := s.repo.InsertRoute(ctx, created.ID, utils.ToLineString(trip.Route)); err != nil {
		return nil, classifyUploadErr(fmt.Errorf("failed to insert route: %w", err))
	}

	// City visits are supplementary data; losing them must not fail an
	// otherwise complete upload
	if len(trip.Cities) > 0 {
		rows := make([]models.CityVisitRow, 0, len(trip.Cities))
		for _, city := range trip.Cities {
			rows = append(rows, models.CityVisitRow{
				Name:  city.Name,
				State: city.StateCode,
				LocationWKT: utils.ToPoint(models.Coordinate{
					Latitude:  city.Latitude,
					Longitude: city.Longitude,
				}),
			})
		}
		if err := s.repo.InsertCityVisits(ctx, created.ID, rows); err != nil {
			logger.Warn("Failed to save city visits",
				logger.String("trip_id", created.ID.String()),
				logger.ErrorField(err))
		}
	}

	event := models.TripCompletedEvent{
		TripID:     created.ID,
		OwnerID:    ownerID,
		Title:      created.Title,
		DistanceKm: created.TotalDistance,
		CityCount:  len(trip.Cities),
		CreatedAt:  time.Now(),
	}
	go func() {
		if err := s.events.PublishTripCompleted(context.Background(), event); err != nil {
			logger.Warn("Failed to publish trip completed event", logger.ErrorField(err))
		}
	}()

	return created, nil
}

// GetTrip returns one trip with its geometry decoded from WKT
func (s *TripService) GetTrip(ctx context.Context, ownerID, tripID uuid.UUID) (*models.TripView, error) {
	detail, err := s.repo.GetTripDetail(ctx, ownerID, tripID)
	if err != nil {
		return nil, err
	}

	view := &models.TripView{Trip: detail.Trip}

	if detail.RouteWKT != "" {
		route, err := utils.ParseLineString(detail.RouteWKT)
		if err != nil {
			return nil, fmt.Errorf("failed to decode trip route: %w", err)
		}
		view.Route = route
	}

	for _, row := range detail.Cities {
		visit := models.CityVisit{Name: row.Name, StateCode: row.State}
		if row.LocationWKT != "" {
			point, err := utils.ParsePoint(row.LocationWKT)
			if err != nil {
				return nil, fmt.Errorf("failed to decode city location: %w", err)
			}
			visit.Latitude = point.Latitude
			visit.Longitude = point.Longitude
		}
		view.Cities = append(view.Cities, visit)
	}

	return view, nil
}

// ListTrips returns the owner's trips, newest first
func (s *TripService) ListTrips(ctx context.Context, ownerID uuid.UUID) ([]models.Trip, error) {
	return s.repo.ListTrips(ctx, ownerID)
}

// ListVisitedCities returns the owner's distinct visited cities
func (s *TripService) ListVisitedCities(ctx context.Context, ownerID uuid.UUID) ([]models.CityMarker, error) {
	return s.repo.ListVisitedCities(ctx, ownerID)
}

// classifyUploadErr maps infrastructure failures onto the upload error
// taxonomy. Auth classification happens in the repository, where the
// driver error codes are visible.
func classifyUploadErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", trips.ErrUploadTimeout, err)
	}
	return err
}
