package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motowave/motowave/internal/pkg/models"
	"github.com/motowave/motowave/services/trips"
)

type fakeTripRepo struct {
	mu sync.Mutex

	insertTripErr   error
	insertRouteErr  error
	insertCitiesErr error

	insertedTrip   *models.FinalizedTrip
	insertedRoute  string
	insertedCities []models.CityVisitRow

	detail *models.TripDetail
}

func (r *fakeTripRepo) InsertTrip(_ context.Context, ownerID uuid.UUID, trip models.FinalizedTrip) (*models.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertTripErr != nil {
		return nil, r.insertTripErr
	}
	r.insertedTrip = &trip
	return &models.Trip{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Title:         trip.Title,
		TotalDistance: trip.DistanceKm,
		CreatedAt:     time.Now(),
	}, nil
}

func (r *fakeTripRepo) InsertRoute(_ context.Context, _ uuid.UUID, routeWKT string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertRouteErr != nil {
		return r.insertRouteErr
	}
	r.insertedRoute = routeWKT
	return nil
}

func (r *fakeTripRepo) InsertCityVisits(_ context.Context, _ uuid.UUID, cities []models.CityVisitRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertCitiesErr != nil {
		return r.insertCitiesErr
	}
	r.insertedCities = cities
	return nil
}

func (r *fakeTripRepo) GetTripDetail(context.Context, uuid.UUID, uuid.UUID) (*models.TripDetail, error) {
	if r.detail == nil {
		return nil, trips.ErrTripNotFound
	}
	return r.detail, nil
}

func (r *fakeTripRepo) ListTrips(context.Context, uuid.UUID) ([]models.Trip, error) {
	return nil, nil
}

func (r *fakeTripRepo) ListVisitedCities(context.Context, uuid.UUID) ([]models.CityMarker, error) {
	return nil, nil
}

type fakeTripGW struct {
	mu     sync.Mutex
	events []models.TripCompletedEvent
}

func (g *fakeTripGW) PublishTripCompleted(_ context.Context, event models.TripCompletedEvent) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events = append(g.events, event)
	return nil
}

func uploadConfig() *models.Config {
	return &models.Config{
		Upload: models.UploadConfig{
			Timeout:   15 * time.Second,
			MinTripKm: 0.05,
		},
	}
}

func sampleTrip() models.FinalizedTrip {
	return models.FinalizedTrip{
		Title:      "mountain loop",
		DistanceKm: 33.7,
		Route: []models.Coordinate{
			{Latitude: -22.9, Longitude: -43.2},
			{Latitude: -22.95, Longitude: -43.3},
		},
		Cities: []models.CityVisit{
			{Name: "Petrópolis", StateCode: "RJ", Latitude: -22.9, Longitude: -43.2},
		},
	}
}

func TestUpload_PersistsTripRouteAndCities(t *testing.T) {
	repo := &fakeTripRepo{}
	gw := &fakeTripGW{}
	svc := NewTripService(uploadConfig(), repo, gw)

	created, err := svc.Upload(context.Background(), sampleTrip(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "mountain loop", created.Title)
	assert.Equal(t, 33.7, created.TotalDistance)

	assert.Equal(t, "LINESTRING(-43.2 -22.9,-43.3 -22.95)", repo.insertedRoute)
	require.Len(t, repo.insertedCities, 1)
	assert.Equal(t, "Petrópolis", repo.insertedCities[0].Name)
	assert.Equal(t, "RJ", repo.insertedCities[0].State)
	assert.Equal(t, "POINT(-43.2 -22.9)", repo.insertedCities[0].LocationWKT)

	require.Eventually(t, func() bool {
		gw.mu.Lock()
		defer gw.mu.Unlock()
		return len(gw.events) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestUpload_TooShortRefusedBeforeAnyWrite(t *testing.T) {
	repo := &fakeTripRepo{}
	svc := NewTripService(uploadConfig(), repo, &fakeTripGW{})

	trip := sampleTrip()
	trip.DistanceKm = 0.01

	_, err := svc.Upload(context.Background(), trip, uuid.New())
	assert.ErrorIs(t, err, trips.ErrTripTooShort)
	assert.Nil(t, repo.insertedTrip)
}

func TestUpload_TimeoutClassified(t *testing.T) {
	repo := &fakeTripRepo{insertTripErr: context.DeadlineExceeded}
	svc := NewTripService(uploadConfig(), repo, &fakeTripGW{})

	_, err := svc.Upload(context.Background(), sampleTrip(), uuid.New())
	assert.ErrorIs(t, err, trips.ErrUploadTimeout)
}

func TestUpload_AuthErrorPassesThrough(t *testing.T) {
	repo := &fakeTripRepo{insertTripErr: trips.ErrAuthExpired}
	svc := NewTripService(uploadConfig(), repo, &fakeTripGW{})

	_, err := svc.Upload(context.Background(), sampleTrip(), uuid.New())
	assert.ErrorIs(t, err, trips.ErrAuthExpired)
}

func TestUpload_RouteFailureFailsUpload(t *testing.T) {
	repo := &fakeTripRepo{insertRouteErr: errors.New("route table unavailable")}
	svc := NewTripService(uploadConfig(), repo, &fakeTripGW{})

	_, err := svc.Upload(context.Background(), sampleTrip(), uuid.New())
	require.Error(t, err)
	assert.NotErrorIs(t, err, trips.ErrUploadTimeout)
}

func TestUpload_CityFailureIsNonFatal(t *testing.T) {
	repo := &fakeTripRepo{insertCitiesErr: errors.New("cities table unavailable")}
	svc := NewTripService(uploadConfig(), repo, &fakeTripGW{})

	created, err := svc.Upload(context.Background(), sampleTrip(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, created)
}

func TestGetTrip_DecodesGeometry(t *testing.T) {
	tripID := uuid.New()
	ownerID := uuid.New()
	repo := &fakeTripRepo{detail: &models.TripDetail{
		Trip:     models.Trip{ID: tripID, OwnerID: ownerID, Title: "coastal run"},
		RouteWKT: "LINESTRING(-46.33 -23.96,-46.63 -23.55)",
		Cities: []models.CityVisitRow{
			{Name: "Santos", State: "SP", LocationWKT: "POINT(-46.33 -23.96)"},
		},
	}}
	svc := NewTripService(uploadConfig(), repo, &fakeTripGW{})

	view, err := svc.GetTrip(context.Background(), ownerID, tripID)
	require.NoError(t, err)

	require.Len(t, view.Route, 2)
	assert.Equal(t, -23.96, view.Route[0].Latitude)
	assert.Equal(t, -46.33, view.Route[0].Longitude)

	require.Len(t, view.Cities, 1)
	assert.Equal(t, "Santos", view.Cities[0].Name)
	assert.Equal(t, "SP", view.Cities[0].StateCode)
	assert.Equal(t, -23.96, view.Cities[0].Latitude)
}

func TestGetTrip_NotFound(t *testing.T) {
	svc := NewTripService(uploadConfig(), &fakeTripRepo{}, &fakeTripGW{})

	_, err := svc.GetTrip(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, trips.ErrTripNotFound)
}
