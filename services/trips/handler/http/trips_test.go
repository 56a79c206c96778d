package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motowave/motowave/internal/pkg/middleware"
	"github.com/motowave/motowave/internal/pkg/models"
	"github.com/motowave/motowave/services/trips"
)

type fakeTripUC struct {
	trips   []models.Trip
	view    *models.TripView
	markers []models.CityMarker
	getErr  error
}

func (f *fakeTripUC) Upload(context.Context, models.FinalizedTrip, uuid.UUID) (*models.Trip, error) {
	return nil, nil
}

func (f *fakeTripUC) GetTrip(context.Context, uuid.UUID, uuid.UUID) (*models.TripView, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.view, nil
}

func (f *fakeTripUC) ListTrips(context.Context, uuid.UUID) ([]models.Trip, error) {
	return f.trips, nil
}

func (f *fakeTripUC) ListVisitedCities(context.Context, uuid.UUID) ([]models.CityMarker, error) {
	return f.markers, nil
}

func newTripContext(t *testing.T, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()

	c := echo.New().NewContext(req, rec)
	c.Set(middleware.ContextKeyOwnerID, uuid.New())
	return c, rec
}

func TestListTrips_OK(t *testing.T) {
	uc := &fakeTripUC{trips: []models.Trip{
		{ID: uuid.New(), Title: "sunday ride", TotalDistance: 12.5},
	}}
	h := NewTripHandler(uc)
	c, rec := newTripContext(t, "/trips")

	require.NoError(t, h.ListTrips(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Trip `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "sunday ride", resp.Data[0].Title)
}

func TestGetTrip_OK(t *testing.T) {
	uc := &fakeTripUC{view: &models.TripView{
		Trip:  models.Trip{ID: uuid.New(), Title: "coastal run"},
		Route: []models.Coordinate{{Latitude: -23.96, Longitude: -46.33}},
	}}
	h := NewTripHandler(uc)

	c, rec := newTripContext(t, "/trips/"+uuid.New().String())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	require.NoError(t, h.GetTrip(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetTrip_InvalidID(t *testing.T) {
	h := NewTripHandler(&fakeTripUC{})

	c, rec := newTripContext(t, "/trips/not-a-uuid")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	require.NoError(t, h.GetTrip(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTrip_NotFound(t *testing.T) {
	h := NewTripHandler(&fakeTripUC{getErr: trips.ErrTripNotFound})

	c, rec := newTripContext(t, "/trips/"+uuid.New().String())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	require.NoError(t, h.GetTrip(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListVisitedCities_OK(t *testing.T) {
	uc := &fakeTripUC{markers: []models.CityMarker{
		{CityName: "Santos", State: "SP", Lat: -23.96, Lon: -46.33},
	}}
	h := NewTripHandler(uc)
	c, rec := newTripContext(t, "/cities")

	require.NoError(t, h.ListVisitedCities(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.CityMarker `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Santos", resp.Data[0].CityName)
}
