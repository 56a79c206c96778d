package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/motowave/motowave/internal/pkg/models"
	"github.com/motowave/motowave/services/trips"
)

// TripRepository implements trips.TripRepo on PostgreSQL. Geometry is
// exchanged as WKT text: routes as LINESTRING, city locations as POINT.
type TripRepository struct {
	db *sqlx.DB
}

// NewTripRepository creates a PostgreSQL trip repository
func NewTripRepository(db *sqlx.DB) *TripRepository {
	return &TripRepository{db: db}
}

// InsertTrip creates the trip row and returns it
func (r *TripRepository) InsertTrip(ctx context.Context, ownerID uuid.UUID, trip models.FinalizedTrip) (*models.Trip, error) {
	var startLat, startLon *float64
	if len(trip.Route) > 0 {
		startLat = &trip.Route[0].Latitude
		startLon = &trip.Route[0].Longitude
	}

	query := `
		INSERT INTO trips (id, owner_id, title, total_distance, start_lat, start_lon, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, owner_id, title, total_distance, start_lat, start_lon, created_at`

	var created models.Trip
	err := r.db.GetContext(ctx, &created, query,
		uuid.New(), ownerID, trip.Title, trip.DistanceKm, startLat, startLon)
	if err != nil {
		return nil, classifyPgErr(fmt.Errorf("failed to insert trip: %w", err))
	}
	return &created, nil
}

// InsertRoute stores the trip's route geometry from its WKT form
func (r *TripRepository) InsertRoute(ctx context.Context, tripID uuid.UUID, routeWKT string) error {
	query := `
		INSERT INTO trip_routes (trip_id, route)
		VALUES ($1, ST_GeomFromText($2, 4326))`

	if _, err := r.db.ExecContext(ctx, query, tripID, routeWKT); err != nil {
		return classifyPgErr(fmt.Errorf("failed to insert route: %w", err))
	}
	return nil
}

// InsertCityVisits stores the trip's visited cities
func (r *TripRepository) InsertCityVisits(ctx context.Context, tripID uuid.UUID, cities []models.CityVisitRow) error {
	query := `
		INSERT INTO trip_cities (trip_id, city_name, state, location)
		VALUES ($1, $2, $3, ST_GeomFromText($4, 4326))`

	for _, city := range cities {
		if _, err := r.db.ExecContext(ctx, query, tripID, city.Name, city.State, city.LocationWKT); err != nil {
			return classifyPgErr(fmt.Errorf("failed to insert city visit %q: %w", city.Name, err))
		}
	}
	return nil
}

// GetTripDetail returns one trip with its raw WKT geometry
func (r *TripRepository) GetTripDetail(ctx context.Context, ownerID, tripID uuid.UUID) (*models.TripDetail, error) {
	detail := &models.TripDetail{}

	tripQuery := `
		SELECT id, owner_id, title, total_distance, start_lat, start_lon, created_at
		FROM trips
		WHERE id = $1 AND owner_id = $2`

	if err := r.db.GetContext(ctx, &detail.Trip, tripQuery, tripID, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trips.ErrTripNotFound
		}
		return nil, classifyPgErr(fmt.Errorf("failed to get trip: %w", err))
	}

	routeQuery := `SELECT ST_AsText(route) FROM trip_routes WHERE trip_id = $1`
	if err := r.db.GetContext(ctx, &detail.RouteWKT, routeQuery, tripID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, classifyPgErr(fmt.Errorf("failed to get route: %w", err))
	}

	citiesQuery := `
		SELECT city_name, state, ST_AsText(location) AS location
		FROM trip_cities
		WHERE trip_id = $1
		ORDER BY city_name`

	if err := r.db.SelectContext(ctx, &detail.Cities, citiesQuery, tripID); err != nil {
		return nil, classifyPgErr(fmt.Errorf("failed to get city visits: %w", err))
	}

	return detail, nil
}

// ListTrips returns the owner's trips, newest first
func (r *TripRepository) ListTrips(ctx context.Context, ownerID uuid.UUID) ([]models.Trip, error) {
	query := `
		SELECT id, owner_id, title, total_distance, start_lat, start_lon, created_at
		FROM trips
		WHERE owner_id = $1
		ORDER BY created_at DESC`

	result := []models.Trip{}
	if err := r.db.SelectContext(ctx, &result, query, ownerID); err != nil {
		return nil, classifyPgErr(fmt.Errorf("failed to list trips: %w", err))
	}
	return result, nil
}

// ListVisitedCities returns the owner's distinct visited cities with one
// representative location each
func (r *TripRepository) ListVisitedCities(ctx context.Context, ownerID uuid.UUID) ([]models.CityMarker, error) {
	query := `
		SELECT DISTINCT ON (c.city_name, c.state)
			c.city_name, c.state, ST_Y(c.location) AS lat, ST_X(c.location) AS lon
		FROM trip_cities c
		JOIN trips t ON t.id = c.trip_id
		WHERE t.owner_id = $1
		ORDER BY c.city_name, c.state`

	result := []models.CityMarker{}
	if err := r.db.SelectContext(ctx, &result, query, ownerID); err != nil {
		return nil, classifyPgErr(fmt.Errorf("failed to list visited cities: %w", err))
	}
	return result, nil
}

// classifyPgErr maps credential failures onto trips.ErrAuthExpired. The
// store enforces per-owner access with short-lived credentials, so
// authorization errors mean the token aged out mid-session.
func classifyPgErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "28000", "28P01", "42501":
			return fmt.Errorf("%w: %v", trips.ErrAuthExpired, err)
		}
	}
	return err
}
