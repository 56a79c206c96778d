package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/motowave/motowave/internal/pkg/middleware"
	"github.com/motowave/motowave/internal/pkg/models"
	"github.com/motowave/motowave/services/trips"
	httphandler "github.com/motowave/motowave/services/trips/handler/http"
)

// RegisterRoutes wires the trip retrieval endpoints under JWT auth
func RegisterRoutes(e *echo.Echo, cfg models.JWTConfig, tripUC trips.TripUC) {
	h := httphandler.NewTripHandler(tripUC)

	auth := middleware.JWTAuthMiddleware(cfg)

	g := e.Group("/trips", auth)
	g.GET("", h.ListTrips)
	g.GET("/:id", h.GetTrip)

	e.GET("/cities", h.ListVisitedCities, auth)
}
