package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/motowave/motowave/internal/pkg/logger"
	"github.com/motowave/motowave/internal/pkg/middleware"
	"github.com/motowave/motowave/internal/utils"
	"github.com/motowave/motowave/services/trips"
)

// TripHandler exposes the trip store over HTTP
type TripHandler struct {
	tripUC trips.TripUC
}

// NewTripHandler creates the trip HTTP handler
func NewTripHandler(tripUC trips.TripUC) *TripHandler {
	return &TripHandler{tripUC: tripUC}
}

// ListTrips handles GET /trips
func (h *TripHandler) ListTrips(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	result, err := h.tripUC.ListTrips(c.Request().Context(), ownerID)
	if err != nil {
		logger.Error("Failed to list trips", logger.ErrorField(err))
		return utils.InternalServerErrorResponse(c, "Failed to list trips")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Trips", result)
}

// GetTrip handles GET /trips/:id
func (h *TripHandler) GetTrip(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid trip id")
	}

	view, err := h.tripUC.GetTrip(c.Request().Context(), ownerID, tripID)
	if err != nil {
		if errors.Is(err, trips.ErrTripNotFound) {
			return utils.NotFoundResponse(c, "Trip not found")
		}
		logger.Error("Failed to get trip", logger.ErrorField(err))
		return utils.InternalServerErrorResponse(c, "Failed to get trip")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Trip", view)
}

// ListVisitedCities handles GET /cities
func (h *TripHandler) ListVisitedCities(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	result, err := h.tripUC.ListVisitedCities(c.Request().Context(), ownerID)
	if err != nil {
		logger.Error("Failed to list visited cities", logger.ErrorField(err))
		return utils.InternalServerErrorResponse(c, "Failed to list visited cities")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Visited cities", result)
}
