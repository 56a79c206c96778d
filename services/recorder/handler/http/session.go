package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/motowave/motowave/internal/pkg/logger"
	"github.com/motowave/motowave/internal/pkg/middleware"
	"github.com/motowave/motowave/internal/pkg/models"
	"github.com/motowave/motowave/internal/utils"
	"github.com/motowave/motowave/services/recorder"
	"github.com/motowave/motowave/services/trips"
)

// SessionHandler exposes the recording session over HTTP
type SessionHandler struct {
	sessionUC recorder.SessionUC
}

// NewSessionHandler creates the session HTTP handler
func NewSessionHandler(sessionUC recorder.SessionUC) *SessionHandler {
	return &SessionHandler{sessionUC: sessionUC}
}

type fixRequest struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type finishRequest struct {
	Title string `json:"title"`
}

// StartTracking handles POST /session/start
func (h *SessionHandler) StartTracking(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	if err := h.sessionUC.StartTracking(c.Request().Context(), ownerID); err != nil {
		if errors.Is(err, recorder.ErrSaveInProgress) {
			return utils.ConflictResponse(c, "A trip save is in progress, wait for it to finish")
		}
		logger.Error("Failed to start tracking", logger.ErrorField(err))
		return utils.InternalServerErrorResponse(c, "Failed to start tracking")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Tracking started", nil)
}

// PauseTracking handles POST /session/pause
func (h *SessionHandler) PauseTracking(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	if err := h.sessionUC.PauseTracking(c.Request().Context(), ownerID); err != nil {
		logger.Error("Failed to pause tracking", logger.ErrorField(err))
		return utils.InternalServerErrorResponse(c, "Failed to pause tracking")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Tracking paused", nil)
}

// PushFix handles POST /session/fixes
func (h *SessionHandler) PushFix(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	var req fixRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body")
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		return utils.BadRequestResponse(c, "Coordinate out of range")
	}

	fix := models.Fix{
		Coordinate: models.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude},
		Timestamp:  time.Now(),
	}
	if req.Timestamp != nil {
		fix.Timestamp = *req.Timestamp
	}

	if err := h.sessionUC.PushFix(c.Request().Context(), ownerID, fix); err != nil {
		logger.Error("Failed to push fix", logger.ErrorField(err))
		return utils.InternalServerErrorResponse(c, "Failed to push fix")
	}

	return utils.SuccessResponse(c, http.StatusAccepted, "Fix accepted", nil)
}

// Status handles GET /session
func (h *SessionHandler) Status(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	status, err := h.sessionUC.Status(c.Request().Context(), ownerID)
	if err != nil {
		logger.Error("Failed to get session status", logger.ErrorField(err))
		return utils.InternalServerErrorResponse(c, "Failed to get session status")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Session status", status)
}

// FinishTrip handles POST /session/finish
func (h *SessionHandler) FinishTrip(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	var req finishRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body")
	}
	if req.Title == "" {
		return utils.BadRequestResponse(c, "Title is required")
	}

	trip, err := h.sessionUC.FinishTrip(c.Request().Context(), ownerID, req.Title)
	if err != nil {
		switch {
		case errors.Is(err, recorder.ErrTrackingActive):
			return utils.ConflictResponse(c, "Pause tracking before saving the trip")
		case errors.Is(err, recorder.ErrSaveInProgress):
			return utils.ConflictResponse(c, "A trip save is already in progress")
		case errors.Is(err, trips.ErrTripTooShort):
			return utils.BadRequestResponse(c, "Trip is too short to save")
		case errors.Is(err, trips.ErrAuthExpired):
			return utils.UnauthorizedResponse(c, "Session expired, sign in again and retry")
		case errors.Is(err, trips.ErrUploadTimeout):
			return utils.GatewayTimeoutResponse(c, "Saving timed out, your trip is kept locally")
		}
		logger.Error("Failed to save trip", logger.ErrorField(err))
		return utils.InternalServerErrorResponse(c, "Failed to save trip, your trip is kept locally")
	}

	return utils.SuccessResponse(c, http.StatusCreated, "Trip saved", trip)
}

// DiscardSession handles DELETE /session
func (h *SessionHandler) DiscardSession(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	if err := h.sessionUC.DiscardSession(c.Request().Context(), ownerID); err != nil {
		if errors.Is(err, recorder.ErrSaveInProgress) {
			return utils.ConflictResponse(c, "A trip save is in progress, wait for it to finish")
		}
		logger.Error("Failed to discard session", logger.ErrorField(err))
		return utils.InternalServerErrorResponse(c, "Failed to discard session")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Session discarded", nil)
}
