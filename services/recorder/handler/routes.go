package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/motowave/motowave/internal/pkg/middleware"
	"github.com/motowave/motowave/internal/pkg/models"
	"github.com/motowave/motowave/services/recorder"
	httphandler "github.com/motowave/motowave/services/recorder/handler/http"
)

// RegisterRoutes wires the session endpoints under JWT auth
func RegisterRoutes(e *echo.Echo, cfg models.JWTConfig, sessionUC recorder.SessionUC) {
	h := httphandler.NewSessionHandler(sessionUC)

	g := e.Group("/session", middleware.JWTAuthMiddleware(cfg))
	g.GET("", h.Status)
	g.DELETE("", h.DiscardSession)
	g.POST("/start", h.StartTracking)
	g.POST("/pause", h.PauseTracking)
	g.POST("/fixes", h.PushFix)
	g.POST("/finish", h.FinishTrip)
}
