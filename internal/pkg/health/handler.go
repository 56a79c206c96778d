package health

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
)

// Checker reports whether a dependency is reachable
type Checker func(ctx context.Context) error

// Status is the readiness report for one dependency
type Status struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// BuildInfo contains information about the build
type BuildInfo struct {
	Version     string    `json:"version"`
	ServiceName string    `json:"service_name"`
	GoVersion   string    `json:"go_version"`
	Hostname    string    `json:"hostname"`
	ServerTime  time.Time `json:"server_time"`
}

// Handler serves liveness and readiness endpoints
type Handler struct {
	serviceName string
	version     string
	checkers    map[string]Checker
}

// NewHandler creates a health handler with the given dependency checkers
func NewHandler(serviceName, version string, checkers map[string]Checker) *Handler {
	if version == "" {
		version = "development"
	}
	return &Handler{
		serviceName: serviceName,
		version:     version,
		checkers:    checkers,
	}
}

// Ping returns static build information, it never touches dependencies
func (h *Handler) Ping(c echo.Context) error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return c.JSON(http.StatusOK, BuildInfo{
		Version:     h.version,
		ServiceName: h.serviceName,
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
		ServerTime:  time.Now(),
	})
}

// Ready checks every dependency and returns 503 when any is down
func (h *Handler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	statuses := make([]Status, 0, len(h.checkers))
	healthy := true
	for name, check := range h.checkers {
		status := Status{Name: name, Healthy: true}
		if err := check(ctx); err != nil {
			status.Healthy = false
			status.Error = err.Error()
			healthy = false
		}
		statuses = append(statuses, status)
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]interface{}{
		"healthy":      healthy,
		"dependencies": statuses,
	})
}

// RegisterRoutes registers the health endpoints
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ping", h.Ping)
	e.GET("/health", h.Ping)
	e.GET("/health/ready", h.Ready)
}
