package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/motowave/motowave/internal/pkg/logger"
	"github.com/motowave/motowave/internal/pkg/models"
)

const defaultShutdownTimeout = 30 * time.Second

// GracefulServer runs the echo server and drains it cleanly on
// SIGINT/SIGTERM so in-flight uploads are not cut off mid-write.
type GracefulServer struct {
	echo   *echo.Echo
	logger *logger.ZapLogger
	cfg    models.ServerConfig
}

// NewGracefulServer wraps an echo instance with the server config.
// Read/write timeouts and the shutdown deadline come from cfg.
func NewGracefulServer(e *echo.Echo, zapLogger *logger.ZapLogger, cfg models.ServerConfig) *GracefulServer {
	e.Server.ReadTimeout = time.Duration(cfg.ReadTimeout) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.WriteTimeout) * time.Second

	return &GracefulServer{
		echo:   e,
		logger: zapLogger,
		cfg:    cfg,
	}
}

// Start serves until an interrupt or termination signal arrives,
// then drains within the configured shutdown timeout.
func (s *GracefulServer) Start() error {
	go func() {
		addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
		s.logger.Info("Starting HTTP server", logger.String("address", addr))

		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	sig := <-quit
	s.logger.Info("Received shutdown signal", logger.String("signal", sig.String()))

	return s.Shutdown()
}

// ShutdownTimeout is the deadline applied while draining connections
func (s *GracefulServer) ShutdownTimeout() time.Duration {
	if s.cfg.ShutdownTimeout <= 0 {
		return defaultShutdownTimeout
	}
	return time.Duration(s.cfg.ShutdownTimeout) * time.Second
}

// Shutdown stops accepting connections and waits for active requests
// up to the configured timeout
func (s *GracefulServer) Shutdown() error {
	s.logger.Info("Shutting down server",
		logger.String("timeout", s.ShutdownTimeout().String()))

	ctx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout())
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", logger.ErrorField(err))
		return err
	}

	s.logger.Info("Server shutdown completed")
	return nil
}

// ShutdownManager collects the close functions of infrastructure
// clients (redis, postgres, nsq) and runs them in registration order
// once the HTTP server has drained.
type ShutdownManager struct {
	logger    *logger.ZapLogger
	functions []func(context.Context) error
}

func NewShutdownManager(zapLogger *logger.ZapLogger) *ShutdownManager {
	return &ShutdownManager{
		logger:    zapLogger,
		functions: make([]func(context.Context) error, 0),
	}
}

// Register appends a cleanup function to run at shutdown
func (sm *ShutdownManager) Register(fn func(context.Context) error) {
	sm.functions = append(sm.functions, fn)
}

// Shutdown runs every registered cleanup. A failing component is
// logged and the rest still close.
func (sm *ShutdownManager) Shutdown(ctx context.Context) error {
	sm.logger.Info("Closing components", logger.Int("components", len(sm.functions)))

	for i, fn := range sm.functions {
		if err := fn(ctx); err != nil {
			sm.logger.Error("Component close failed",
				logger.Int("component", i),
				logger.ErrorField(err))
		}
	}

	sm.logger.Info("All components closed")
	return nil
}
