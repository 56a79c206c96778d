package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/motowave/motowave/internal/pkg/config"
	"github.com/motowave/motowave/internal/pkg/database"
	"github.com/motowave/motowave/internal/pkg/health"
	"github.com/motowave/motowave/internal/pkg/logger"
	nsqpkg "github.com/motowave/motowave/internal/pkg/nsq"
	"github.com/motowave/motowave/internal/pkg/server"
	recordergw "github.com/motowave/motowave/services/recorder/gateway"
	recorderhandler "github.com/motowave/motowave/services/recorder/handler"
	recorderrepo "github.com/motowave/motowave/services/recorder/repository"
	recorderuc "github.com/motowave/motowave/services/recorder/usecase"
	tripsgw "github.com/motowave/motowave/services/trips/gateway"
	tripshandler "github.com/motowave/motowave/services/trips/handler"
	tripsrepo "github.com/motowave/motowave/services/trips/repository"
	tripsuc "github.com/motowave/motowave/services/trips/usecase"
)

const serviceName = "recorder"

func main() {
	cfg := config.InitConfig(".env")

	zapLogger, err := logger.NewZapLogger(cfg.Logger, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	shutdown := server.NewShutdownManager(zapLogger)

	// Infrastructure
	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	shutdown.Register(func(context.Context) error { return redisClient.Close() })

	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", logger.ErrorField(err))
	}
	shutdown.Register(func(context.Context) error { return db.Close() })

	var producer *nsqpkg.Producer
	if cfg.NSQ.Enabled {
		producer, err = nsqpkg.NewProducer(cfg.NSQ.Address)
		if err != nil {
			logger.Fatal("Failed to connect to NSQ", logger.ErrorField(err))
		}
		shutdown.Register(func(context.Context) error {
			producer.Stop()
			return nil
		})
	}

	// Trip store
	tripRepo := tripsrepo.NewTripRepository(db)
	tripService := tripsuc.NewTripService(cfg, tripRepo, tripsgw.NewEventGateway(producer))

	// Recording session
	sessionRepo := recorderrepo.NewSessionRepository(redisClient, cfg.Recorder.SaveDebounce)
	geocoder := recordergw.NewNominatimGateway(cfg.Geocoder, redisClient)
	provider := recordergw.NewPushProvider()
	sessionManager := recorderuc.NewSessionManager(
		cfg, sessionRepo, geocoder, provider, recordergw.NewEventGateway(producer), tripService)

	// HTTP surface
	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())

	health.NewHandler(serviceName, cfg.App.Version, map[string]health.Checker{
		"redis":    redisClient.Ping,
		"postgres": db.PingContext,
	}).RegisterRoutes(e)

	recorderhandler.RegisterRoutes(e, cfg.JWT, sessionManager)
	tripshandler.RegisterRoutes(e, cfg.JWT, tripService)

	srv := server.NewGracefulServer(e, zapLogger, cfg.Server)
	if err := srv.Start(); err != nil {
		logger.Error("Server stopped with error", logger.ErrorField(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), srv.ShutdownTimeout())
	defer cancel()
	if err := shutdown.Shutdown(ctx); err != nil {
		logger.Error("Shutdown finished with errors", logger.ErrorField(err))
	}
}
