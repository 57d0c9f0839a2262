package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"truck-dispatch-service/internal/adapters/cache"
	"truck-dispatch-service/internal/adapters/directions"
	"truck-dispatch-service/internal/adapters/repositories"
	"truck-dispatch-service/internal/api"
	"truck-dispatch-service/internal/config"
	"truck-dispatch-service/internal/platform/db"
	"truck-dispatch-service/internal/platform/obs"
	"truck-dispatch-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, ORS) behind ports and starts the HTTP server.
func main() {
	os.Exit(start())
}

// start returns the process exit code so deferred log flushing runs before
// main exits.
func start() int {
	envErr := godotenv.Load()

	logger, err := obs.NewLogger(config.Get("APP_ENV", "production"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()
	obs.SetLogger(logger)

	if envErr != nil {
		logger.Info("no .env file found (using environment variables)")
	}

	if err := run(logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return 1
	}
	return 0
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := directions.NewORSDirectionsProvider(directions.ORSOptions{
		APIKey:            cfg.ORSAPIKey,
		BaseURL:           cfg.ORSBaseURL,
		Timeout:           cfg.ORSTimeout,
		RequestsPerMinute: cfg.ORSRequestsPerMinute,
	})
	if err != nil {
		return err
	}

	deps := api.Deps{VehicleSearchPrecision: cfg.Engine.VehicleSearchPrecision}
	reference := &cache.RedisReferenceCache{TTL: cfg.ReferenceCacheTTL, Source: services.StaticReference{}}

	// Without a database the service still plans routes; callers then inline
	// their high-risk areas and vehicle pools.
	if cfg.DatabaseURL != "" {
		database, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := repositories.InitSchema(ctx, database); err != nil {
			return err
		}
		wireStores(&deps, reference, database)
	} else {
		logger.Warn("DATABASE_URL not set, running without stores")
	}

	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		reference.RDB = rdb
	}

	e := cfg.Engine
	optimizer := &services.TruckRouteOptimizer{
		Provider:  provider,
		Reference: reference,
		Zones: services.ExclusionZoneBuilder{Limits: services.ExclusionZoneLimits{
			MaxZones:    e.MaxExclusionZones,
			MaxVertices: e.MaxExclusionVertices,
		}},
		Breaks:                  services.BreakPolicy{MaxContinuousDrive: e.MaxContinuousDrive, BreakDuration: e.BreakDuration},
		TollGateThresholdMeters: e.TollGateThresholdM,
		ProvinceSampleMeters:    e.ProvinceSampleMeters,
	}
	deps.Optimizer = optimizer
	deps.Finder = &services.ClosestVehicleFinder{
		Optimizer: optimizer,
		Risk:      services.RiskCheck{SampleMeters: e.ProvinceSampleMeters, CorridorMeters: e.RiskCorridorMeters},
		Prefetch:  e.DispatchPrefetch,
	}

	// Write timeout covers a dispatch that walks several candidates, each
	// with a provider call and one retry.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown did not complete", zap.Error(err))
		_ = srv.Close()
	}
	return nil
}

func wireStores(deps *api.Deps, reference *cache.RedisReferenceCache, database *sql.DB) {
	refRepo := repositories.NewPostgresReferenceRepository(database)
	reference.Source = refRepo
	deps.Areas = refRepo
	deps.Vehicles = repositories.NewPostgresVehicleRepository(database)
	deps.Routes = repositories.NewPostgresRouteRepository(database)
}
