package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"truck-dispatch-service/internal/adapters/cache"
	"truck-dispatch-service/internal/adapters/repositories"
	"truck-dispatch-service/internal/config"
	"truck-dispatch-service/internal/platform/db"
	"truck-dispatch-service/internal/platform/obs"
)

func main() {
	os.Exit(start())
}

// start returns the process exit code so deferred cleanup and log flushing
// run before main exits.
func start() int {
	envErr := godotenv.Load()

	logger, err := obs.NewLogger(config.Get("APP_ENV", "development"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()
	obs.SetLogger(logger)

	if envErr != nil {
		logger.Info("no .env file found (using environment variables)")
	}

	databaseURL := config.Get("DATABASE_URL", "")
	if databaseURL == "" {
		logger.Error("DATABASE_URL is required")
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	database, err := db.Open(ctx, databaseURL)
	if err != nil {
		logger.Error("open database", zap.Error(err))
		return 1
	}
	defer database.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/reference.yaml")
	if len(os.Args) > 1 {
		seedPath = os.Args[1]
	}

	if err := initAndSeed(ctx, logger, database, seedPath); err != nil {
		logger.Error("dbtool failed", zap.Error(err))
		return 1
	}

	if redisURL := config.Get("REDIS_URL", ""); redisURL != "" {
		if err := invalidateReference(ctx, redisURL); err != nil {
			logger.Warn("reference cache not invalidated", zap.Error(err))
		}
	}
	return 0
}

func initAndSeed(ctx context.Context, logger *zap.Logger, database *sql.DB, seedPath string) error {
	logger.Info("initializing database schema")
	if err := repositories.InitSchema(ctx, database); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	logger.Info("schema ready")

	logger.Info("seeding database", zap.String("path", seedPath))
	if err := repositories.SeedFromFile(ctx, database, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	logger.Info("seeding complete")

	return nil
}

// Cached toll gates and provinces would otherwise outlive the reseed until
// their TTL.
func invalidateReference(ctx context.Context, redisURL string) error {
	rdb, err := cache.NewRedisClient(redisURL)
	if err != nil {
		return err
	}
	defer rdb.Close()

	return cache.NewRedisReferenceCache(rdb, nil, 0).Invalidate(ctx)
}
