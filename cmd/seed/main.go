// cmd/seed/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"chemnitz-facilities-api/config"
	"chemnitz-facilities-api/internal/database"
	"chemnitz-facilities-api/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// seed imports the facility datasets into empty collections and exits.
func main() {
	_ = godotenv.Load()
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "chemnitz-facilities-seed")
	if err != nil {
		log.Fatalf("Could not create logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := database.Open(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to open document store", zap.Error(err))
	}
	defer func() { _ = closeStore(context.Background()) }()

	src, err := database.NewDatasetSource(ctx, cfg)
	if err != nil {
		zapLogger.Fatal("failed to open dataset source", zap.Error(err))
	}

	inserted, err := database.NewSeeder(store, zapLogger).SeedAll(ctx, src)
	if err != nil {
		zapLogger.Fatal("seeding failed", zap.Error(err))
	}
	for category, n := range inserted {
		zapLogger.Info("seeded", zap.String("category", string(category)), zap.Int("documents", n))
	}
}
