// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chemnitz-facilities-api/config"
	"chemnitz-facilities-api/internal/account"
	"chemnitz-facilities-api/internal/api/routes"
	"chemnitz-facilities-api/internal/auth"
	"chemnitz-facilities-api/internal/database"
	"chemnitz-facilities-api/internal/facility"
	"chemnitz-facilities-api/internal/favorite"
	"chemnitz-facilities-api/internal/logger"
	"chemnitz-facilities-api/internal/metrics"
	"chemnitz-facilities-api/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration (.env is optional)
	_ = godotenv.Load()
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	// 2. Logger
	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "chemnitz-facilities-api")
	if err != nil {
		log.Fatalf("Could not create logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Document store
	store, closeStore, err := database.Open(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to open document store", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := closeStore(shutdownCtx); err != nil {
			zapLogger.Warn("failed to close document store", zap.Error(err))
		}
	}()

	// 4. Optional dataset import into empty collections
	if cfg.Dataset.SeedOnStart {
		src, err := database.NewDatasetSource(ctx, cfg)
		if err != nil {
			zapLogger.Fatal("failed to open dataset source", zap.Error(err))
		}
		if _, err := database.NewSeeder(store, zapLogger).SeedAll(ctx, src); err != nil {
			zapLogger.Fatal("failed to seed facilities", zap.Error(err))
		}
	}

	// 5. Services
	ttl, _ := cfg.JWT.TTL() // validated by LoadConfig
	m := metrics.New(prometheus.DefaultRegisterer)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, ttl)
	resolver := facility.NewResolver(store, m, zapLogger)
	accounts := account.NewService(store, tokens, m, zapLogger)
	hub := socket.NewHub(zapLogger, socket.WithPongWait(cfg.WebSocket.PongWait))
	favorites := favorite.NewService(store, resolver, hub, m, zapLogger)

	// 6. Router
	router := routes.SetupRouter(routes.Deps{
		Cfg:            cfg,
		Store:          store,
		Resolver:       resolver,
		Accounts:       accounts,
		Favorites:      favorites,
		Hub:            hub,
		Metrics:        m,
		MetricsHandler: promhttp.Handler(),
		Logger:         zapLogger,
	})

	// 7. Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLogger.Info("starting API server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
