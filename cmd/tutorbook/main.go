package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tutorbook/api/swagger"
	"github.com/noah-isme/tutorbook/internal/handler"
	"github.com/noah-isme/tutorbook/internal/repository"
	"github.com/noah-isme/tutorbook/internal/service"
	"github.com/noah-isme/tutorbook/pkg/cache"
	"github.com/noah-isme/tutorbook/pkg/config"
	"github.com/noah-isme/tutorbook/pkg/database"
	"github.com/noah-isme/tutorbook/pkg/logger"
	"github.com/noah-isme/tutorbook/pkg/storage"
)

// @title TutorBook API
// @version 1.0.0
// @description Tutor catalog, lesson requests and slot bookings
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logr.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closeStore()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis, cfg.Cache)
	if err != nil {
		logr.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	validate := service.NewValidator()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.CatalogTTL, logr, cfg.Cache.Enabled && redisClient != nil)
	catalog := service.NewCatalogService(store.Goals, store.Teachers, cacheSvc, cfg.Site.HomeSampleSize, logr)

	checks := map[string]handler.ReadinessCheck{"storage": store.Ping}
	if redisClient != nil {
		checks["cache"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	router, err := handler.NewRouter(handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableMetrics:  cfg.Metrics.Enabled,
		EnableDocs:     cfg.Env != config.EnvProduction,
	}, handler.Services{
		Catalog:  catalog,
		Bookings: service.NewBookingService(store.Bookings, store.Teachers, catalog, metrics, validate, logr),
		Requests: service.NewLessonRequestService(store.Requests, store.Goals, metrics, validate, logr),
		Exports:  service.NewExportService(store.Bookings, store.Teachers, logr, nil, nil),
		Metrics:  metrics,
		Checks:   checks,
	}, logr)
	if err != nil {
		logr.Fatal("failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", store.Driver, "cache", cacheSvc.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}
}

// openStore selects the repositories for the configured storage driver.
func openStore(ctx context.Context, cfg *config.Config) (*repository.Store, func(), error) {
	if cfg.Storage.Driver == config.StoragePostgres {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresStore(db), closeDB(db), nil
	}

	local, err := storage.NewLocalStorage(cfg.Storage.DataDir)
	if err != nil {
		return nil, nil, err
	}
	store, err := repository.NewFileStore(local)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}

func closeDB(db *sqlx.DB) func() {
	return func() { _ = db.Close() }
}
