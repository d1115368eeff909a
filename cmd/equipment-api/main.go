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
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/ulk-sapr/equipment-api/api/swagger"
	"github.com/ulk-sapr/equipment-api/internal/handler"
	"github.com/ulk-sapr/equipment-api/internal/repository"
	"github.com/ulk-sapr/equipment-api/internal/router"
	"github.com/ulk-sapr/equipment-api/internal/service"
	"github.com/ulk-sapr/equipment-api/pkg/cache"
	"github.com/ulk-sapr/equipment-api/pkg/config"
	"github.com/ulk-sapr/equipment-api/pkg/database"
	"github.com/ulk-sapr/equipment-api/pkg/logger"
)

const version = "1.0.0"

// @title Equipment Lending API
// @version 1.0.0
// @description Students, room access and equipment checkout/return
// @BasePath /api
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logr.Fatal("failed to migrate database", zap.Error(err))
		}
		logr.Info("database schema applied")
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, "equipment:", logr)
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)

	catalogRepo := repository.NewCatalogRepository(db)
	registry := service.NewStatusRegistry(catalogRepo, cfg.Cache.CatalogTTL, logr)
	if err := registry.Warm(ctx, service.RequiredStatuses...); err != nil {
		logr.Fatal("failed to load status catalog", zap.Error(err))
	}

	validate := validator.New()
	itemRepo := repository.NewItemRepository(db)
	directorySvc := service.NewDirectoryService(repository.NewUserRepository(db), registry, cacheSvc, validate, logr)
	accessSvc := service.NewAccessService(repository.NewAccessRepository(db), directorySvc, cacheSvc, metrics, logr)
	lendingSvc := service.NewLendingService(repository.NewLendingRepository(db), itemRepo, registry, cacheSvc, metrics, cfg.Lending, validate, logr)
	catalogSvc := service.NewCatalogService(catalogRepo, itemRepo, registry, cacheSvc, metrics, validate, logr)

	if cfg.Lending.LegacyReturn {
		logr.Warn("legacy return enabled: returns close the oldest open request of any item")
	}

	engine := router.New(router.Handlers{
		Students:  handler.NewStudentHandler(directorySvc),
		Access:    handler.NewAccessHandler(accessSvc),
		Equipment: handler.NewEquipmentHandler(catalogSvc, lendingSvc),
		Catalog:   handler.NewCatalogHandler(catalogSvc),
		System:    handler.NewMetricsHandler(metrics, db, version, cfg.APIPrefix),
	}, metrics, logr, router.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		RequestTimeout: cfg.RequestTimeout,
		EnableDocs:     cfg.Env != config.EnvProduction,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
