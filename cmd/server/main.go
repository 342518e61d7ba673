package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/shoplive-catalog/config"
	"github.com/ikkim/shoplive-catalog/internal/app/controller"
	"github.com/ikkim/shoplive-catalog/internal/app/repository"
	"github.com/ikkim/shoplive-catalog/internal/app/service"
	"github.com/ikkim/shoplive-catalog/internal/db"
	"github.com/ikkim/shoplive-catalog/internal/middleware"
	"github.com/ikkim/shoplive-catalog/internal/router"
	"github.com/ikkim/shoplive-catalog/internal/scheduler"
	"github.com/ikkim/shoplive-catalog/internal/storage"
	ws "github.com/ikkim/shoplive-catalog/internal/websocket"
	"github.com/ikkim/shoplive-catalog/pkg/logger"
	"github.com/ikkim/shoplive-catalog/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Server.LogFormat,
		EnableColor: cfg.Server.Environment == "development",
	})

	logger.Info("Starting Shoplive catalog server", logger.Fields{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize Redis (variant sessions)
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to initialize Redis", err)
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	s3Storage := storage.NewS3Storage(cfg.S3)

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.GetDB())
	selectionStore := repository.NewSelectionStore(redis.GetClient(), cfg.Session.TTL)

	// Initialize services
	hub := ws.NewHub()
	indexCache := service.NewIndexCache(productRepo, s3Storage, service.DefaultIndexTTL)
	productService := service.NewProductService(productRepo, service.Invalidators{indexCache, hub})
	variantService := service.NewVariantService(indexCache, selectionStore)
	auditService := service.NewCatalogAuditService(productRepo, s3Storage)

	// Initialize controllers
	productController := controller.NewProductController(productService)
	variantController := controller.NewVariantController(variantService)
	variantSocketController := controller.NewVariantSocketController(variantService, hub, cfg.CORS.AllowedOrigins)
	uploadController := controller.NewUploadController(s3Storage, productService)
	auditController := controller.NewAuditController(auditService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		productController,
		variantController,
		variantSocketController,
		uploadController,
		auditController,
		authMiddleware,
		db.GetDB(),
		redis.GetClient(),
		cfg,
	)
	engine := r.Setup()

	// Start catalog audit scheduler
	var auditScheduler *scheduler.CatalogAuditScheduler
	if cfg.Audit.Enabled {
		auditScheduler = scheduler.NewCatalogAuditScheduler(auditService, cfg.Audit.Schedule)
		if err := auditScheduler.Start(); err != nil {
			logger.Fatal("Failed to start catalog audit scheduler", err)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", logger.Fields{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	if auditScheduler != nil {
		auditScheduler.Stop()
	}
	hub.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
