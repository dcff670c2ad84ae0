package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	inventoryapp "github.com/retailpos/backend/internal/application/inventory"
	returnsapp "github.com/retailpos/backend/internal/application/returns"
	"github.com/retailpos/backend/internal/infrastructure/cache"
	"github.com/retailpos/backend/internal/infrastructure/config"
	"github.com/retailpos/backend/internal/infrastructure/event"
	"github.com/retailpos/backend/internal/infrastructure/logger"
	"github.com/retailpos/backend/internal/infrastructure/persistence"
	"github.com/retailpos/backend/internal/interfaces/http/handler"
	"github.com/retailpos/backend/internal/interfaces/http/middleware"
	"github.com/retailpos/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting returns engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	returnRepo := persistence.NewGormReturnRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Initialize inventory appliers shared by return transitions
	serialLedger := inventoryapp.NewSerialLedger(log)
	stockApplier := inventoryapp.NewStockApplier(log)

	// Initialize application services
	returnService := returnsapp.NewReturnService(returnRepo, saleRepo, txScope, serialLedger, stockApplier, log)

	// Initialize read-model cache (Redis when configured, in-memory otherwise)
	cacheFactory := cache.NewReturnCacheFactory(cfg.Redis, cfg.Cache.TTL, cache.WithLogger(log))
	returnCache, err := cacheFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize return cache", zap.Error(err))
	}
	returnService.SetCache(returnCache)

	// Initialize in-process event bus and subscribe cross-cutting handlers
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(returnsapp.NewReturnAuditHandler(log))
	eventBus.Subscribe(returnsapp.NewCacheInvalidationHandler(returnCache, log))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	returnService.SetEventPublisher(eventBus)

	// Initialize HTTP handlers
	returnsHandler := handler.NewReturnsHandler(returnService)
	healthHandler := handler.NewHealthHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	// Liveness and readiness live outside the versioned API
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)

	r := router.NewRouter(engine)

	returnRoutes := router.NewDomainGroup("returns", "/returns")
	returnRoutes.POST("", returnsHandler.Create)
	returnRoutes.GET("", returnsHandler.List)
	returnRoutes.GET("/pending-approval", returnsHandler.ListPendingApproval)
	returnRoutes.GET("/stats/summary", returnsHandler.GetStatusSummary)
	returnRoutes.GET("/number/:return_number", returnsHandler.GetByReturnNumber)
	returnRoutes.GET("/:id", returnsHandler.GetByID)
	returnRoutes.POST("/:id/approve", returnsHandler.Approve)
	returnRoutes.POST("/:id/reject", returnsHandler.Reject)
	returnRoutes.POST("/:id/cancel", returnsHandler.Cancel)
	returnRoutes.POST("/:id/complete", returnsHandler.Complete)
	r.Register(returnRoutes)

	saleRoutes := router.NewDomainGroup("sales", "/sales")
	saleRoutes.GET("/:id/returns", returnsHandler.ListBySale)
	r.Register(saleRoutes)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
