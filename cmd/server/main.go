package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	alertapp "github.com/retail/backend/internal/application/alert"
	inventoryapp "github.com/retail/backend/internal/application/inventory"
	reportapp "github.com/retail/backend/internal/application/report"
	"github.com/retail/backend/internal/domain/catalog"
	"github.com/retail/backend/internal/infrastructure/cache"
	"github.com/retail/backend/internal/infrastructure/config"
	"github.com/retail/backend/internal/infrastructure/event"
	"github.com/retail/backend/internal/infrastructure/logger"
	"github.com/retail/backend/internal/infrastructure/persistence"
	"github.com/retail/backend/internal/infrastructure/scheduler"
	"github.com/retail/backend/internal/interfaces/http/handler"
	"github.com/retail/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
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

	log.Info("Starting stock engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}
	log.Info("Database connected")

	// Initialize repositories
	inventoryRepo := persistence.NewGormInventoryRowRepository(db.DB)
	alertRepo := persistence.NewGormRestockAlertRepository(db.DB)
	saleReader := persistence.NewGormSaleReader(db.DB)
	profitRepo := persistence.NewGormProfitabilityRepository(db.DB)
	activityReader := persistence.NewGormActivityReader(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB, cfg.Database.LockTimeout)

	// Product names for alert snapshots, cached when Redis is enabled
	var productReader catalog.ProductReader = persistence.NewGormProductReader(db.DB)
	var nameCache cache.NameCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisNameCache(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		nameCache = redisCache
		log.Info("Redis product name cache enabled", zap.String("addr", cfg.Redis.Addr()))
	} else {
		nameCache = cache.NewInMemoryNameCache()
	}
	defer func() {
		if err := nameCache.Close(); err != nil {
			log.Error("Error closing name cache", zap.Error(err))
		}
	}()
	productReader = cache.NewCachingProductReader(productReader, nameCache, cfg.Redis.CacheTTL, log)

	// Initialize application services
	stockService := inventoryapp.NewStockService(inventoryRepo, saleReader, txScope)
	profitabilityService := reportapp.NewProfitabilityService(activityReader, profitRepo, cfg.Report.Stores, log)
	alertManager := alertapp.NewManager(log, alertapp.Config{
		WatchedStores:     cfg.Alert.WatchedStores,
		OpenThreshold:     cfg.Alert.OpenThreshold,
		RecoveryThreshold: cfg.Alert.RecoveryThreshold,
	}, alertRepo, productReader, saleReader)

	// Event bus wires stock mutations to alert bookkeeping
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(alertManager)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	stockService.SetEventPublisher(eventBus)
	log.Info("Alert manager subscribed", zap.Strings("event_types", alertManager.EventTypes()))

	// Monthly profitability recompute
	if cfg.Scheduler.Enabled {
		cronConfig := scheduler.MonthlyCronSchedulerConfig{
			Enabled:           true,
			DayOfMonth:        cfg.Scheduler.DayOfMonth,
			Hour:              cfg.Scheduler.Hour,
			Minute:            cfg.Scheduler.Minute,
			JobTimeout:        cfg.Scheduler.JobTimeout,
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
			RetryAttempts:     cfg.Scheduler.RetryAttempts,
			RetryDelay:        cfg.Scheduler.RetryDelay,
		}
		jobRepo := scheduler.NewSchedulerJobRepository(db.DB)
		cron := scheduler.NewMonthlyCronScheduler(cronConfig, profitabilityService, jobRepo, log)
		if err := cron.Start(context.Background()); err != nil {
			log.Fatal("Failed to start monthly scheduler", zap.Error(err))
		}
		defer func() {
			if err := cron.Stop(context.Background()); err != nil {
				log.Error("Error stopping monthly scheduler", zap.Error(err))
			}
		}()
		log.Info("Monthly profitability scheduler started",
			zap.Int("day_of_month", cfg.Scheduler.DayOfMonth),
			zap.Int("hour", cfg.Scheduler.Hour),
		)
	}

	// Initialize HTTP layer
	engine, err := router.New(cfg, log, router.Handlers{
		Stock:  handler.NewStockHandler(stockService),
		Alert:  handler.NewAlertHandler(alertManager),
		Report: handler.NewReportHandler(profitabilityService),
		System: handler.NewSystemHandler(db),
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
