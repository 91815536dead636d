package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	acquisitionapp "github.com/leeyunbo/house-ping-sub000/internal/application/acquisition"
	analysisapp "github.com/leeyunbo/house-ping-sub000/internal/application/analysis"
	listingapp "github.com/leeyunbo/house-ping-sub000/internal/application/listing"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/acquisition"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/listing"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/market"
	"github.com/leeyunbo/house-ping-sub000/internal/domain/region"
	"github.com/leeyunbo/house-ping-sub000/internal/infrastructure/cache"
	"github.com/leeyunbo/house-ping-sub000/internal/infrastructure/config"
	"github.com/leeyunbo/house-ping-sub000/internal/infrastructure/logger"
	"github.com/leeyunbo/house-ping-sub000/internal/infrastructure/persistence"
	"github.com/leeyunbo/house-ping-sub000/internal/infrastructure/provider"
	"github.com/leeyunbo/house-ping-sub000/internal/interfaces/http/handler"
	"github.com/leeyunbo/house-ping-sub000/internal/interfaces/http/middleware"
	"github.com/leeyunbo/house-ping-sub000/internal/interfaces/http/router"
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

	log.Info("Starting house-ping",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	// Initialize database with structured GORM logging
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLogger := logger.NewGormLogger(log, gormLogLevel)

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database connection", zap.Error(err))
		}
	}()
	log.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("dbname", cfg.Database.DBName))

	// Initialize repositories
	listingRepo := persistence.NewGormListingRepository(db.DB)
	priceRepo := persistence.NewGormDeclaredPriceRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	regionCodeRepo := persistence.NewGormRegionCodeRepository(db.DB)

	// Region resolution backed by the legal-district code table
	resolver := region.NewResolver(regionCodeRepo)

	// Market transaction pipeline: ministry API behind a read-through
	// database cache, with an optional Redis tier in front
	molitConfig := provider.NewMolitConfig(cfg.Provider.MolitBaseURL, cfg.Provider.MolitServiceKey)
	molitConfig.RequestDelay = cfg.Provider.RequestDelay
	molitConfig.Timeout = cfg.Provider.Timeout
	molit, err := provider.NewMolitAdapter(molitConfig, log)
	if err != nil {
		log.Fatal("Failed to initialize transaction source", zap.Error(err))
	}

	var transactions market.TransactionReader = cache.NewTransactionCache(
		transactionRepo, molit, cfg.Cache.TransactionTTL, cfg.Cache.MonthsBack, log)
	if cfg.Redis.Enabled {
		redisTier, err := cache.NewRedisTransactionCache(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, transactions, cfg.Cache.TransactionTTL, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		transactions = redisTier
		log.Info("Redis transaction cache tier enabled", zap.String("addr", cfg.Redis.Addr()))
	}

	// Listing providers per source, ordered primary first. The portal API
	// leads, the headless-browser scraper (when enabled) degrades, and
	// previously stored listings are the terminal fallback.
	applyHomeConfig := provider.NewApplyHomeConfig(cfg.Provider.ApplyHomeBaseURL, cfg.Provider.ApplyHomeServiceKey)
	applyHomeConfig.PageSize = cfg.Provider.ApplyHomePageSize
	applyHomeConfig.RequestDelay = cfg.Provider.RequestDelay
	applyHomeConfig.Timeout = cfg.Provider.Timeout

	sources := []listing.Source{listing.SourceApartment, listing.SourcePublicRental}
	orchestrators := make([]*acquisitionapp.SourceOrchestrator, 0, len(sources))
	syncProviders := make([]listingapp.SyncProvider, 0, len(sources))

	for _, source := range sources {
		apiAdapter, err := provider.NewApplyHomeAdapter(applyHomeConfig, source, log)
		if err != nil {
			log.Fatal("Failed to initialize announcement provider",
				zap.String("source", string(source)), zap.Error(err))
		}

		providers := []acquisition.Provider{apiAdapter}
		if cfg.Provider.ApplyHomeWebEnabled && source == listing.SourceApartment {
			webAdapter, err := provider.NewApplyHomeWebAdapter(&provider.ApplyHomeWebConfig{
				URL:       cfg.Provider.ApplyHomeWebURL,
				NoSandbox: true,
			}, source, log)
			if err != nil {
				log.Fatal("Failed to initialize web scraper provider", zap.Error(err))
			}
			defer webAdapter.Close()
			providers = append(providers, webAdapter)
		}
		providers = append(providers, provider.NewDatabaseFallbackAdapter(listingRepo, source, log))

		orchestrators = append(orchestrators, acquisitionapp.NewSourceOrchestrator(source, providers, log))
		// Synchronization only consumes upstream providers. Feeding stored
		// listings back into the store would mask upstream outages.
		syncProviders = append(syncProviders, listingapp.SyncProvider{
			Source:   source,
			Provider: apiAdapter,
		})
	}

	// Initialize application services
	collector := acquisitionapp.NewCollector(orchestrators, cfg.Sync.TargetAreas, log)
	syncService := listingapp.NewSyncService(
		syncProviders, cfg.Sync.TargetAreas, listingRepo, priceRepo, cfg.Sync.Retention, log)

	classifier := analysisapp.NewClassifier(priceRepo, resolver, transactions, analysisapp.ClassifierConfig{
		AcceptDistanceSqm:   cfg.Analysis.AcceptDistanceSqm,
		MaxBuildingAgeYears: cfg.Analysis.MaxBuildingAgeYears,
		CheapRatio:          decimal.NewFromFloat(cfg.Analysis.CheapRatio),
		ExpensiveRatio:      decimal.NewFromFloat(cfg.Analysis.ExpensiveRatio),
	}, log)
	analysisService := analysisapp.NewService(
		listingRepo, priceRepo, resolver, transactions, classifier, log)

	// Initialize handlers
	listingHandler := handler.NewListingHandler(
		listingRepo, syncService, collector, analysisService, log)

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsConfig(cfg)))
	engine.Use(middleware.BodyLimit(1 << 20))

	engine.GET("/healthz", healthHandler(db, log))

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(listingHandler).
		Setup()

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// corsConfig builds the CORS middleware configuration from app config
func corsConfig(cfg *config.Config) middleware.CORSConfig {
	corsCfg := middleware.DefaultCORSConfig()
	if cfg.App.Env != "production" {
		corsCfg.AllowOrigins = []string{"*"}
		corsCfg.AllowCredentials = false
	}
	return corsCfg
}

// healthHandler reports process and database health
func healthHandler(db *persistence.Database, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "ok"

		if err := db.Ping(); err != nil {
			log.Error("Health check: database ping failed", zap.Error(err))
			status = http.StatusServiceUnavailable
			dbStatus = "unavailable"
		}

		c.JSON(status, gin.H{
			"status":   dbStatus,
			"time":     time.Now().UTC().Format(time.RFC3339),
			"database": dbStatus,
		})
	}
}
