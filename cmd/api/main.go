package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"stocks/internal/cache"
	"stocks/internal/config"
	"stocks/internal/database"
	"stocks/internal/fetcher"
	"stocks/internal/handlers"
	"stocks/internal/logger"
	"stocks/internal/middleware"
	"stocks/internal/scraper"
	"stocks/internal/services"
	"stocks/internal/store"
	"stocks/internal/validator"

	_ "stocks/internal/docs" // Import swagger docs
)

// @title           Stocks API
// @version         1.0
// @description     Stock price history and insider trades scraped from Nasdaq, with price-difference analytics.

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description Pipeline API key.

func main() {
	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(appConfig.App.Env, appConfig.Log.Level)
	defer logger.Sync()
	log := logger.Get()

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	analyticsCache := newCache(appConfig)
	if closer, ok := analyticsCache.(io.Closer); ok {
		defer closer.Close()
	}

	// Initialize services
	db := dbManager.DB()
	stockService := services.NewStockService(db)
	analyticsService := services.NewAnalyticsService(db, analyticsCache, logger.Named("analytics"))

	source := scraper.NewClient(
		scraper.NewHTTPClient(appConfig.Source.Timeout),
		appConfig.Source.BaseURL,
		appConfig.Source.UserAgent,
	)
	runner := fetcher.New(source, store.New(db), analyticsCache, logger.Named("fetcher"), fetcher.Options{
		MaxWorkers:     appConfig.Fetch.Threads,
		MaxTradesPages: appConfig.Fetch.MaxPages,
	})
	fetchService := services.NewFetchService(runner, logger.Named("fetch"))

	// Initialize Gin router
	if appConfig.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	if err := handlers.LoadTemplates(router); err != nil {
		return err
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes := &handlers.Router{
		Stocks:         handlers.NewStockHandler(stockService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService, stockService),
		Fetch:          handlers.NewFetchHandler(fetchService),
		PipelineAPIKey: appConfig.PipelineAPIKey,
	}
	routes.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              ":" + appConfig.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting stocks server on port %s", appConfig.App.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.App.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		log.Infow("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warnw("server shutdown", "error", err)
	}
	// A background fetch run keeps writing until it finishes.
	fetchService.Wait()
	log.Info("Shutdown complete")
	return nil
}

// newCache connects to Redis when an address is configured. The analytics
// endpoints work uncached when Redis is absent or unreachable.
func newCache(cfg *config.Config) cache.Cache {
	if cfg.Redis.Addr == "" {
		return cache.Nop{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rc, err := cache.Connect(ctx, &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Cache.TTL)
	if err != nil {
		logger.Get().Warnw("redis unavailable, analytics are not cached", "error", err)
		return cache.Nop{}
	}
	return rc
}
