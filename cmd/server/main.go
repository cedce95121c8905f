package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paper-trader/internal/config"
	"github.com/paper-trader/internal/database"
	"github.com/paper-trader/internal/exchange"
	"github.com/paper-trader/internal/handler"
	"github.com/paper-trader/internal/logger"
	"github.com/paper-trader/internal/middleware"
	"github.com/paper-trader/internal/repository"
	"github.com/paper-trader/internal/service"
	"github.com/paper-trader/internal/strategy"
	"github.com/paper-trader/internal/worker"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Build info (injected at build time via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := database.Init(cfg)
	if err != nil {
		zapLogger.Fatal("failed to initialize database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		zapLogger.Fatal("failed to migrate database", zap.Error(err))
	}
	if err := database.SeedTradingPairs(db); err != nil {
		zapLogger.Fatal("failed to seed trading pairs", zap.Error(err))
	}

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	pairRepo := repository.NewPairRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	strategyRepo := repository.NewStrategyRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	// Initialize services
	quoteClient := exchange.NewBinanceQuoteClient(exchange.BinanceQuoteOptions{
		BaseURL:        cfg.Pricing.QuoteBaseURL,
		Timeout:        cfg.Pricing.TimeoutSeconds,
		RateLimit:      cfg.Pricing.RateLimit,
		RateLimitBurst: cfg.Pricing.RateLimitBurst,
	})
	priceService := service.NewPriceService(quoteClient, rdb, cfg.Pricing.CacheTTL(), nil, zapLogger)
	authService := service.NewAuthService(userRepo, settingsRepo, cfg.JWT)
	accountService := service.NewAccountService(settingsRepo, cfg.Encryption)
	tradingService := service.NewPaperTradingService(
		db, settingsRepo, pairRepo, positionRepo, orderRepo, tradeRepo,
		priceService, zapLogger,
	)
	pnlService := service.NewPnLService(orderRepo, positionRepo, priceService, zapLogger)
	strategyService := service.NewStrategyService(strategyRepo, pairRepo)

	// Initialize workers
	strategy.RegisterDefaults()
	strategyEnv := &strategy.Env{
		Trader:    tradingService,
		Prices:    priceService,
		Positions: positionRepo,
		Logger:    zapLogger,
	}
	strategyWorker := worker.NewStrategyWorker(strategyRepo, strategyEnv, cfg.Scheduler.ScanInterval(), zapLogger)
	alertWorker := worker.NewAlertWorker(alertRepo, priceService, cfg.Scheduler.AlertInterval(), zapLogger)
	go strategyWorker.Start()
	go alertWorker.Start()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	pairHandler := handler.NewPairHandler(pairRepo, priceService)
	tradingHandler := handler.NewTradingHandler(tradingService, pnlService)
	strategyHandler := handler.NewStrategyHandler(strategyService, strategyWorker)
	alertHandler := handler.NewAlertHandler(alertRepo, pairRepo)
	settingsHandler := handler.NewSettingsHandler(accountService)
	wsHandler := handler.NewWSHandler(priceService, 2*time.Second, zapLogger)

	// Create Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(corsMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"version":    Version,
			"commit":     Commit,
			"build_time": BuildTime,
			"time":       time.Now().Unix(),
		})
	})

	// API v1 routes
	authMiddleware := middleware.AuthMiddleware(authService)
	v1 := router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1, authMiddleware)
		pairHandler.RegisterRoutes(v1)
		tradingHandler.RegisterRoutes(v1, authMiddleware)
		strategyHandler.RegisterRoutes(v1, authMiddleware)
		alertHandler.RegisterRoutes(v1, authMiddleware)
		settingsHandler.RegisterRoutes(v1, authMiddleware)
		wsHandler.RegisterRoutes(v1)
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		zapLogger.Info("starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down server")

	strategyWorker.Stop()
	alertWorker.Stop()

	// Graceful shutdown with 10 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("server forced to shutdown", zap.Error(err))
	}

	if err := rdb.Close(); err != nil {
		zapLogger.Warn("error closing redis connection", zap.Error(err))
	}

	zapLogger.Info("server exited properly")
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
