// strategyd runs the strategy scheduler without the HTTP server. It is
// meant for deployments that split the API and the execution loop, or
// for cron-style one-shot scans with -once.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paper-trader/internal/config"
	"github.com/paper-trader/internal/database"
	"github.com/paper-trader/internal/exchange"
	"github.com/paper-trader/internal/logger"
	"github.com/paper-trader/internal/repository"
	"github.com/paper-trader/internal/service"
	"github.com/paper-trader/internal/strategy"
	"github.com/paper-trader/internal/worker"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config file")
		once       = flag.Bool("once", false, "run a single scan and exit")
		interval   = flag.Duration("interval", 0, "scan interval override")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.Init(cfg)
	if err != nil {
		zapLogger.Fatal("failed to initialize database", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	settingsRepo := repository.NewSettingsRepository(db)
	pairRepo := repository.NewPairRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	strategyRepo := repository.NewStrategyRepository(db)

	quoteClient := exchange.NewBinanceQuoteClient(exchange.BinanceQuoteOptions{
		BaseURL:        cfg.Pricing.QuoteBaseURL,
		Timeout:        cfg.Pricing.TimeoutSeconds,
		RateLimit:      cfg.Pricing.RateLimit,
		RateLimitBurst: cfg.Pricing.RateLimitBurst,
	})
	priceService := service.NewPriceService(quoteClient, rdb, cfg.Pricing.CacheTTL(), nil, zapLogger)
	tradingService := service.NewPaperTradingService(
		db, settingsRepo, pairRepo, positionRepo, orderRepo, tradeRepo,
		priceService, zapLogger,
	)

	strategy.RegisterDefaults()
	env := &strategy.Env{
		Trader:    tradingService,
		Prices:    priceService,
		Positions: positionRepo,
		Logger:    zapLogger,
	}

	scanInterval := cfg.Scheduler.ScanInterval()
	if *interval > 0 {
		scanInterval = *interval
	}
	strategyWorker := worker.NewStrategyWorker(strategyRepo, env, scanInterval, zapLogger)

	if *once {
		executed, err := strategyWorker.RunDueStrategies(context.Background())
		if err != nil {
			zapLogger.Fatal("scan failed", zap.Error(err))
		}
		zapLogger.Info("scan complete", zap.Int("executed", executed))
		return
	}

	go strategyWorker.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	strategyWorker.Stop()
	// Give an in-flight scan a moment to finish before exiting.
	time.Sleep(time.Second)
	zapLogger.Info("strategyd exited")
}
