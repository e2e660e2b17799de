package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cardwatch/amlengine/api"
	"github.com/cardwatch/amlengine/internal/aml"
	"github.com/cardwatch/amlengine/internal/aml/cache"
	"github.com/cardwatch/amlengine/internal/aml/detector"
	"github.com/cardwatch/amlengine/internal/aml/engine"
	"github.com/cardwatch/amlengine/internal/aml/limits"
	"github.com/cardwatch/amlengine/internal/aml/mcc"
	"github.com/cardwatch/amlengine/internal/aml/scoring"
	"github.com/cardwatch/amlengine/internal/aml/window"
	"github.com/cardwatch/amlengine/internal/clients"
	"github.com/cardwatch/amlengine/internal/config"
	"github.com/cardwatch/amlengine/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()
	sugar := zapLogger.Sugar()

	detectionCfg, err := aml.LoadDetectionConfig(cfg.Detection)
	if err != nil {
		zapLogger.Fatal("Failed to load detection config", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		zapLogger.Warn("Redis not reachable at startup; detectors will fail open until it recovers",
			zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	windowStore := window.NewRedisStore(redisClient)
	analysisCache := cache.NewRedisCache(redisClient)
	registry := mcc.NewRegistry()

	var isolation engine.IsolationService
	if cfg.Collaborators.IsolationURL != "" {
		isolation = clients.NewIsolationClient(cfg.Collaborators.IsolationURL)
	} else {
		isolation = clients.NewStaticIsolation(sugar)
	}

	history := clients.NewHistoryClient(cfg.Collaborators.HistoryURL)

	var fraud engine.FraudService
	if cfg.Collaborators.FraudURL != "" {
		fraud = clients.NewFraudClient(cfg.Collaborators.FraudURL)
	}

	detectors := []detector.Detector{
		detector.NewStructuringDetector(detectionCfg.Structuring, windowStore, sugar),
		detector.NewRapidMovementDetector(detectionCfg.RapidMove, history, sugar),
		detector.NewVelocityDetector(detectionCfg.Velocity, windowStore, sugar),
		detector.NewHighRiskMerchantDetector(registry, sugar),
		detector.NewRoundAmountDetector(detectionCfg.RoundAmount, windowStore, sugar),
	}

	amlEngine := engine.New(
		detectors,
		scoring.NewAggregator(detectionCfg),
		analysisCache,
		isolation,
		fraud,
		detectionCfg,
		sugar,
	)

	tracker := limits.NewTracker(limits.Limits{
		PerTransaction: 500000,
		Daily:          2000000,
		Weekly:         10000000,
		Monthly:        30000000,
	})

	server := api.NewServer(zapLogger, amlEngine, tracker, registry)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.Handler(),
	}

	go func() {
		zapLogger.Info("AML engine listening", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		zapLogger.Error("Graceful shutdown failed", zap.Error(err))
	}
	if err := redisClient.Close(); err != nil {
		zapLogger.Error("Redis close failed", zap.Error(err))
	}
}
