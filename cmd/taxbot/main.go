package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taxbot-india/engine-go/internal/config"
	"github.com/taxbot-india/engine-go/internal/domain"
	"github.com/taxbot-india/engine-go/internal/handler"
	"github.com/taxbot-india/engine-go/internal/infra/cache"
	"github.com/taxbot-india/engine-go/internal/infra/observability"
	"github.com/taxbot-india/engine-go/internal/infra/resilience"
	"github.com/taxbot-india/engine-go/internal/port"
	"github.com/taxbot-india/engine-go/internal/predictor"
	"github.com/taxbot-india/engine-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Int64("predictor_seed", cfg.PredictorSeed),
		zap.Int("predictor_samples", cfg.PredictorSamples),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Bool("use_redis", cfg.RedisAddr != ""),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Bool("auth_enabled", cfg.APIKeyHash != ""),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "taxbot-engine")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Predictor model (fitted once at startup) ---
	model := predictor.New(cfg.PredictorSeed, cfg.PredictorSamples)
	logger.Info("regime predictor fitted",
		zap.Int64("seed", cfg.PredictorSeed),
		zap.Int("samples", cfg.PredictorSamples),
	)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Prediction cache ---
	var predictionCache port.Cache[domain.Prediction]
	var cachePing handler.Pinger
	if cfg.RedisAddr != "" {
		logger.Info("using Redis prediction cache", zap.String("redis_addr", cfg.RedisAddr))
		cb := resilience.NewCircuitBreaker("redis")
		redisCache := cache.NewRedis[domain.Prediction](cfg.RedisAddr, cfg.CacheTTL, cb, resilienceCfg, logger)
		predictionCache = redisCache
		cachePing = redisCache
	} else {
		logger.Info("using in-memory prediction cache")
		predictionCache = cache.New[domain.Prediction](cfg.CacheTTL)
	}

	// --- Services ---
	taxSvc := service.NewTaxService(metrics, logger)
	predictSvc := service.NewPredictionService(model, predictionCache, bulkhead, metrics, logger)

	var authSvc *service.AuthService
	if cfg.APIKeyHash != "" {
		authSvc = service.NewAuthService(cfg.APIKeyHash, cfg.JWTSecret, cfg.JWTAccessTTL, logger)
		logger.Info("auth enabled, API routes require a bearer token")
	} else {
		logger.Warn("API_KEY_HASH not set, API routes are open")
	}

	// --- Router ---
	router := handler.NewRouter(taxSvc, predictSvc, authSvc, cachePing, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
