package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/recipebox/larder/internal/cache"
	"github.com/recipebox/larder/internal/config"
	"github.com/recipebox/larder/internal/logger"
	"github.com/recipebox/larder/internal/metrics"
	"github.com/recipebox/larder/internal/services/extractor"
	"github.com/recipebox/larder/internal/telemetry"
	"github.com/recipebox/larder/internal/worker"
)

func main() {
	concurrency := flag.Int("concurrency", 10, "number of extraction jobs run at once")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.RedisURL == "" {
		log.Fatal("REDIS_URL is required to run the worker")
	}

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName+"-worker", cfg.ServiceVersion, cfg.Env, cfg.OtelExporterOTLPEndpoint, cfg.OTLPHeaders())
		if err != nil {
			slog.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(ctx)
		}
	}

	// Initialize business metrics
	if err := metrics.Init(); err != nil {
		slog.Warn("Failed to init business metrics", "error", err)
	}

	// Initialize logger with OTel support
	logger := logger.New(cfg.Env)
	slog.SetDefault(logger)

	rdb, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	workerMetrics, err := worker.NewWorkerMetrics()
	if err != nil {
		slog.Warn("Failed to init worker metrics", "error", err)
	}

	orchestrator := extractor.NewFromConfig(cfg, logger)
	processor := worker.NewExtractionProcessor(
		orchestrator,
		cache.NewRecipeCache(rdb, cfg.Extraction.CacheTTL),
		cache.NewJobStore(rdb),
		workerMetrics,
		logger,
	)

	// Asynq server
	srv, err := worker.NewServer(cfg.RedisURL, *concurrency, logger)
	if err != nil {
		log.Fatalf("Failed to create worker: %v", err)
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := worker.Start(srv, processor.Handlers()); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
	logger.Info("Worker started",
		"concurrency", *concurrency,
		"llm_fallback", orchestrator.FallbackAvailable())

	<-sigChan
	logger.Info("Shutting down worker...")
	srv.Shutdown()
}
