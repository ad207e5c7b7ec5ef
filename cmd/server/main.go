package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	_ "github.com/joho/godotenv/autoload"
	"github.com/riandyrn/otelchi"
	otelchimetric "github.com/riandyrn/otelchi/metric"
	"go.opentelemetry.io/otel"

	"github.com/recipebox/larder/internal/api"
	"github.com/recipebox/larder/internal/cache"
	"github.com/recipebox/larder/internal/config"
	"github.com/recipebox/larder/internal/logger"
	"github.com/recipebox/larder/internal/metrics"
	"github.com/recipebox/larder/internal/services/extractor"
	"github.com/recipebox/larder/internal/services/llm"
	"github.com/recipebox/larder/internal/telemetry"
	"github.com/recipebox/larder/internal/worker"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize telemetry
	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName, cfg.ServiceVersion, cfg.Env, cfg.OtelExporterOTLPEndpoint, cfg.OTLPHeaders())
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
	slog.SetDefault(logger) // Set as default so slog.Info() uses our handler

	// Redis backs the recipe cache and the async jobs. Without it the
	// service still extracts synchronously.
	var (
		recipes cache.Recipes = cache.NewRecipeCache(nil, cfg.Extraction.CacheTTL)
		jobs    cache.Jobs
		queue   worker.Enqueuer

		redisReady func(context.Context) error
	)
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		redisReady = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		recipes = cache.NewRecipeCache(rdb, cfg.Extraction.CacheTTL)
		jobs = cache.NewJobStore(rdb)

		asynqClient, err := worker.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to create task client: %v", err)
		}
		defer asynqClient.Close()
		queue = asynqClient
	} else {
		logger.Warn("REDIS_URL not set, caching and async jobs are disabled")
	}

	orchestrator := extractor.NewFromConfig(cfg, logger)
	apiServer := api.NewServer(cfg, orchestrator, recipes, jobs, queue, logger)
	if redisReady != nil {
		apiServer.AddReadinessCheck("redis", true, redisReady)
	}
	if cfg.LLM.Enabled {
		// The fallback is optional; an unreachable model only degrades.
		ollama := llm.NewOllamaClient(cfg.LLM)
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := ollama.HealthCheck(checkCtx); err != nil {
			logger.Warn("Ollama unreachable, fallback extraction will fail until it is up",
				"llm_base_url", cfg.LLM.BaseURL, "error", err)
		}
		cancel()
		apiServer.AddReadinessCheck("llm", false, ollama.HealthCheck)
	}

	// Router
	r := chi.NewRouter()

	// Middleware
	r.Use(otelchi.Middleware(cfg.ServiceName,
		otelchi.WithChiRoutes(r),
		otelchi.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health" && r.URL.Path != "/ready"
		}),
	))

	// HTTP metrics
	metricCfg := otelchimetric.NewBaseConfig(cfg.ServiceName, otelchimetric.WithMeterProvider(otel.GetMeterProvider()))
	r.Use(otelchimetric.NewRequestDurationMillis(metricCfg))
	r.Use(otelchimetric.NewRequestInFlight(metricCfg))
	r.Use(otelchimetric.NewResponseSizeBytes(metricCfg))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	apiServer.Routes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Starting server",
		"port", cfg.Port,
		"llm_fallback", orchestrator.FallbackAvailable(),
		"llm_model", cfg.LLM.Model)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
