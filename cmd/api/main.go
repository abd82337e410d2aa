package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/yarimal/ai-crm/internal/analytics"
	"github.com/yarimal/ai-crm/internal/api/router"
	"github.com/yarimal/ai-crm/internal/assistant"
	appconfig "github.com/yarimal/ai-crm/internal/config"
	"github.com/yarimal/ai-crm/internal/http/handlers"
	"github.com/yarimal/ai-crm/internal/observability/metrics"
	"github.com/yarimal/ai-crm/internal/speech"
	"github.com/yarimal/ai-crm/internal/store"
	"github.com/yarimal/ai-crm/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting ai-crm API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}
	st := store.New(pool)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	assistantMetrics := metrics.NewAssistantMetrics(registry)

	// Model client. Without an API key the assistant runs in simulated
	// mode so the rest of the API stays usable.
	var model assistant.ModelClient
	if cfg.GeminiAPIKey != "" {
		gemini, err := assistant.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		model = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set, assistant runs in simulated mode")
		model = assistant.SimulatedClient{}
	}

	// Assistant
	assistantStore := assistant.NewStore(st)
	registryActions := assistant.NewRegistry(assistantStore, logger)
	cacheManager := assistant.NewCacheManager(model, cfg.InstructionCacheTTL, logger)
	contextBuilder := assistant.NewContextBuilder(cfg.ClientLimit)

	serviceOpts := []assistant.ServiceOption{
		assistant.WithMetrics(assistantMetrics),
		assistant.WithHistoryLimit(cfg.HistoryLimit),
		assistant.WithModelTimeout(cfg.ModelTimeout),
	}
	if cfg.GeminiAPIKey != "" {
		renderer, err := speech.NewGeminiRenderer(cfg.GeminiAPIKey, cfg.GeminiTTSModelID, logger)
		if err != nil {
			logger.Error("failed to create speech renderer", "error", err)
			os.Exit(1)
		}
		var speaker speech.Renderer = renderer
		if cfg.RedisAddr != "" {
			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
			})
			defer rdb.Close()
			speaker = speech.NewCachedRenderer(renderer, rdb, cfg.AudioCacheTTL, logger)
			logger.Info("audio cache enabled", "redis_addr", cfg.RedisAddr)
		}
		serviceOpts = append(serviceOpts, assistant.WithSpeech(speaker))
	}

	assistantService := assistant.NewService(
		assistantStore, model, cacheManager, registryActions, contextBuilder, logger,
		serviceOpts...,
	)

	routerCfg := &router.Config{
		Logger:              logger,
		AssistantHandler:    assistant.NewHandler(assistantService, logger),
		ProvidersHandler:    handlers.NewProvidersHandler(st, logger),
		ClientsHandler:      handlers.NewClientsHandler(st, logger),
		ServicesHandler:     handlers.NewServicesHandler(st, logger),
		AppointmentsHandler: handlers.NewAppointmentsHandler(st, logger),
		BlockedTimesHandler: handlers.NewBlockedTimesHandler(st, logger),
		ChatsHandler:        handlers.NewChatsHandler(st, logger),
		AnalyticsHandler:    analytics.NewHandler(analytics.NewService(st), logger),
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
