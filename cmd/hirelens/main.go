package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hirelens/hirelens/internal/chunker"
	"github.com/hirelens/hirelens/internal/config"
	dbRedis "github.com/hirelens/hirelens/internal/db/redis"
	"github.com/hirelens/hirelens/internal/domain"
	"github.com/hirelens/hirelens/internal/extract"
	logpkg "github.com/hirelens/hirelens/internal/logger"
	"github.com/hirelens/hirelens/internal/metrics"
	budgetrepo "github.com/hirelens/hirelens/internal/repository/budget"
	"github.com/hirelens/hirelens/internal/repository/embcache"
	fragmentrepo "github.com/hirelens/hirelens/internal/repository/fragment"
	geminiGen "github.com/hirelens/hirelens/internal/transport/gemini"
	githubSkills "github.com/hirelens/hirelens/internal/transport/github"
	openaiEmb "github.com/hirelens/hirelens/internal/transport/openai"
	"github.com/hirelens/hirelens/internal/transport/rest"
	embeddinguc "github.com/hirelens/hirelens/internal/usecase/embedding"
	healthuc "github.com/hirelens/hirelens/internal/usecase/health"
	ingestuc "github.com/hirelens/hirelens/internal/usecase/ingest"
	queryuc "github.com/hirelens/hirelens/internal/usecase/query"
	"github.com/hirelens/hirelens/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting hirelens API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterGenerationMetrics()

	// Embedder chain: OpenAI -> optional cache
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	var embedder domain.Embedder = base
	if cfg.Embedding.CacheEnable {
		cacheTTL := time.Duration(cfg.Embedding.CacheTTLHrs) * time.Hour
		embedder = embcache.New(base, store, cfg.Embedding.Model, cacheTTL, metrics.EmbeddingCacheTotal, logger)
	}
	if cfg.Embedding.DailyTokenBudget > 0 || cfg.Embedding.MonthlyTokenBudget > 0 {
		action, err := embeddinguc.ParseBudgetAction(cfg.Embedding.BudgetAction)
		if err != nil {
			logger.Fatal("Invalid budget action", zap.Error(err))
		}
		tracker := embeddinguc.NewBudgetTracker(
			"openai",
			cfg.Embedding.DailyTokenBudget,
			cfg.Embedding.MonthlyTokenBudget,
			action,
			logger,
		).WithStore(ctx, budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour))
		embedder = embeddinguc.NewInstrumentedEmbedder(embedder, "openai", cfg.Embedding.Model, tracker, logger)
	}
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", cfg.Embedding.CacheEnable),
		zap.Int64("daily_token_budget", cfg.Embedding.DailyTokenBudget),
		zap.Int64("monthly_token_budget", cfg.Embedding.MonthlyTokenBudget),
	)

	generator, err := geminiGen.NewGenerator(ctx, &geminiGen.Config{
		APIKey:      cfg.Generation.APIKey,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal("Failed to create generator", zap.Error(err))
	}

	variant, err := queryuc.ParseVariant(cfg.Generation.PromptVariant)
	if err != nil {
		logger.Fatal("Invalid prompt variant", zap.Error(err))
	}

	splitter, err := chunker.New(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	if err != nil {
		logger.Fatal("Invalid chunker config", zap.Error(err))
	}

	// Fragment repository and collection provisioning
	fragments := fragmentrepo.New(store, cfg.Embedding.Dimensions)
	if err := fragments.EnsureCollection(ctx); err != nil {
		logger.Fatal("Failed to provision fragment collection", zap.Error(err))
	}
	logger.Info("Fragment collection ready", zap.String("collection", fragmentrepo.Collection))

	// Use case services
	ingestSvc := ingestuc.New(
		githubSkills.New(cfg.GitHub.Token),
		extract.New(cfg.Ingest.PdftotextPath),
		splitter,
		embedder,
		fragments,
	)
	querySvc := queryuc.New(embedder, fragments, generator, variant, cfg.Retrieval.TopK)
	// Health probes the provider directly, bypassing cache and budget
	// decorators.
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(base))

	server := rest.NewServer(ingestSvc, querySvc, healthSvc, logger, cfg.Ingest.MaxUploadBytes)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(rest.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
