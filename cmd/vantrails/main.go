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

	"github.com/Rachel0619/VanTrails/internal/config"
	dbRedis "github.com/Rachel0619/VanTrails/internal/db/redis"
	"github.com/Rachel0619/VanTrails/internal/domain"
	logpkg "github.com/Rachel0619/VanTrails/internal/logger"
	"github.com/Rachel0619/VanTrails/internal/metrics"
	"github.com/Rachel0619/VanTrails/internal/prompt"
	"github.com/Rachel0619/VanTrails/internal/repository/trails"
	chiTransport "github.com/Rachel0619/VanTrails/internal/transport/chi"
	openaiTransport "github.com/Rachel0619/VanTrails/internal/transport/openai"
	healthuc "github.com/Rachel0619/VanTrails/internal/usecase/health"
	queryparseruc "github.com/Rachel0619/VanTrails/internal/usecase/queryparser"
	recommenduc "github.com/Rachel0619/VanTrails/internal/usecase/recommend"
	retrievaluc "github.com/Rachel0619/VanTrails/internal/usecase/retrieval"
	"github.com/Rachel0619/VanTrails/internal/version"
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

	logger.Info("Starting VanTrails API server",
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

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register LLM/embedding/search metrics explicitly (no init())
	metrics.RegisterLLMMetrics()

	prompts, err := prompt.New(cfg.Prompts.Dir)
	if err != nil {
		logger.Fatal("Failed to load prompt templates", zap.Error(err))
	}

	embedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Model:      cfg.LLM.EmbeddingModel,
		Dimensions: cfg.LLM.EmbeddingDimensions,
		Logger:     logger,
	})
	chat := openaiTransport.NewChat(&openaiTransport.ChatConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.ChatModel,
		Logger:  logger,
	})
	logger.Info("LLM clients created",
		zap.String("chat_model", cfg.LLM.ChatModel),
		zap.String("embedding_model", cfg.LLM.EmbeddingModel),
		zap.Int("dimensions", cfg.LLM.EmbeddingDimensions),
	)

	trailRepo := trails.New(store, trails.Config{
		KeyPrefix:       cfg.Index.KeyPrefix,
		VectorDim:       cfg.LLM.EmbeddingDimensions,
		HNSWM:           cfg.Index.HNSWM,
		HNSWEFConstruct: cfg.Index.HNSWEFConstruct,
	})
	if err := trailRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure trails index", zap.Error(err))
	}

	// Create use case services
	parserSvc := queryparseruc.New(chat, prompts, queryparseruc.Config{
		Temperature: cfg.Parser.Temperature,
		MaxTokens:   cfg.Parser.MaxTokens,
		Timeout:     time.Duration(cfg.Parser.TimeoutSec) * time.Second,
	}, logger)
	retrievalSvc := retrievaluc.New(parserSvc, embedder, trailRepo, retrievaluc.Config{
		DefaultLimit: cfg.Retrieval.DefaultLimit,
		MaxLimit:     cfg.Retrieval.MaxLimit,
	}, logger)
	recommendSvc := recommenduc.New(chat, chat, prompts, recommenduc.Config{
		Temperature: cfg.Renderer.Temperature,
		MaxTokens:   cfg.Renderer.MaxTokens,
	}, logger)
	healthSvc := healthuc.New(store, newProviderHealthChecker(embedder))

	// Create chi server
	server := chiTransport.NewServer(retrievalSvc, recommendSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes())

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

// providerHealthChecker adapts the embedding client to health.ProviderChecker.
type providerHealthChecker struct {
	embedder domain.Embedder
}

func newProviderHealthChecker(embedder domain.Embedder) *providerHealthChecker {
	return &providerHealthChecker{embedder: embedder}
}

func (h *providerHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("provider health check: %w", err)
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
