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

	"github.com/litswap/litswap/internal/config"
	"github.com/litswap/litswap/internal/db"
	dbRedis "github.com/litswap/litswap/internal/db/redis"
	"github.com/litswap/litswap/internal/domain"
	"github.com/litswap/litswap/internal/index"
	"github.com/litswap/litswap/internal/loader"
	logpkg "github.com/litswap/litswap/internal/logger"
	"github.com/litswap/litswap/internal/match/topics"
	"github.com/litswap/litswap/internal/metrics"
	"github.com/litswap/litswap/internal/repository/catalog"
	"github.com/litswap/litswap/internal/repository/embcache"
	"github.com/litswap/litswap/internal/repository/peers"
	chiTransport "github.com/litswap/litswap/internal/transport/chi"
	openaiEmb "github.com/litswap/litswap/internal/transport/openai"
	embeddinguc "github.com/litswap/litswap/internal/usecase/embedding"
	healthuc "github.com/litswap/litswap/internal/usecase/health"
	marketuc "github.com/litswap/litswap/internal/usecase/market"
	recommenduc "github.com/litswap/litswap/internal/usecase/recommend"
	useruc "github.com/litswap/litswap/internal/usecase/user"
	"github.com/litswap/litswap/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting litswap API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("books_csv", cfg.Catalog.BooksCSV),
		zap.String("friends_csv", cfg.Catalog.FriendsCSV),
	)

	// Optional embedding cache. No addrs means no cache, not a failure.
	var store db.Store
	if len(cfg.Cache.Addrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		ctx := context.Background()
		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterMatchMetrics()

	// Load seed datasets
	books, err := loader.LoadBooks(cfg.Catalog.BooksCSV)
	if err != nil {
		logger.Fatal("Failed to load book catalog", zap.Error(err))
	}
	friends, err := loader.LoadPeers(cfg.Catalog.FriendsCSV)
	if err != nil {
		logger.Fatal("Failed to load friend profiles", zap.Error(err))
	}
	logger.Info("Datasets loaded",
		zap.Int("books", len(books)),
		zap.Int("friends", len(friends)),
	)

	// Embedder chain — composition root
	embedder := buildEmbedder(cfg.Embedding, store, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Build the semantic index over the seed catalog once at startup.
	buildCtx, cancelBuild := context.WithTimeout(context.Background(), 5*time.Minute)
	idx, err := index.Build(buildCtx, embedder, books,
		index.WithPoolSize(cfg.Match.IndexPoolSize),
		index.WithLogger(logger),
	)
	cancelBuild()
	if err != nil {
		logger.Fatal("Failed to build embedding index", zap.Error(err))
	}
	logger.Info("Embedding index built", zap.Int("books", idx.Len()))

	// Repositories
	catalogStore := catalog.New(books)
	peerStore := peers.New(friends)

	// Topic extraction cascade: named entities, then embedding keyphrases,
	// then high-weight lexical terms.
	extractor := topics.NewExtractor(logger,
		topics.NewEntityStrategy(),
		topics.NewKeyphraseStrategy(embedder),
		topics.NewLexicalStrategy(),
	)

	// Use case services
	userSvc := useruc.New(logger)
	marketSvc := marketuc.New(catalogStore, logger)
	recommendSvc := recommenduc.New(catalogStore, peerStore, idx, embedder, extractor, logger).
		WithFuzzyThreshold(cfg.Match.FuzzyThreshold)

	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(cachePinger, newEmbeddingHealthChecker(embedder))

	// Chi server
	server := chiTransport.NewServer(recommendSvc, marketSvc, userSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
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

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented
func buildEmbedder(cfg config.EmbeddingConfig, store db.Store, logger *zap.Logger) domain.Embedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if store != nil {
		embedder = embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
	}

	return embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, logger)
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

			// Set X-Request-ID in response header
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
