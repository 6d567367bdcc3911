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
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/geodex/internal/config"
	"github.com/kailas-cloud/geodex/internal/db"
	dbPostgres "github.com/kailas-cloud/geodex/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/geodex/internal/db/redis"
	"github.com/kailas-cloud/geodex/internal/domain"
	logpkg "github.com/kailas-cloud/geodex/internal/logger"
	"github.com/kailas-cloud/geodex/internal/metrics"
	budgetrepo "github.com/kailas-cloud/geodex/internal/repository/budget"
	"github.com/kailas-cloud/geodex/internal/repository/embcache"
	retrievalrepo "github.com/kailas-cloud/geodex/internal/repository/retrieval"
	spatialrepo "github.com/kailas-cloud/geodex/internal/repository/spatial"
	chiTransport "github.com/kailas-cloud/geodex/internal/transport/chi"
	"github.com/kailas-cloud/geodex/internal/transport/nominatim"
	openaiProvider "github.com/kailas-cloud/geodex/internal/transport/openai"
	geocodeuc "github.com/kailas-cloud/geodex/internal/usecase/geocode"
	healthuc "github.com/kailas-cloud/geodex/internal/usecase/health"
	intentuc "github.com/kailas-cloud/geodex/internal/usecase/intent"
	llmuc "github.com/kailas-cloud/geodex/internal/usecase/llm"
	pipelineuc "github.com/kailas-cloud/geodex/internal/usecase/pipeline"
	retrieveuc "github.com/kailas-cloud/geodex/internal/usecase/retrieve"
	synthesizeuc "github.com/kailas-cloud/geodex/internal/usecase/synthesize"
	usageuc "github.com/kailas-cloud/geodex/internal/usecase/usage"
	"github.com/kailas-cloud/geodex/internal/version"
)

func main() {
	// .env feeds the ${VAR} expansion in the YAML config
	_ = godotenv.Load()

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

	logger.Info("Starting geodex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("vector_store_addrs", cfg.VectorStore.Addrs),
	)

	domain.KeyPrefix = cfg.Storage.KeyPrefix

	// Vector store (Redis + RediSearch)
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.VectorStore.Addrs,
		Password: cfg.VectorStore.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create vector store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.VectorStore.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Vector store not ready", zap.Error(err))
	}
	logger.Info("Connected to vector store")

	// Spatial store (PostGIS)
	spatialStore, err := dbPostgres.NewStore(ctx, dbPostgres.Config{
		DSN:         cfg.SpatialStore.DSN,
		MaxConns:    cfg.SpatialStore.MaxConns,
		MinConns:    cfg.SpatialStore.MinConns,
		MaxConnLife: time.Duration(cfg.SpatialStore.MaxConnLifeSec) * time.Second,
		MaxConnIdle: time.Duration(cfg.SpatialStore.MaxConnIdleSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to connect to spatial store", zap.Error(err))
	}
	defer spatialStore.Close()
	logger.Info("Connected to spatial store")

	// Register Prometheus metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterLLMMetrics()
	metrics.RegisterPipelineMetrics()

	// One BudgetTracker per provider, shared by every client of that provider.
	budgets := newBudgetRegistry(ctx, cfg, store, logger)

	vecCfg := vectorConfig(cfg)
	embProvider := cfg.LLM.Embedding.Provider
	queryEmbedder := buildQueryEmbedder(cfg, vecCfg, store, budgets.checker(embProvider), logger)
	logger.Info("Query embedder created",
		zap.String("provider", embProvider),
		zap.String("model", vecCfg.Model),
		zap.Int("dimensions", vecCfg.Dimensions),
	)

	// Completion clients: one per role, budget shared per provider.
	parserBase := newCompleter(cfg, cfg.LLM.Parser, logger)
	parser := llmuc.NewInstrumentedCompleter(
		parserBase, cfg.LLM.Parser.Provider, cfg.LLM.Parser.Model,
		budgets.checker(cfg.LLM.Parser.Provider), logger,
	)
	synthesizerBase := newCompleter(cfg, cfg.LLM.Synthesizer, logger)
	synthesizer := llmuc.NewInstrumentedCompleter(
		synthesizerBase, cfg.LLM.Synthesizer.Provider, cfg.LLM.Synthesizer.Model,
		budgets.checker(cfg.LLM.Synthesizer.Provider), logger,
	)

	// Geocoder with bounded retries
	geocoder := nominatim.NewClient(&nominatim.Config{
		BaseURL:   cfg.Geocoder.BaseURL,
		UserAgent: cfg.Geocoder.UserAgent,
		Timeout:   time.Duration(cfg.Geocoder.TimeoutSec) * time.Second,
		Logger:    logger,
	})
	resolver := geocodeuc.New(geocoder, geocodeuc.Config{
		Attempts:    cfg.Geocoder.RetryAttempts,
		BaseBackoff: time.Duration(cfg.Geocoder.BaseBackoffMs) * time.Millisecond,
		MaxBackoff:  time.Duration(cfg.Geocoder.MaxBackoffMs) * time.Millisecond,
	}, logger)

	// Pipeline stages
	intents := intentuc.New(parser, logger)
	spatial := spatialrepo.New(spatialStore)
	retriever := retrieveuc.New(retrievalrepo.New(store), queryEmbedder, cfg.Pipeline.MinScore, logger)
	synthesis := synthesizeuc.New(synthesizer, logger)

	pipeline := pipelineuc.New(
		intents, resolver, spatial, retriever, synthesis,
		cfg.Pipeline.DefaultMaxResults, logger,
	)

	usageSvc := usageuc.New(embProvider, budgets.reader(embProvider))
	healthSvc := healthuc.New(store, spatialStore, parserBase)

	server := chiTransport.NewServer(pipeline, usageSvc, healthSvc, cfg.Pipeline.MaxMaxResults, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
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

// vectorConfig overlays configured embedding settings on the defaults.
func vectorConfig(cfg config.Config) domain.VectorConfig {
	vec := domain.DefaultVectorConfig()
	if cfg.LLM.Embedding.Model != "" {
		vec.Model = cfg.LLM.Embedding.Model
	}
	if cfg.LLM.Embedding.Dimensions > 0 {
		vec.Dimensions = cfg.LLM.Embedding.Dimensions
	}
	if cfg.LLM.Embedding.DocumentInstruction != "" {
		vec.DocumentInstruction = cfg.LLM.Embedding.DocumentInstruction
	}
	if cfg.LLM.Embedding.QueryInstruction != "" {
		vec.QueryInstruction = cfg.LLM.Embedding.QueryInstruction
	}
	return vec
}

// budgetRegistry hands out one shared BudgetTracker per provider.
type budgetRegistry struct {
	trackers map[string]*llmuc.BudgetTracker
}

func newBudgetRegistry(ctx context.Context, cfg config.Config, store db.Store, logger *zap.Logger) *budgetRegistry {
	reg := &budgetRegistry{trackers: make(map[string]*llmuc.BudgetTracker)}

	for name, provCfg := range cfg.LLM.Providers {
		budgetCfg := provCfg.Budget
		if budgetCfg.DailyTokenLimit <= 0 && budgetCfg.MonthlyTokenLimit <= 0 {
			continue
		}
		action := llmuc.BudgetActionWarn
		if budgetCfg.Action == "reject" {
			action = llmuc.BudgetActionReject
		}
		tracker := llmuc.NewBudgetTracker(
			name, budgetCfg.DailyTokenLimit, budgetCfg.MonthlyTokenLimit, action, logger,
		)
		// Persistence store — loads current counters from the vector store DB.
		tracker.WithStore(ctx, budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour))
		reg.trackers[name] = tracker
	}

	return reg
}

// checker returns a nil interface (not a typed nil pointer) when the provider
// has no budget configured. Go gotcha: (*BudgetTracker)(nil) wrapped in
// BudgetChecker != nil.
func (r *budgetRegistry) checker(provider string) llmuc.BudgetChecker {
	if t, ok := r.trackers[provider]; ok {
		return t
	}
	return nil
}

func (r *budgetRegistry) reader(provider string) usageuc.BudgetReader {
	if t, ok := r.trackers[provider]; ok {
		return t
	}
	return nil
}

// buildQueryEmbedder assembles the decorator chain:
// OpenAI -> Cached -> Instrumented -> Instruction.
func buildQueryEmbedder(
	cfg config.Config,
	vecCfg domain.VectorConfig,
	store db.Store,
	budget llmuc.BudgetChecker,
	logger *zap.Logger,
) domain.Embedder {
	provName := cfg.LLM.Embedding.Provider
	provCfg := cfg.LLM.Providers[provName]

	// Base provider (with transport metrics built-in)
	base := openaiProvider.NewEmbedder(&openaiProvider.Config{
		APIKey:     provCfg.APIKey,
		BaseURL:    provCfg.BaseURL,
		Model:      vecCfg.Model,
		Dimensions: vecCfg.Dimensions,
		Provider:   provName,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if store != nil {
		embedder = embcache.New(base, store, 0, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = llmuc.NewInstrumentedEmbedder(embedder, provName, vecCfg.Model, budget, logger)

	// Instruction prefix (outermost — cache key includes instruction)
	if vecCfg.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, vecCfg.QueryInstruction)
	}

	return embedder
}

func newCompleter(cfg config.Config, role config.RoleConfig, logger *zap.Logger) *openaiProvider.Completer {
	provCfg := cfg.LLM.Providers[role.Provider]
	return openaiProvider.NewCompleter(&openaiProvider.CompleterConfig{
		APIKey:      provCfg.APIKey,
		BaseURL:     provCfg.BaseURL,
		Model:       role.Model,
		Temperature: role.Temperature,
		Provider:    role.Provider,
		Logger:      logger,
	})
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
					_ = json.NewEncoder(w).Encode(map[string]any{
						"error": map[string]string{
							"code":    "internal_error",
							"message": "internal error",
						},
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
