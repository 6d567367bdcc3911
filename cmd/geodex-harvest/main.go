// geodex-harvest is the one-shot catalogue ingestion job. It pulls dataset
// metadata from the data.europa.eu hub, embeds the descriptions, fills the
// vector index, and stores spatial extents in PostGIS.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/geodex/internal/config"
	"github.com/kailas-cloud/geodex/internal/db"
	dbPostgres "github.com/kailas-cloud/geodex/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/geodex/internal/db/redis"
	"github.com/kailas-cloud/geodex/internal/domain"
	logpkg "github.com/kailas-cloud/geodex/internal/logger"
	"github.com/kailas-cloud/geodex/internal/metrics"
	catalogrepo "github.com/kailas-cloud/geodex/internal/repository/catalog"
	"github.com/kailas-cloud/geodex/internal/repository/embcache"
	spatialrepo "github.com/kailas-cloud/geodex/internal/repository/spatial"
	"github.com/kailas-cloud/geodex/internal/transport/edp"
	openaiProvider "github.com/kailas-cloud/geodex/internal/transport/openai"
	harvestuc "github.com/kailas-cloud/geodex/internal/usecase/harvest"
	llmuc "github.com/kailas-cloud/geodex/internal/usecase/llm"
	"github.com/kailas-cloud/geodex/internal/version"
)

func main() {
	rebuild := flag.Bool("rebuild", false, "drop and recreate the vector index before harvesting")
	limit := flag.Int("limit", 0, "maximum datasets to harvest (0 = config value)")
	flag.Parse()

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

	logger.Info("Starting geodex harvest",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("catalogue", cfg.Harvest.Catalogue),
		zap.String("language", cfg.Harvest.Language),
	)

	domain.KeyPrefix = cfg.Storage.KeyPrefix

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

	metrics.RegisterEmbeddingMetrics()

	embedder := buildDocumentEmbedder(cfg, store, logger)

	vecCfg := vectorConfig(cfg)
	catalog := catalogrepo.New(store, vecCfg).WithHNSW(catalogrepo.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})
	spatial := spatialrepo.New(spatialStore)

	source := edp.NewClient(&edp.Config{
		BaseURL: cfg.Harvest.BaseURL,
		Timeout: time.Duration(cfg.Harvest.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	harvestLimit := cfg.Harvest.Limit
	if *limit > 0 {
		harvestLimit = *limit
	}

	svc := harvestuc.New(source, embedder, catalog, spatial, harvestuc.Config{
		Catalogue: cfg.Harvest.Catalogue,
		Language:  cfg.Harvest.Language,
		Limit:     harvestLimit,
		BatchSize: cfg.Harvest.BatchSize,
		Rebuild:   *rebuild,
	}, logger)

	stats, err := svc.Run(ctx)
	if err != nil {
		logger.Fatal("Harvest failed",
			zap.Error(err),
			zap.Int("fetched", stats.Fetched),
			zap.Int("indexed", stats.Indexed),
		)
	}

	logger.Info("Harvest finished",
		zap.Int("fetched", stats.Fetched),
		zap.Int("indexed", stats.Indexed),
		zap.Int("geometries", stats.Geometries),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
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

// buildDocumentEmbedder mirrors the API server's embedder chain but with the
// document instruction: OpenAI -> Cached -> Instrumented -> Instruction.
// The harvest job enforces no budget; it is an operator-triggered batch run.
func buildDocumentEmbedder(cfg config.Config, store db.Store, logger *zap.Logger) domain.BatchEmbedder {
	vecCfg := vectorConfig(cfg)
	provName := cfg.LLM.Embedding.Provider
	provCfg := cfg.LLM.Providers[provName]

	base := openaiProvider.NewEmbedder(&openaiProvider.Config{
		APIKey:     provCfg.APIKey,
		BaseURL:    provCfg.BaseURL,
		Model:      vecCfg.Model,
		Dimensions: vecCfg.Dimensions,
		Provider:   provName,
		Logger:     logger,
	})

	cached := embcache.New(base, store, 0, metrics.EmbeddingCacheTotal, logger)
	instrumented := llmuc.NewInstrumentedEmbedder(cached, provName, vecCfg.Model, nil, logger)

	return domain.NewInstructionEmbedder(instrumented, vecCfg.DocumentInstruction)
}
