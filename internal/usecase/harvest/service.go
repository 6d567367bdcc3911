package harvest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geodex/internal/domain/dataset"
)

// Defaults for a harvest run. Catalogue and language match the deployment
// this service was built for (Croatian NSDI records on data.europa.eu).
const (
	DefaultCatalogue = "nipp"
	DefaultLanguage  = "hr"
	DefaultLimit     = 100
	DefaultBatchSize = 100
)

// Config controls one harvest run.
type Config struct {
	Catalogue string // catalogue to harvest
	Language  string // preferred metadata language
	Limit     int    // maximum datasets to list
	BatchSize int    // records per embed-and-index batch
	Rebuild   bool   // drop and recreate the vector index first
}

// Stats summarizes one harvest run. A record can hit more than one counter:
// one that was indexed but whose extent failed to store counts under both
// Indexed and Failed.
type Stats struct {
	Fetched    int // records fetched from the catalogue
	Indexed    int // documents upserted into the vector index
	Geometries int // extents upserted into the spatial store
	Skipped    int // records without a usable geometry
	Failed     int // records that failed at any stage
}

// Service harvests catalogue metadata into the vector index and the spatial
// store. One-shot: built for a CLI run, not a long-lived daemon.
type Service struct {
	source  Source
	embed   Embedder
	catalog Catalog
	spatial SpatialStore
	cfg     Config
	logger  *zap.Logger
}

// New creates a harvest service. Zero config fields fall back to defaults.
func New(source Source, embed Embedder, catalog Catalog, spatial SpatialStore, cfg Config, logger *zap.Logger) *Service {
	if cfg.Catalogue == "" {
		cfg.Catalogue = DefaultCatalogue
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	return &Service{
		source:  source,
		embed:   embed,
		catalog: catalog,
		spatial: spatial,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run executes one harvest pass: list the catalogue, fetch each record,
// embed the texts in batches, index documents, and store spatial extents.
// Per-record failures are logged and counted; only infrastructure failures
// (index creation, schema setup, catalogue listing) or context cancellation
// abort the run.
func (s *Service) Run(ctx context.Context) (Stats, error) {
	start := time.Now()
	var stats Stats

	if err := s.catalog.EnsureIndex(ctx, s.cfg.Rebuild); err != nil {
		return stats, fmt.Errorf("ensure dataset index: %w", err)
	}
	if err := s.spatial.EnsureSchema(ctx); err != nil {
		return stats, fmt.Errorf("ensure spatial schema: %w", err)
	}

	ids, err := s.source.ListDatasets(ctx, s.cfg.Catalogue, s.cfg.Limit)
	if err != nil {
		return stats, fmt.Errorf("list catalogue %s: %w", s.cfg.Catalogue, err)
	}
	if len(ids) == 0 {
		return stats, fmt.Errorf("catalogue %s: empty listing", s.cfg.Catalogue)
	}

	s.logger.Info("Starting harvest",
		zap.String("catalogue", s.cfg.Catalogue),
		zap.String("language", s.cfg.Language),
		zap.Int("datasets", len(ids)),
	)

	for offset := 0; offset < len(ids); offset += s.cfg.BatchSize {
		end := offset + s.cfg.BatchSize
		if end > len(ids) {
			end = len(ids)
		}
		if err := s.processBatch(ctx, ids[offset:end], &stats); err != nil {
			return stats, err
		}
	}

	s.logger.Info("Harvest complete",
		zap.Int("fetched", stats.Fetched),
		zap.Int("indexed", stats.Indexed),
		zap.Int("geometries", stats.Geometries),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Duration("took", time.Since(start)),
	)
	return stats, nil
}

// processBatch fetches one slice of IDs, embeds their texts in a single
// provider call, and writes the results. Returns an error only on context
// cancellation.
func (s *Service) processBatch(ctx context.Context, ids []string, stats *Stats) error {
	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.source.FetchDataset(ctx, id, s.cfg.Language)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			stats.Failed++
			s.logger.Warn("Failed to fetch dataset", zap.String("dataset_id", id), zap.Error(err))
			continue
		}
		stats.Fetched++
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i := range records {
		texts[i] = contentText(records[i])
	}

	embRes, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		stats.Failed += len(records)
		s.logger.Error("Failed to embed batch", zap.Int("records", len(records)), zap.Error(err))
		return nil
	}
	if len(embRes.Embeddings) != len(records) {
		stats.Failed += len(records)
		s.logger.Error("Embedding count mismatch",
			zap.Int("want", len(records)), zap.Int("got", len(embRes.Embeddings)))
		return nil
	}

	docs := make([]dataset.Document, 0, len(records))
	indexed := make([]Record, 0, len(records))
	for i := range records {
		doc, err := buildDocument(records[i], texts[i], embRes.Embeddings[i])
		if err != nil {
			stats.Failed++
			s.logger.Warn("Failed to build document",
				zap.String("dataset_id", records[i].ID), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
		indexed = append(indexed, records[i])
	}
	if len(docs) == 0 {
		return nil
	}

	if err := s.catalog.UpsertBatch(ctx, docs); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		stats.Failed += len(docs)
		s.logger.Error("Failed to index batch", zap.Int("documents", len(docs)), zap.Error(err))
		return nil
	}
	stats.Indexed += len(docs)

	for i := range indexed {
		s.upsertGeometry(ctx, indexed[i], stats)
	}
	return nil
}

// upsertGeometry stores a record's extent envelope. Records without a usable
// geometry stay searchable semantically; they just never match a spatial
// filter.
func (s *Service) upsertGeometry(ctx context.Context, rec Record, stats *Stats) {
	envelope, err := extentToWKT(rec.SpatialExtent)
	if err != nil {
		stats.Skipped++
		s.logger.Debug("Skipping spatial extent",
			zap.String("dataset_id", rec.ID), zap.Error(err))
		return
	}

	if err := s.spatial.UpsertExtent(ctx, rec.ID, rec.Title, envelope); err != nil {
		stats.Failed++
		s.logger.Warn("Failed to store spatial extent",
			zap.String("dataset_id", rec.ID), zap.Error(err))
		return
	}
	stats.Geometries++
}

// contentText composes the text to embed for one record: title, description,
// and keywords, the same fields the catalogue search UI surfaces.
func contentText(rec Record) string {
	return fmt.Sprintf("%s\n\n%s\n\nKeywords: %s",
		rec.Title, rec.Description, strings.Join(rec.Keywords, ", "))
}

func buildDocument(rec Record, content string, vector []float32) (dataset.Document, error) {
	var extra map[string]string
	if len(rec.DownloadURLs) > 0 {
		extra = map[string]string{"download_urls": strings.Join(rec.DownloadURLs, " ")}
	}

	meta, err := dataset.NewMetadata(rec.ID, rec.Title, rec.Keywords, rec.AccessURLs, extra)
	if err != nil {
		return dataset.Document{}, fmt.Errorf("metadata: %w", err)
	}
	doc, err := dataset.NewDocument(meta, content, vector)
	if err != nil {
		return dataset.Document{}, fmt.Errorf("document: %w", err)
	}
	return doc, nil
}
