package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/geodex/internal/db"
	"github.com/kailas-cloud/geodex/internal/domain"
	"github.com/kailas-cloud/geodex/internal/domain/dataset"
)

// store is the consumer interface for the dataset catalog (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo stores dataset documents as hashes under one FT index.
type Repo struct {
	store  store
	vector domain.VectorConfig
	hnsw   HNSWConfig
}

// New creates a catalog repository.
func New(s store, vector domain.VectorConfig) *Repo {
	return &Repo{store: s, vector: vector, hnsw: HNSWConfig{M: 32, EFConstruct: 400}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// EnsureIndex creates the dataset index when missing. With rebuild set, any
// existing index is dropped first so schema changes take effect.
func (r *Repo) EnsureIndex(ctx context.Context, rebuild bool) error {
	idxName := indexName()

	if rebuild {
		if err := r.store.DropIndex(ctx, idxName); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return fmt.Errorf("drop index %s: %w", idxName, err)
		}
	} else {
		exists, err := r.store.IndexExists(ctx, idxName)
		if err != nil {
			return fmt.Errorf("check index exists: %w", err)
		}
		if exists {
			return nil
		}
	}

	def, err := buildIndex(r.vector, r.hnsw)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", idxName, err)
	}
	return nil
}

// UpsertBatch writes dataset documents in a single round-trip.
func (r *Repo) UpsertBatch(ctx context.Context, docs []dataset.Document) error {
	if len(docs) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(docs))
	for i := range docs {
		fields, err := buildHashFields(&docs[i])
		if err != nil {
			return fmt.Errorf("encode dataset %s: %w", docs[i].Metadata().DatasetID(), err)
		}
		items = append(items, db.HashSetItem{Key: docKey(docs[i].Metadata().DatasetID()), Fields: fields})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset datasets: %w", err)
	}
	return nil
}

// Get returns catalogued metadata by dataset ID.
func (r *Repo) Get(ctx context.Context, id string) (dataset.Metadata, error) {
	m, err := r.store.HGetAll(ctx, docKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return dataset.Metadata{}, domain.ErrDatasetNotFound
		}
		return dataset.Metadata{}, fmt.Errorf("hgetall dataset %s: %w", id, err)
	}
	return decodeMeta(m["__meta"], id), nil
}

// Count returns the number of indexed datasets.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, indexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("search count: %w", err)
	}
	return n, nil
}

// Redis key patterns: geodex:datasets:{id}, geodex:datasets:idx

func docKey(id string) string {
	return fmt.Sprintf("%s%s:%s", domain.KeyPrefix, domain.DatasetCollection, id)
}

func indexName() string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, domain.DatasetCollection)
}

func collectionPrefix() string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, domain.DatasetCollection)
}
