package harvest

import (
	"context"

	"github.com/kailas-cloud/geodex/internal/domain"
	"github.com/kailas-cloud/geodex/internal/domain/dataset"
)

// NA marks record fields the catalogue does not provide. Sources fill it in
// so downstream consumers never see empty strings.
const NA = "N/A"

// Record is one harvested dataset description. SpatialExtent carries the raw
// geometry literal (WKT or GeoJSON) exactly as the catalogue published it.
type Record struct {
	ID            string
	Title         string
	Description   string
	Keywords      []string
	AccessURLs    []string
	DownloadURLs  []string
	SpatialExtent string
}

// Source lists catalogue entries and fetches their metadata records.
type Source interface {
	ListDatasets(ctx context.Context, catalogue string, limit int) ([]string, error)
	FetchDataset(ctx context.Context, id, language string) (Record, error)
}

// Embedder vectorizes record texts in batches.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// Catalog stores dataset documents in the vector index.
type Catalog interface {
	EnsureIndex(ctx context.Context, rebuild bool) error
	UpsertBatch(ctx context.Context, docs []dataset.Document) error
}

// SpatialStore persists dataset extents for spatial filtering.
type SpatialStore interface {
	EnsureSchema(ctx context.Context) error
	UpsertExtent(ctx context.Context, datasetID, title, wkt string) error
}
