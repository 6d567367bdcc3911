package retrieve

import (
	"context"

	"github.com/kailas-cloud/geodex/internal/domain"
	"github.com/kailas-cloud/geodex/internal/domain/search/result"
)

// Repository runs KNN retrieval over the dataset index.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, topK int, restrictTo []string) ([]result.Result, error)
}

// Embedder vectorizes search text (query-instruction decorator injected).
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
