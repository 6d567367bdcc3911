package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/geodex/internal/db"
	"github.com/kailas-cloud/geodex/internal/domain"
	"github.com/kailas-cloud/geodex/internal/domain/search/result"
)

// store is the consumer interface for KNN retrieval (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/retrieve.Repository.
type Repo struct {
	store store
}

// New creates a retrieval repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchKNN performs a vector similarity search over the dataset index,
// optionally restricted to an allowlist of dataset IDs.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, topK int, restrictTo []string) ([]result.Result, error) {
	q := &db.KNNQuery{
		IndexName:    indexName(),
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{"__content", "__meta", "__vector_score"},
		IDFilter:     restrictTo,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", domain.DatasetCollection, err)
	}

	return parseResults(sr), nil
}

// parseResults converts db.SearchResult into []result.Result.
func parseResults(sr *db.SearchResult) []result.Result {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	prefix := fmt.Sprintf("%s%s:", domain.KeyPrefix, domain.DatasetCollection)
	results := make([]result.Result, 0, len(sr.Entries))

	for _, entry := range sr.Entries {
		datasetID := strings.TrimPrefix(entry.Key, prefix)
		content := entry.Fields["__content"]
		meta := decodeMeta(entry.Fields["__meta"], datasetID)

		if entry.Scored {
			results = append(results, result.New(datasetID, entry.Score, content, meta))
		} else {
			results = append(results, result.NewUnscored(datasetID, content, meta))
		}
	}

	return results
}

func indexName() string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, domain.DatasetCollection)
}
