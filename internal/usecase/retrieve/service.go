package retrieve

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geodex/internal/domain"
	"github.com/kailas-cloud/geodex/internal/domain/search/result"
)

// Service retrieves semantically similar datasets.
type Service struct {
	repo     Repository
	embed    Embedder
	minScore float64
	logger   *zap.Logger
}

// New creates a retrieval service. minScore filters every search uniformly.
func New(repo Repository, embed Embedder, minScore float64, logger *zap.Logger) *Service {
	return &Service{repo: repo, embed: embed, minScore: minScore, logger: logger}
}

// Search embeds the text and returns the top-k hits, optionally restricted to
// the given dataset IDs. Retrieval can only narrow an answer, never fail it:
// embedding or index errors are logged and degrade to an empty slice, which is
// why there is no error return.
func (s *Service) Search(ctx context.Context, text string, k int, restrictTo []string) []result.Result {
	embResult, err := s.embed.Embed(ctx, text)
	if err != nil {
		s.logger.Error("Failed to vectorize search text", zap.String("text", text), zap.Error(err))
		return nil
	}

	domain.UsageFromContext(ctx).AddTokens(embResult.TotalTokens)

	results, err := s.repo.SearchKNN(ctx, embResult.Embedding, k, restrictTo)
	if err != nil {
		s.logger.Error("Dataset retrieval failed",
			zap.Int("k", k),
			zap.Int("restrict_to", len(restrictTo)),
			zap.Error(err))
		return nil
	}

	if s.minScore > 0 {
		filtered := results[:0]
		for _, r := range results {
			if r.HasScore() && r.Score() >= s.minScore {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	// The index returns hits ordered by distance already; re-sort defensively
	// so callers can rely on non-increasing scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})

	return results
}
