package retrieve

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geodex/internal/domain"
	"github.com/kailas-cloud/geodex/internal/domain/dataset"
	"github.com/kailas-cloud/geodex/internal/domain/search/result"
)

type mockRepo struct {
	searchFn func(ctx context.Context, vector []float32, topK int, restrictTo []string) ([]result.Result, error)
	calls    int
}

func (m *mockRepo) SearchKNN(ctx context.Context, vector []float32, topK int, restrictTo []string) ([]result.Result, error) {
	m.calls++
	if m.searchFn != nil {
		return m.searchFn(ctx, vector, topK, restrictTo)
	}
	return nil, nil
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return m.result, m.err
}

func scoredResult(t *testing.T, id string, score float64) result.Result {
	t.Helper()
	meta, err := dataset.NewMetadata(id, "", nil, nil, nil)
	if err != nil {
		t.Fatalf("build metadata: %v", err)
	}
	return result.New(id, score, "content of "+id, meta)
}

func TestSearch_Success(t *testing.T) {
	vec := []float32{0.1, 0.2, 0.3}
	mr := &mockRepo{
		searchFn: func(_ context.Context, vector []float32, topK int, restrictTo []string) ([]result.Result, error) {
			if len(vector) != 3 || vector[0] != 0.1 {
				t.Errorf("unexpected vector: %v", vector)
			}
			if topK != 5 {
				t.Errorf("topK = %d", topK)
			}
			if len(restrictTo) != 2 || restrictTo[0] != "a" {
				t.Errorf("restrictTo = %v", restrictTo)
			}
			return []result.Result{scoredResult(t, "a", 0.9), scoredResult(t, "b", 0.7)}, nil
		},
	}
	me := &mockEmbedder{result: domain.EmbeddingResult{Embedding: vec, TotalTokens: 12}}
	s := New(mr, me, 0, zap.NewNop())

	results := s.Search(context.Background(), "air quality", 5, []string{"a", "b"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].DatasetID() != "a" {
		t.Errorf("first result = %s", results[0].DatasetID())
	}
}

func TestSearch_EmbedFailureDegradesToEmpty(t *testing.T) {
	mr := &mockRepo{}
	me := &mockEmbedder{err: errors.New("provider down")}
	s := New(mr, me, 0, zap.NewNop())

	results := s.Search(context.Background(), "air quality", 5, nil)
	if results != nil {
		t.Errorf("expected nil results, got %v", results)
	}
	if mr.calls != 0 {
		t.Errorf("repo must not be called after embed failure, got %d calls", mr.calls)
	}
}

func TestSearch_RepoFailureDegradesToEmpty(t *testing.T) {
	mr := &mockRepo{
		searchFn: func(_ context.Context, _ []float32, _ int, _ []string) ([]result.Result, error) {
			return nil, errors.New("index gone")
		},
	}
	me := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	s := New(mr, me, 0, zap.NewNop())

	if results := s.Search(context.Background(), "air quality", 5, nil); results != nil {
		t.Errorf("expected nil results, got %v", results)
	}
}

func TestSearch_MinScoreFilter(t *testing.T) {
	meta, _ := dataset.NewMetadata("c", "", nil, nil, nil)
	mr := &mockRepo{
		searchFn: func(_ context.Context, _ []float32, _ int, _ []string) ([]result.Result, error) {
			return []result.Result{
				scoredResult(t, "a", 0.9),
				scoredResult(t, "b", 0.4),
				result.NewUnscored("c", "no score", meta),
			}, nil
		},
	}
	me := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	s := New(mr, me, 0.5, zap.NewNop())

	results := s.Search(context.Background(), "air quality", 5, nil)
	if len(results) != 1 {
		t.Fatalf("expected 1 result above threshold, got %d", len(results))
	}
	if results[0].DatasetID() != "a" {
		t.Errorf("kept result = %s", results[0].DatasetID())
	}
}

func TestSearch_DefensiveSort(t *testing.T) {
	mr := &mockRepo{
		searchFn: func(_ context.Context, _ []float32, _ int, _ []string) ([]result.Result, error) {
			return []result.Result{
				scoredResult(t, "low", 0.3),
				scoredResult(t, "high", 0.95),
				scoredResult(t, "mid", 0.6),
			}, nil
		},
	}
	me := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	s := New(mr, me, 0, zap.NewNop())

	results := s.Search(context.Background(), "air quality", 5, nil)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	want := []string{"high", "mid", "low"}
	for i, id := range want {
		if results[i].DatasetID() != id {
			t.Errorf("results[%d] = %s, expected %s", i, results[i].DatasetID(), id)
		}
	}
}

func TestSearch_TracksUsage(t *testing.T) {
	mr := &mockRepo{}
	me := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}, TotalTokens: 9}}
	s := New(mr, me, 0, zap.NewNop())

	ctx, usage := domain.NewContextWithUsage(context.Background())
	s.Search(ctx, "air quality", 5, nil)

	if usage.TotalTokens != 9 {
		t.Errorf("usage TotalTokens = %d, expected 9", usage.TotalTokens)
	}
}
