package pipeline

import (
	"context"

	"github.com/kailas-cloud/geodex/internal/domain/answer"
	"github.com/kailas-cloud/geodex/internal/domain/geo"
	"github.com/kailas-cloud/geodex/internal/domain/intent"
	"github.com/kailas-cloud/geodex/internal/domain/search/result"
)

// IntentParser extracts structured intent from a raw user query.
type IntentParser interface {
	Parse(ctx context.Context, query string) (intent.Intent, error)
}

// Geocoder resolves a place name to a bounding box.
type Geocoder interface {
	Resolve(ctx context.Context, location string) (geo.BoundingBox, error)
}

// SpatialFilter reports which datasets have an extent intersecting the box.
type SpatialFilter interface {
	IntersectingIDs(ctx context.Context, box geo.BoundingBox) ([]string, error)
}

// Retriever runs semantic search, optionally restricted to a dataset ID set.
// It degrades to an empty result list instead of failing.
type Retriever interface {
	Search(ctx context.Context, text string, topK int, restrictTo []string) []result.Result
}

// Synthesizer renders the final answer over retrieved results.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, results []result.Result) answer.Response
}
