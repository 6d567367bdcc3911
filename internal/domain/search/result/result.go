package result

import "github.com/kailas-cloud/geodex/internal/domain/dataset"

// Result is a single retrieval hit.
type Result struct {
	datasetID string
	score     float64
	scored    bool
	content   string
	meta      dataset.Metadata
}

// New creates a scored search result.
func New(datasetID string, score float64, content string, meta dataset.Metadata) Result {
	return Result{
		datasetID: datasetID, score: score, scored: true,
		content: content, meta: meta,
	}
}

// NewUnscored creates a result the backend returned without a similarity score.
func NewUnscored(datasetID, content string, meta dataset.Metadata) Result {
	return Result{datasetID: datasetID, content: content, meta: meta}
}

// DatasetID returns the dataset identifier.
func (r *Result) DatasetID() string { return r.datasetID }

// Score returns the similarity score. Meaningful only when HasScore is true.
func (r *Result) Score() float64 { return r.score }

// HasScore reports whether the backend attached a similarity score.
func (r *Result) HasScore() bool { return r.scored }

// Content returns the indexed description text.
func (r *Result) Content() string { return r.content }

// Metadata returns the catalogued dataset metadata.
func (r *Result) Metadata() dataset.Metadata { return r.meta }
