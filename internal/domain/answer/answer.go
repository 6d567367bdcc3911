package answer

import "github.com/kailas-cloud/geodex/internal/domain/dataset"

// Source attributes one retrieved dataset behind an answer.
type Source struct {
	datasetID string
	score     float64
	scored    bool
	meta      dataset.Metadata
}

// NewSource creates a source attribution. scored distinguishes a real zero
// score from an absent one.
func NewSource(datasetID string, score float64, scored bool, meta dataset.Metadata) Source {
	return Source{datasetID: datasetID, score: score, scored: scored, meta: meta}
}

// DatasetID returns the dataset identifier.
func (s Source) DatasetID() string { return s.datasetID }

// Score returns the relevance score. Meaningful only when HasScore is true.
func (s Source) Score() float64 { return s.score }

// HasScore reports whether retrieval attached a relevance score.
func (s Source) HasScore() bool { return s.scored }

// Metadata returns the catalogued dataset metadata.
func (s Source) Metadata() dataset.Metadata { return s.meta }

// Response is the final outcome of a pipeline run: the synthesized answer
// plus the datasets it drew on. A pipeline always produces one, whatever
// failed along the way.
type Response struct {
	answer  string
	sources []Source
}

// NewResponse creates a Response.
func NewResponse(answer string, sources []Source) Response {
	return Response{answer: answer, sources: sources}
}

// Answer returns the natural-language answer text.
func (r Response) Answer() string { return r.answer }

// Sources returns the dataset attributions backing the answer.
func (r Response) Sources() []Source { return r.sources }
