package geodex

import (
	"context"
	"net/http"
)

// SearchResult is one answered query: the natural-language answer plus the
// datasets it drew on.
type SearchResult struct {
	Answer         string          `json:"answer"`
	SourceDatasets []SourceDataset `json:"source_datasets"`
}

// SourceDataset attributes one catalogued dataset behind an answer.
// RelevanceScore is nil when retrieval attached no score.
type SourceDataset struct {
	DatasetID      string         `json:"dataset_id"`
	RelevanceScore *float64       `json:"relevance_score"`
	Metadata       map[string]any `json:"metadata"`
}

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

// Search answers a natural-language query about the dataset catalogue.
// maxResults bounds the source list; 0 uses the server default. The server
// never fails a well-formed query: an unanswerable one comes back as a
// degraded answer with an empty source list, not an error.
func (c *Client) Search(ctx context.Context, query string, maxResults int) (SearchResult, error) {
	var out SearchResult
	err := c.do(ctx, http.MethodPost, "/api/v1/search", searchRequest{
		Query:      query,
		MaxResults: maxResults,
	}, &out)
	return out, err
}
