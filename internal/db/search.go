package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	ReturnFields []string

	// IDFilter restricts candidates to these dataset ids via the dataset_id
	// TAG field. Empty means unrestricted; a single id is an exact match,
	// several become an OR group.
	IDFilter []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Scored bool // false when the backend returned no score field
	Fields map[string]string
}
