package retrieval

import (
	"encoding/json"

	"github.com/kailas-cloud/geodex/internal/domain/dataset"
)

// metaDTO is the JSON shape of dataset metadata inside the __meta hash field.
type metaDTO struct {
	DatasetID  string            `json:"dataset_id"`
	Title      string            `json:"title,omitempty"`
	Keywords   []string          `json:"keywords,omitempty"`
	AccessURLs []string          `json:"access_urls,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// decodeMeta parses the __meta JSON field. On failure it degrades to a
// metadata shell carrying only the dataset ID.
func decodeMeta(raw, datasetID string) dataset.Metadata {
	if raw == "" {
		return dataset.Reconstruct(datasetID, "", nil, nil, nil)
	}
	var dto metaDTO
	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		return dataset.Reconstruct(datasetID, "", nil, nil, nil)
	}
	if dto.DatasetID == "" {
		dto.DatasetID = datasetID
	}
	return dataset.Reconstruct(dto.DatasetID, dto.Title, dto.Keywords, dto.AccessURLs, dto.Extra)
}
