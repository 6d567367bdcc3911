package catalog

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

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

// buildHashFields converts a dataset Document into a flat map[string]string for HSET.
func buildHashFields(doc *dataset.Document) (map[string]string, error) {
	meta := doc.Metadata()
	raw, err := json.Marshal(metaDTO{
		DatasetID:  meta.DatasetID(),
		Title:      meta.Title(),
		Keywords:   meta.Keywords(),
		AccessURLs: meta.AccessURLs(),
		Extra:      meta.Extra(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	return map[string]string{
		"dataset_id": meta.DatasetID(),
		"__content":  doc.Content(),
		"__vector":   vectorToBytes(doc.Vector()),
		"__meta":     string(raw),
	}, nil
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

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
