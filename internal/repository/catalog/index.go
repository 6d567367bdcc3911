package catalog

import (
	"github.com/kailas-cloud/geodex/internal/db"
	"github.com/kailas-cloud/geodex/internal/domain"
)

// buildIndex assembles the dataset index definition: a dataset_id TAG for
// spatial allowlist filtering plus the embedding VECTOR field.
func buildIndex(vector domain.VectorConfig, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	b := db.NewIndex(indexName()).
		Prefix(collectionPrefix()).
		TagWithOpts("dataset_id", ",", true)

	distance := distanceMetric(vector.DistanceMetric)

	if vector.Algorithm == "flat" {
		b = b.VectorFlat("__vector", vector.Dimensions, distance, 0).As("vector")
	} else {
		b = b.VectorHNSW("__vector", vector.Dimensions, distance, hnsw.M, hnsw.EFConstruct).As("vector")
	}

	return b.Build()
}

func distanceMetric(s string) db.DistanceMetric {
	switch s {
	case "l2":
		return db.DistanceL2
	case "ip":
		return db.DistanceIP
	default:
		return db.DistanceCosine
	}
}
