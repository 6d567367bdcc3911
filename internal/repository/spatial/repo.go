package spatial

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/geodex/internal/domain/geo"
)

// store is the consumer interface for spatial extent queries (ISP).
type store interface {
	IntersectingIDs(ctx context.Context, west, south, east, north float64) ([]string, error)
	UpsertGeometry(ctx context.Context, datasetID, title, wkt string) error
	EnsureSchema(ctx context.Context) error
}

// Repo implements usecase filtering over PostGIS-backed dataset extents.
type Repo struct {
	store store
}

// New creates a spatial repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// IntersectingIDs returns IDs of datasets whose stored extent intersects the box.
func (r *Repo) IntersectingIDs(ctx context.Context, box geo.BoundingBox) ([]string, error) {
	ids, err := r.store.IntersectingIDs(ctx, box.West(), box.South(), box.East(), box.North())
	if err != nil {
		return nil, fmt.Errorf("intersecting ids: %w", err)
	}
	return ids, nil
}

// UpsertExtent stores a dataset's spatial extent as a WKT polygon in WGS84.
func (r *Repo) UpsertExtent(ctx context.Context, datasetID, title, wkt string) error {
	if err := r.store.UpsertGeometry(ctx, datasetID, title, wkt); err != nil {
		return fmt.Errorf("upsert extent %s: %w", datasetID, err)
	}
	return nil
}

// EnsureSchema creates the extent table and spatial index when missing.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	if err := r.store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure spatial schema: %w", err)
	}
	return nil
}
