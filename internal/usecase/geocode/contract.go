package geocode

import (
	"context"

	"github.com/kailas-cloud/geodex/internal/domain/geo"
)

// Geocoder resolves a place name to its bounding box.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (geo.BoundingBox, error)
}
