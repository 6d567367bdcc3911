package harvest

import (
	"fmt"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// extentToWKT normalizes a spatial literal (GeoJSON or WKT) to the WKT
// envelope of its bounds. Catalogues publish a mix of polygons, multi
// polygons, and points; the spatial store only needs the bounding envelope,
// so everything is reduced to it before insert.
func extentToWKT(extent string) (string, error) {
	extent = strings.TrimSpace(extent)
	if extent == "" || extent == NA {
		return "", fmt.Errorf("no spatial extent")
	}

	var g geom.T
	if strings.HasPrefix(extent, "{") {
		if err := geojson.Unmarshal([]byte(extent), &g); err != nil {
			return "", fmt.Errorf("parse geojson extent: %w", err)
		}
	} else {
		parsed, err := wkt.Unmarshal(extent)
		if err != nil {
			return "", fmt.Errorf("parse wkt extent: %w", err)
		}
		g = parsed
	}

	bounds := g.Bounds()
	if bounds.IsEmpty() {
		return "", fmt.Errorf("empty geometry")
	}

	envelope, err := wkt.Marshal(bounds.Polygon())
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	return envelope, nil
}
