package geo

import "fmt"

// BoundingBox is a geographic extent in WGS84 degrees (immutable value object).
// West may exceed east for extents crossing the antimeridian.
type BoundingBox struct {
	south float64
	north float64
	west  float64
	east  float64
}

// NewBoundingBox validates and creates a BoundingBox. Latitudes must lie in
// [-90, 90], longitudes in [-180, 180], and south must not exceed north.
func NewBoundingBox(south, north, west, east float64) (BoundingBox, error) {
	if !validLat(south) || !validLat(north) {
		return BoundingBox{}, fmt.Errorf("latitude out of range [-90, 90]: south=%v north=%v", south, north)
	}
	if !validLon(west) || !validLon(east) {
		return BoundingBox{}, fmt.Errorf("longitude out of range [-180, 180]: west=%v east=%v", west, east)
	}
	if south > north {
		return BoundingBox{}, fmt.Errorf("south %v exceeds north %v", south, north)
	}
	return BoundingBox{south: south, north: north, west: west, east: east}, nil
}

// South returns the minimum latitude.
func (b BoundingBox) South() float64 { return b.south }

// North returns the maximum latitude.
func (b BoundingBox) North() float64 { return b.north }

// West returns the minimum longitude.
func (b BoundingBox) West() float64 { return b.west }

// East returns the maximum longitude.
func (b BoundingBox) East() float64 { return b.east }

// CrossesAntimeridian reports whether the box wraps the 180th meridian.
func (b BoundingBox) CrossesAntimeridian() bool { return b.west > b.east }

func validLat(lat float64) bool { return lat >= -90 && lat <= 90 }

func validLon(lon float64) bool { return lon >= -180 && lon <= 180 }

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return validLat(lat) && validLon(lon)
}
