// Package geo computes great-circle distances, finds the nearest facility
// and derives location-based place keys.
package geo

import (
	"math"

	geohash "github.com/TomiHiltunen/geohash-golang"

	"github.com/mesh-intelligence/restroom/pkg/types"
)

// EarthRadiusMeters is the mean Earth radius used by Distance.
const EarthRadiusMeters = 6371008.8

// KeyPrecision is the geohash length used by PlaceKey. Nine characters is a
// cell of roughly 4.8 m by 4.8 m.
const KeyPrecision = 9

// Distance returns the haversine distance in meters between a and b.
func Distance(a, b types.Coordinate) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	// Rounding can push h just above 1 for antipodal points.
	h = math.Min(1, h)
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Nearest returns the facility closest to `to` and its distance in meters.
// Facilities are scanned in the given order and an exact tie keeps the
// earlier one. ok is false for an empty slice.
func Nearest(to types.Coordinate, facilities []*types.Facility) (nearest *types.Facility, meters float64, ok bool) {
	for _, f := range facilities {
		if f == nil {
			continue
		}
		d := Distance(to, f.Coordinate())
		if !ok || d < meters {
			nearest, meters, ok = f, d, true
		}
	}
	return nearest, meters, ok
}

// PlaceKey returns a stable key for a place that has no external id:
// "<name>@<geohash>", or just the geohash when name is empty.
func PlaceKey(name string, lat, lon float64) string {
	gh := geohash.Encode(lat, lon)
	if len(gh) > KeyPrecision {
		gh = gh[:KeyPrecision]
	}
	if name == "" {
		return gh
	}
	return name + "@" + gh
}
