package geo

import (
	"math"

	"github.com/mmcloughlin/geohash"

	"truck-dispatch-service/internal/domain"
)

// SearchCells returns the geohash cell of target at precision followed by its
// eight neighbours.
func SearchCells(target domain.GeoPoint, precision uint) []string {
	cell := geohash.EncodeWithPrecision(target.Lat, target.Lng, precision)
	return append([]string{cell}, geohash.Neighbors(cell)...)
}

// CoveredRadiusMeters is the radius around target inside which every point
// falls in one of SearchCells(target, precision). A vehicle farther away may
// lie outside the 3x3 block even when a more distant one lies inside.
// Returns 0 when the block touches a pole, where neighbours wrap.
func CoveredRadiusMeters(target domain.GeoPoint, precision uint) float64 {
	box := geohash.BoundingBox(geohash.EncodeWithPrecision(target.Lat, target.Lng, precision))
	h := box.MaxLat - box.MinLat
	w := box.MaxLng - box.MinLng

	blockMinLat, blockMaxLat := box.MinLat-h, box.MaxLat+h
	if blockMinLat <= -90 || blockMaxLat >= 90 {
		return 0
	}

	// Meters per degree shrink towards the poles; use the worst latitude in
	// the block. The 0.99 factor absorbs the gap between great-circle and
	// along-parallel distance for wide cells.
	perDegLat := toRad(1) * earthRadiusMeters
	perDegLng := perDegLat * math.Cos(toRad(max(math.Abs(blockMinLat), math.Abs(blockMaxLat))))

	south := (target.Lat - blockMinLat) * perDegLat
	north := (blockMaxLat - target.Lat) * perDegLat
	west := (target.Lng - box.MinLng + w) * perDegLng
	east := (box.MaxLng - target.Lng + w) * perDegLng

	return 0.99 * min(south, north, west, east)
}
