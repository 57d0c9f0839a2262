package geo

import (
	"math"

	"truck-dispatch-service/internal/domain"
)

const earthRadiusMeters = 6371000.0

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

// HaversineMeters returns the great-circle distance between two points.
func HaversineMeters(a, b domain.GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// project maps q onto a local equirectangular plane centred on origin, in meters.
// Accurate to well under a meter over the few-kilometer spans used for
// proximity checks.
func project(origin, q domain.GeoPoint) (x, y float64) {
	x = toRad(q.Lng-origin.Lng) * math.Cos(toRad(origin.Lat)) * earthRadiusMeters
	y = toRad(q.Lat-origin.Lat) * earthRadiusMeters
	return x, y
}

// PointSegmentDistanceMeters returns the perpendicular distance from p to the
// segment a-b, clamped to the segment ends, and the position t in [0,1] of the
// closest point along the segment.
func PointSegmentDistanceMeters(p, a, b domain.GeoPoint) (float64, float64) {
	ax, ay := project(p, a)
	bx, by := project(p, b)

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(ax, ay), 0
	}

	// p is the projection origin, so the closest point solves for (0,0).
	t := -(ax*dx + ay*dy) / lenSq
	t = math.Max(0, math.Min(1, t))

	cx := ax + t*dx
	cy := ay + t*dy
	return math.Hypot(cx, cy), t
}

// Closest position of a point relative to a polyline.
type PolylineMatch struct {
	DistanceMeters float64
	Segment        int
	Offset         float64
}

// NearestOnPolyline finds the segment of line closest to p.
// On equal distances the earliest segment wins, so results follow route order.
// A single-vertex line is treated as a point; an empty line reports ok=false.
func NearestOnPolyline(p domain.GeoPoint, line []domain.GeoPoint) (PolylineMatch, bool) {
	switch len(line) {
	case 0:
		return PolylineMatch{}, false
	case 1:
		return PolylineMatch{DistanceMeters: HaversineMeters(p, line[0])}, true
	}

	best := PolylineMatch{DistanceMeters: math.Inf(1)}
	for i := 0; i < len(line)-1; i++ {
		d, t := PointSegmentDistanceMeters(p, line[i], line[i+1])
		if d < best.DistanceMeters {
			best = PolylineMatch{DistanceMeters: d, Segment: i, Offset: t}
		}
	}
	return best, true
}
