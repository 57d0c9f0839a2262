package services

import (
	"truck-dispatch-service/internal/domain"
	"truck-dispatch-service/internal/geo"
)

// RiskCheck re-verifies a produced route against high-risk areas. Provider
// avoidance is a hint, so a successfully avoided route can still pass through.
//
// Areas with three or more valid vertices are polygons: the route passes when a
// resampled route point lies inside or a route segment crosses an edge.
// Smaller areas are corridors: the route passes when an area point lies within
// CorridorMeters of the route or the corridor segment crosses it.
type RiskCheck struct {
	SampleMeters   float64
	CorridorMeters float64
}

// Passes reports whether geometry touches any of the areas.
func (c RiskCheck) Passes(geometry []domain.GeoPoint, areas []domain.HighRiskArea) bool {
	if len(geometry) == 0 {
		return false
	}

	var samples []domain.GeoPoint
	for _, a := range areas {
		points, _ := geo.ParseCoordinates(a.Coordinates)
		switch {
		case len(points) == 0:
			continue
		case len(points) >= 3:
			if samples == nil {
				samples = geo.Resample(geometry, c.SampleMeters)
			}
			if c.polygonHit(samples, geometry, points) {
				return true
			}
		default:
			if c.corridorHit(geometry, points) {
				return true
			}
		}
	}
	return false
}

func (c RiskCheck) polygonHit(samples, geometry, ring []domain.GeoPoint) bool {
	box := boundsOf(ring)
	for _, s := range samples {
		if box.contains(s) && geo.PointInPolygon(s, ring) {
			return true
		}
	}
	return geo.PolylineCrossesRing(geometry, ring)
}

func (c RiskCheck) corridorHit(geometry, points []domain.GeoPoint) bool {
	for _, p := range points {
		if m, ok := geo.NearestOnPolyline(p, geometry); ok && m.DistanceMeters <= c.CorridorMeters {
			return true
		}
	}
	if len(points) == 2 {
		for i := 0; i < len(geometry)-1; i++ {
			if geo.SegmentsIntersect(geometry[i], geometry[i+1], points[0], points[1]) {
				return true
			}
		}
	}
	return false
}

type bounds struct {
	minLat, maxLat, minLng, maxLng float64
}

func boundsOf(points []domain.GeoPoint) bounds {
	b := bounds{minLat: 90, maxLat: -90, minLng: 180, maxLng: -180}
	for _, p := range points {
		b.minLat = min(b.minLat, p.Lat)
		b.maxLat = max(b.maxLat, p.Lat)
		b.minLng = min(b.minLng, p.Lng)
		b.maxLng = max(b.maxLng, p.Lng)
	}
	return b
}

func (b bounds) contains(p domain.GeoPoint) bool {
	return p.Lat >= b.minLat && p.Lat <= b.maxLat && p.Lng >= b.minLng && p.Lng <= b.maxLng
}
