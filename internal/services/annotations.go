package services

import (
	"context"
	"slices"

	"truck-dispatch-service/internal/domain"
	"truck-dispatch-service/internal/geo"
)

// StaticReference serves fixed toll-gate and province data.
type StaticReference struct {
	TollGates []domain.TollGate
	Provinces []domain.Province
}

func (s StaticReference) ListTollGates(context.Context) ([]domain.TollGate, error) {
	return s.TollGates, nil
}

func (s StaticReference) ListProvinces(context.Context) ([]domain.Province, error) {
	return s.Provinces, nil
}

// DetectTollGates returns the ids of gates whose perpendicular distance to the
// route is at most thresholdMeters (inclusive). Gates are ordered by where
// their closest segment occurs along the route; each id is reported once.
func DetectTollGates(geometry []domain.GeoPoint, gates []domain.TollGate, thresholdMeters float64) []string {
	type hit struct {
		id     string
		match  geo.PolylineMatch
		source int
	}

	hits := make([]hit, 0)
	for i, g := range gates {
		m, ok := geo.NearestOnPolyline(g.Location, geometry)
		if !ok || m.DistanceMeters > thresholdMeters {
			continue
		}
		hits = append(hits, hit{id: g.ID, match: m, source: i})
	}

	slices.SortStableFunc(hits, func(a, b hit) int {
		if a.match.Segment != b.match.Segment {
			return a.match.Segment - b.match.Segment
		}
		if a.match.Offset < b.match.Offset {
			return -1
		}
		if a.match.Offset > b.match.Offset {
			return 1
		}
		return a.source - b.source
	})

	seen := make(map[string]struct{}, len(hits))
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		if _, ok := seen[h.id]; ok {
			continue
		}
		seen[h.id] = struct{}{}
		out = append(out, h.id)
	}
	return out
}

// DetectProvinces resamples the route every sampleMeters (and at every vertex)
// and returns province ids in first-encountered order. A sample on a shared
// border reports each containing province in reference-data order.
func DetectProvinces(geometry []domain.GeoPoint, provinces []domain.Province, sampleMeters float64) []string {
	if len(geometry) == 0 || len(provinces) == 0 {
		return []string{}
	}

	boxes := make([]bounds, len(provinces))
	for i, p := range provinces {
		boxes[i] = boundsOf(p.Polygon)
	}

	seen := make(map[string]struct{}, len(provinces))
	out := make([]string, 0, len(provinces))
	for _, s := range geo.Resample(geometry, sampleMeters) {
		for i, p := range provinces {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			if !boxes[i].contains(s) || !geo.PointInPolygon(s, p.Polygon) {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p.ID)
		}
		if len(out) == len(provinces) {
			break
		}
	}
	return out
}

// sortedSet returns the distinct values of in, sorted.
func sortedSet(in ...[]string) []string {
	out := make([]string, 0)
	for _, s := range in {
		out = append(out, s...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
