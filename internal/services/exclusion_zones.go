package services

import (
	"fmt"

	"truck-dispatch-service/internal/domain"
	"truck-dispatch-service/internal/geo"
)

// Provider-side caps on avoidance geometry. MaxVertices counts encoded ring
// vertices (see geo.AvoidRing). Zero means unlimited.
type ExclusionZoneLimits struct {
	MaxZones    int
	MaxVertices int
}

// Outcome of encoding high-risk areas as exclusion zones.
type ExclusionZoneBuild struct {
	Zones           []domain.ExclusionZone
	DiscardedTokens int
	EmptyAreas      int
	TruncatedZones  int
}

// Warnings describes every degradation applied while building the zones.
func (b ExclusionZoneBuild) Warnings() []string {
	var out []string
	if b.DiscardedTokens > 0 {
		out = append(out, fmt.Sprintf("high-risk areas: skipped %d malformed coordinate tokens", b.DiscardedTokens))
	}
	if b.EmptyAreas > 0 {
		out = append(out, fmt.Sprintf("high-risk areas: ignored %d areas without valid coordinates", b.EmptyAreas))
	}
	if b.TruncatedZones > 0 {
		out = append(out, fmt.Sprintf("exclusion zones truncated: dropped %d zones over provider limit", b.TruncatedZones))
	}
	return out
}

// ExclusionZoneBuilder converts stored high-risk areas into provider-ready
// avoidance geometry. It never fails: bad input degrades the result and is
// reported through ExclusionZoneBuild.Warnings.
type ExclusionZoneBuilder struct {
	Limits ExclusionZoneLimits
}

func (b ExclusionZoneBuilder) Build(areas []domain.HighRiskArea) ExclusionZoneBuild {
	var out ExclusionZoneBuild

	zones := make([]domain.ExclusionZone, 0, len(areas))
	for _, a := range areas {
		points, discarded := geo.ParseCoordinates(a.Coordinates)
		out.DiscardedTokens += discarded
		if len(points) == 0 {
			out.EmptyAreas++
			continue
		}
		zones = append(zones, domain.ExclusionZone{AreaID: a.ID, Points: points})
	}

	// Keep the longest prefix that fits the budget; everything after the first
	// zone that does not fit is dropped so truncation is always from the end.
	// Vertices are counted as encoded for the provider: closed rings, with
	// degenerate zones boxed.
	kept := 0
	vertices := 0
	for _, z := range zones {
		if b.Limits.MaxZones > 0 && kept >= b.Limits.MaxZones {
			break
		}
		cost := len(geo.AvoidRing(z.Points))
		if b.Limits.MaxVertices > 0 && vertices+cost > b.Limits.MaxVertices {
			break
		}
		vertices += cost
		kept++
	}

	out.TruncatedZones = len(zones) - kept
	out.Zones = zones[:kept]
	return out
}
