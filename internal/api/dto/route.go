package dto

import (
	"time"

	"truck-dispatch-service/internal/domain"
)

type PointRequest struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lng *float64 `json:"lng" validate:"required,longitude"`
}

func (p *PointRequest) GeoPoint() domain.GeoPoint {
	return domain.GeoPoint{Lat: *p.Lat, Lng: *p.Lng}
}

// HighRiskAreaRequest lets a caller supply areas inline instead of using the
// stored set. Coordinates use the stored "lng,lat lng,lat" form.
type HighRiskAreaRequest struct {
	ID          string `json:"id"`
	Coordinates string `json:"coordinates"`
	Severity    string `json:"severity"`
}

type OptimizeRouteRequest struct {
	Origin        *PointRequest         `json:"origin" validate:"required"`
	Destination   *PointRequest         `json:"destination" validate:"required"`
	Waypoints     []PointRequest        `json:"waypoints" validate:"max=48,dive"`
	Profile       string                `json:"profile" validate:"omitempty,oneof=truck"`
	DepartAt      *time.Time            `json:"depart_at"`
	HighRiskAreas []HighRiskAreaRequest `json:"high_risk_areas"`
	Persist       bool                  `json:"persist"`
}

// RouteRequest converts the validated body to the domain request.
func (r *OptimizeRouteRequest) RouteRequest() domain.RouteRequest {
	origin := r.Origin.GeoPoint()
	dest := r.Destination.GeoPoint()

	waypoints := make([]domain.GeoPoint, 0, len(r.Waypoints))
	for i := range r.Waypoints {
		waypoints = append(waypoints, r.Waypoints[i].GeoPoint())
	}

	return domain.RouteRequest{
		Origin:      &origin,
		Destination: &dest,
		Waypoints:   waypoints,
		Profile:     r.Profile,
		DepartAt:    r.DepartAt,
	}
}

// AreasToDomain returns nil when no inline areas were given.
func AreasToDomain(in []HighRiskAreaRequest) []domain.HighRiskArea {
	if in == nil {
		return nil
	}
	out := make([]domain.HighRiskArea, 0, len(in))
	for _, a := range in {
		out = append(out, domain.HighRiskArea{ID: a.ID, Coordinates: a.Coordinates, Severity: a.Severity})
	}
	return out
}

type BreakResponse struct {
	StartAt         time.Time `json:"start_at"`
	DrivenSeconds   int       `json:"driven_seconds"`
	DurationSeconds int       `json:"duration_seconds"`
}

type RouteResponse struct {
	RouteID                        string          `json:"route_id,omitempty"`
	Distance                       int             `json:"distance"`
	Duration                       int             `json:"duration"`
	DepartAt                       time.Time       `json:"depart_at"`
	ETA                            time.Time       `json:"eta"`
	Geometry                       [][]float64     `json:"geometry"`
	Warnings                       []string        `json:"warnings"`
	Restrictions                   []string        `json:"restrictions"`
	TollGates                      []string        `json:"tollgates"`
	Provinces                      []string        `json:"provinces"`
	Breaks                         []BreakResponse `json:"breaks"`
	BreakTime                      int             `json:"break_time"`
	TotalDurationWithBreaksSeconds int             `json:"total_duration_with_breaks"`
	ExclusionZonesSent             int             `json:"exclusion_zones_sent"`
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// NewRouteResponse renders a route result. Geometry pairs are [lng, lat].
func NewRouteResponse(res *domain.RouteResult) RouteResponse {
	geometry := make([][]float64, 0, len(res.Geometry))
	for _, p := range res.Geometry {
		geometry = append(geometry, p.CoordsToList())
	}

	breaks := make([]BreakResponse, 0, len(res.Breaks))
	for _, b := range res.Breaks {
		breaks = append(breaks, BreakResponse{
			StartAt:         b.StartAt,
			DrivenSeconds:   int(b.DrivenBefore.Seconds()),
			DurationSeconds: b.DurationSeconds,
		})
	}

	return RouteResponse{
		Distance:                       res.DistanceMeters,
		Duration:                       res.DurationSeconds,
		DepartAt:                       res.DepartAt,
		ETA:                            res.ETA,
		Geometry:                       geometry,
		Warnings:                       emptyIfNil(res.Warnings),
		Restrictions:                   emptyIfNil(res.Restrictions),
		TollGates:                      emptyIfNil(res.TollGates),
		Provinces:                      emptyIfNil(res.Provinces),
		Breaks:                         breaks,
		BreakTime:                      res.BreakTimeSeconds,
		TotalDurationWithBreaksSeconds: res.TotalDurationWithBreaksSeconds,
		ExclusionZonesSent:             res.ExclusionZonesSent,
	}
}
