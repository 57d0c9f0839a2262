package directions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"truck-dispatch-service/internal/domain"
	"truck-dispatch-service/internal/geo"
	"truck-dispatch-service/internal/platform/obs"
	"truck-dispatch-service/internal/ports"
)

var orsProfiles = map[string]string{
	domain.ProfileTruck: "driving-hgv",
}

// ORS roadaccessrestrictions bit flags.
var accessRestrictions = []struct {
	bit  int
	name string
}{
	{1, "access:no"},
	{2, "access:customers"},
	{4, "access:destination"},
	{8, "access:delivery"},
	{16, "access:private"},
	{32, "access:permissive"},
}

type multiPolygon struct {
	Type        string          `json:"type"`
	Coordinates [][][][]float64 `json:"coordinates"`
}

type directionsOptions struct {
	VehicleType   string        `json:"vehicle_type"`
	AvoidPolygons *multiPolygon `json:"avoid_polygons,omitempty"`
}

type directionsRequest struct {
	Coordinates  [][]float64       `json:"coordinates"`
	Instructions bool              `json:"instructions"`
	ExtraInfo    []string          `json:"extra_info,omitempty"`
	Departure    string            `json:"departure,omitempty"`
	Options      directionsOptions `json:"options"`
}

type extraSummary struct {
	Value float64 `json:"value"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
		Geometry string `json:"geometry"`
		Warnings []struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"warnings"`
		Extras map[string]struct {
			Summary []extraSummary `json:"summary"`
		} `json:"extras"`
	} `json:"routes"`
}

// GetDirections requests a truck route from OpenRouteService (/v2/directions).
// Every failure is returned as *domain.ProviderError.
func (o *ORSDirectionsProvider) GetDirections(
	ctx context.Context,
	req ports.DirectionsRequest,
) (_ ports.DirectionsResult, err error) {
	defer obs.Time(ctx, "ors.GetDirections")(&err)

	profile, ok := orsProfiles[req.Profile]
	if !ok {
		return ports.DirectionsResult{}, &domain.ProviderError{
			Op:  "directions",
			Err: fmt.Errorf("unsupported profile %q", req.Profile),
		}
	}
	if len(req.Coordinates) < 2 {
		return ports.DirectionsResult{}, &domain.ProviderError{
			Op:  "directions",
			Err: errors.New("at least origin and destination are required"),
		}
	}

	payload, err := json.Marshal(buildDirectionsRequest(req))
	if err != nil {
		return ports.DirectionsResult{}, &domain.ProviderError{Op: "directions", Err: fmt.Errorf("marshal request: %w", err)}
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/json", o.baseURL, profile)
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		perr := &domain.ProviderError{Op: "directions", Err: err}
		var he *httpStatusError
		if errors.As(err, &he) {
			perr.StatusCode = he.Code
		}
		return ports.DirectionsResult{}, perr
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return ports.DirectionsResult{}, &domain.ProviderError{Op: "directions", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(dr.Routes) == 0 {
		return ports.DirectionsResult{}, &domain.ProviderError{Op: "directions", Err: errors.New("response contains no route")}
	}

	route := dr.Routes[0]
	if route.Geometry == "" {
		return ports.DirectionsResult{}, &domain.ProviderError{Op: "directions", Err: errors.New("route has no geometry")}
	}

	warnings := make([]string, 0, len(route.Warnings))
	for _, w := range route.Warnings {
		warnings = append(warnings, w.Message)
	}

	var restrictions []string
	if ex, ok := route.Extras["roadaccessrestrictions"]; ok {
		for _, s := range ex.Summary {
			restrictions = append(restrictions, decodeAccessRestrictions(int(s.Value))...)
		}
	}
	if ex, ok := route.Extras["tollways"]; ok {
		for _, s := range ex.Summary {
			if s.Value != 0 {
				restrictions = append(restrictions, "tollway")
				break
			}
		}
	}

	// ORS returns float metrics; round to nearest integer for domain consistency.
	return ports.DirectionsResult{
		DistanceMeters:  int(math.Round(route.Summary.Distance)),
		DurationSeconds: int(math.Round(route.Summary.Duration)),
		Polyline:        route.Geometry,
		Warnings:        warnings,
		Restrictions:    restrictions,
	}, nil
}

func buildDirectionsRequest(req ports.DirectionsRequest) directionsRequest {
	coords := make([][]float64, 0, len(req.Coordinates))
	for _, c := range req.Coordinates {
		coords = append(coords, c.CoordsToList())
	}

	body := directionsRequest{
		Coordinates: coords,
		ExtraInfo:   []string{"tollways", "roadaccessrestrictions"},
		Options:     directionsOptions{VehicleType: "hgv"},
	}
	if req.DepartAt != nil {
		body.Departure = req.DepartAt.UTC().Format(time.RFC3339)
	}
	if len(req.Avoid) > 0 {
		polys := make([][][][]float64, 0, len(req.Avoid))
		for _, z := range req.Avoid {
			polys = append(polys, [][][]float64{zoneRing(z.Points)})
		}
		body.Options.AvoidPolygons = &multiPolygon{Type: "MultiPolygon", Coordinates: polys}
	}
	return body
}

// zoneRing renders a zone as a closed GeoJSON ring of [lng, lat] pairs.
func zoneRing(points []domain.GeoPoint) [][]float64 {
	ring := geo.AvoidRing(points)
	out := make([][]float64, 0, len(ring))
	for _, p := range ring {
		out = append(out, p.CoordsToList())
	}
	return out
}

func decodeAccessRestrictions(value int) []string {
	var out []string
	for _, r := range accessRestrictions {
		if value&r.bit != 0 {
			out = append(out, r.name)
		}
	}
	return out
}
