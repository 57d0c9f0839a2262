package directions

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"truck-dispatch-service/internal/domain"
	"truck-dispatch-service/internal/geo"
	"truck-dispatch-service/internal/ports"
)

// MockRoute is a canned provider answer for one origin/destination pair.
// A nil Geometry defaults to the straight line From -> To.
type MockRoute struct {
	From, To     domain.GeoPoint
	Meters       int
	Seconds      int
	Geometry     []domain.GeoPoint
	Warnings     []string
	Restrictions []string
	Err          error
}

// MockDirectionsProvider answers from a fixed table and records every request.
type MockDirectionsProvider struct {
	m map[string]MockRoute

	mu    sync.Mutex
	calls []ports.DirectionsRequest
}

func mockKey(from, to domain.GeoPoint) string {
	return fmt.Sprintf("%v,%v|%v,%v", from.Lat, from.Lng, to.Lat, to.Lng)
}

func NewMockDirectionsProvider(routes []MockRoute) *MockDirectionsProvider {
	m := make(map[string]MockRoute, len(routes))
	for _, r := range routes {
		m[mockKey(r.From, r.To)] = r
	}
	return &MockDirectionsProvider{m: m}
}

func (p *MockDirectionsProvider) GetDirections(ctx context.Context, req ports.DirectionsRequest) (ports.DirectionsResult, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return ports.DirectionsResult{}, &domain.ProviderError{Op: "directions", Err: err}
	}
	if len(req.Coordinates) < 2 {
		return ports.DirectionsResult{}, &domain.ProviderError{Op: "directions", StatusCode: http.StatusBadRequest, Err: fmt.Errorf("need at least 2 coordinates")}
	}

	from := req.Coordinates[0]
	to := req.Coordinates[len(req.Coordinates)-1]
	r, ok := p.m[mockKey(from, to)]
	if !ok {
		return ports.DirectionsResult{}, &domain.ProviderError{
			Op:         "directions",
			StatusCode: http.StatusNotFound,
			Err:        fmt.Errorf("missing route %v -> %v", from, to),
		}
	}
	if r.Err != nil {
		return ports.DirectionsResult{}, r.Err
	}

	geometry := r.Geometry
	if geometry == nil {
		geometry = []domain.GeoPoint{r.From, r.To}
	}

	return ports.DirectionsResult{
		DistanceMeters:  r.Meters,
		DurationSeconds: r.Seconds,
		Polyline:        geo.EncodePolyline(geometry),
		Warnings:        r.Warnings,
		Restrictions:    r.Restrictions,
	}, nil
}

// Calls returns a copy of the requests received so far.
func (p *MockDirectionsProvider) Calls() []ports.DirectionsRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ports.DirectionsRequest(nil), p.calls...)
}
