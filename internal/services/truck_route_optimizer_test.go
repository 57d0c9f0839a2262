package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"truck-dispatch-service/internal/adapters/directions"
	"truck-dispatch-service/internal/domain"
	"truck-dispatch-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providerFunc func(ctx context.Context, req ports.DirectionsRequest) (ports.DirectionsResult, error)

func (f providerFunc) GetDirections(ctx context.Context, req ports.DirectionsRequest) (ports.DirectionsResult, error) {
	return f(ctx, req)
}

func box(minLat, maxLat, minLng, maxLng float64) []domain.GeoPoint {
	return []domain.GeoPoint{gp(minLat, minLng), gp(minLat, maxLng), gp(maxLat, maxLng), gp(maxLat, minLng)}
}

var (
	testOrigin      = gp(0, 0)
	testDestination = gp(0, 1)
	testDepart      = time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
)

func testReference() StaticReference {
	return StaticReference{
		TollGates: []domain.TollGate{
			{ID: "T-far", Location: gp(0.5, 0.5)},
			{ID: "T2", Location: gp(-0.001, 0.75)},
			{ID: "T1", Location: gp(0.001, 0.25)},
		},
		Provinces: []domain.Province{
			{ID: "P2", Polygon: box(-1, 1, 0.5, 1.5)},
			{ID: "P1", Polygon: box(-1, 1, -0.5, 0.5)},
		},
	}
}

func newTestOptimizer(p ports.DirectionsProvider) *TruckRouteOptimizer {
	return &TruckRouteOptimizer{
		Provider:                p,
		Reference:               testReference(),
		Zones:                   ExclusionZoneBuilder{Limits: ExclusionZoneLimits{MaxZones: 10, MaxVertices: 100}},
		Breaks:                  regulatory,
		TollGateThresholdMeters: 300,
		ProvinceSampleMeters:    1000,
		Now:                     func() time.Time { return testDepart },
	}
}

func fiveHourRoute() []directions.MockRoute {
	return []directions.MockRoute{{
		From:         testOrigin,
		To:           testDestination,
		Meters:       111195,
		Seconds:      5 * 3600,
		Geometry:     []domain.GeoPoint{testOrigin, gp(0, 0.5), testDestination},
		Warnings:     []string{"b warning", "a warning", "a warning"},
		Restrictions: []string{"tollway"},
	}}
}

func routeRequest() domain.RouteRequest {
	o, d := testOrigin, testDestination
	depart := testDepart
	return domain.RouteRequest{Origin: &o, Destination: &d, DepartAt: &depart}
}

func TestOptimizeRouteEnrichesProviderRoute(t *testing.T) {
	provider := directions.NewMockDirectionsProvider(fiveHourRoute())
	opt := newTestOptimizer(provider)

	res, err := opt.OptimizeRoute(context.Background(), routeRequest(), nil)
	require.NoError(t, err)

	assert.Equal(t, 111195, res.DistanceMeters)
	assert.Equal(t, 18000, res.DurationSeconds)
	assert.Equal(t, []domain.GeoPoint{testOrigin, gp(0, 0.5), testDestination}, res.Geometry)
	assert.Equal(t, []string{"T1", "T2"}, res.TollGates)
	assert.Equal(t, []string{"P1", "P2"}, res.Provinces)
	assert.Equal(t, []string{"a warning", "b warning"}, res.Warnings)
	assert.Equal(t, []string{"tollway"}, res.Restrictions)

	require.Len(t, res.Breaks, 1)
	assert.Equal(t, 1800, res.BreakTimeSeconds)
	assert.Equal(t, 19800, res.TotalDurationWithBreaksSeconds)
	assert.GreaterOrEqual(t, res.TotalDurationWithBreaksSeconds, res.DurationSeconds)
	assert.Equal(t, testDepart, res.DepartAt)
	assert.Equal(t, testDepart.Add(19800*time.Second), res.ETA)

	calls := provider.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, domain.ProfileTruck, calls[0].Profile)
}

func TestOptimizeRouteShortTripHasNoBreaks(t *testing.T) {
	routes := fiveHourRoute()
	routes[0].Seconds = 3600
	opt := newTestOptimizer(directions.NewMockDirectionsProvider(routes))

	res, err := opt.OptimizeRoute(context.Background(), routeRequest(), nil)
	require.NoError(t, err)

	assert.Zero(t, res.BreakTimeSeconds)
	assert.Empty(t, res.Breaks)
	assert.Equal(t, res.DurationSeconds, res.TotalDurationWithBreaksSeconds)
}

func TestOptimizeRouteIsIdempotent(t *testing.T) {
	opt := newTestOptimizer(directions.NewMockDirectionsProvider(fiveHourRoute()))
	areas := []domain.HighRiskArea{{ID: "r", Coordinates: "0.2,0.2 0.3,0.2 bad 0.3,0.3"}}

	first, err := opt.OptimizeRoute(context.Background(), routeRequest(), areas)
	require.NoError(t, err)
	second, err := opt.OptimizeRoute(context.Background(), routeRequest(), areas)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestOptimizeRouteDefaultsDepartureToNow(t *testing.T) {
	opt := newTestOptimizer(directions.NewMockDirectionsProvider(fiveHourRoute()))
	req := routeRequest()
	req.DepartAt = nil

	res, err := opt.OptimizeRoute(context.Background(), req, nil)
	require.NoError(t, err)

	assert.Equal(t, testDepart, res.DepartAt)
	assert.Equal(t, testDepart.Add(19800*time.Second), res.ETA)
}

func TestOptimizeRouteSendsZonesWaypointsAndTruncationWarning(t *testing.T) {
	var got ports.DirectionsRequest
	routes := fiveHourRoute()
	mock := directions.NewMockDirectionsProvider(routes)
	provider := providerFunc(func(ctx context.Context, req ports.DirectionsRequest) (ports.DirectionsResult, error) {
		got = req
		return mock.GetDirections(ctx, req)
	})

	opt := newTestOptimizer(provider)
	opt.Zones.Limits = ExclusionZoneLimits{MaxZones: 1}

	req := routeRequest()
	req.Waypoints = []domain.GeoPoint{gp(0.1, 0.3), gp(-0.1, 0.6)}
	areas := []domain.HighRiskArea{
		{ID: "r1", Coordinates: "0.2,0.2 0.3,0.2 0.3,0.3"},
		{ID: "r2", Coordinates: "0.7,0.2 0.8,0.2 0.8,0.3"},
	}

	res, err := opt.OptimizeRoute(context.Background(), req, areas)
	require.NoError(t, err)

	assert.Equal(t, []domain.GeoPoint{testOrigin, gp(0.1, 0.3), gp(-0.1, 0.6), testDestination}, got.Coordinates)
	require.Len(t, got.Avoid, 1)
	assert.Equal(t, "r1", got.Avoid[0].AreaID)
	assert.Equal(t, 1, res.ExclusionZonesSent)
	assert.Contains(t, res.Warnings, "exclusion zones truncated: dropped 1 zones over provider limit")
}

func TestOptimizeRouteValidation(t *testing.T) {
	provider := directions.NewMockDirectionsProvider(fiveHourRoute())
	opt := newTestOptimizer(provider)

	bad := gp(91, 0)
	cases := map[string]func(r *domain.RouteRequest){
		"missing origin":      func(r *domain.RouteRequest) { r.Origin = nil },
		"missing destination": func(r *domain.RouteRequest) { r.Destination = nil },
		"origin out of range": func(r *domain.RouteRequest) { r.Origin = &bad },
		"bad waypoint":        func(r *domain.RouteRequest) { r.Waypoints = []domain.GeoPoint{gp(0, 181)} },
		"bad profile":         func(r *domain.RouteRequest) { r.Profile = "bicycle" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := routeRequest()
			mutate(&req)

			_, err := opt.OptimizeRoute(context.Background(), req, nil)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err), "got %v", err)
		})
	}
	assert.Empty(t, provider.Calls())
}

func TestOptimizeRouteProviderFailures(t *testing.T) {
	routes := fiveHourRoute()
	routes[0].Err = &domain.ProviderError{Op: "directions", StatusCode: http.StatusInternalServerError, Err: errors.New("boom")}
	opt := newTestOptimizer(directions.NewMockDirectionsProvider(routes))

	_, err := opt.OptimizeRoute(context.Background(), routeRequest(), nil)
	require.Error(t, err)
	assert.True(t, domain.IsProvider(err))

	untyped := newTestOptimizer(providerFunc(func(context.Context, ports.DirectionsRequest) (ports.DirectionsResult, error) {
		return ports.DirectionsResult{}, errors.New("connection reset")
	}))
	_, err = untyped.OptimizeRoute(context.Background(), routeRequest(), nil)
	assert.True(t, domain.IsProvider(err))
}

func TestOptimizeRouteRejectsUnparsableGeometry(t *testing.T) {
	opt := newTestOptimizer(providerFunc(func(context.Context, ports.DirectionsRequest) (ports.DirectionsResult, error) {
		return ports.DirectionsResult{DistanceMeters: 10, DurationSeconds: 10, Polyline: "_p~iF~ps|U_"}, nil
	}))

	_, err := opt.OptimizeRoute(context.Background(), routeRequest(), nil)
	require.Error(t, err)

	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "geometry", perr.Op)
}

func TestOptimizeRouteReferenceFailureIsNotAProviderError(t *testing.T) {
	opt := newTestOptimizer(directions.NewMockDirectionsProvider(fiveHourRoute()))
	opt.Reference = failingReference{}

	_, err := opt.OptimizeRoute(context.Background(), routeRequest(), nil)
	require.Error(t, err)
	assert.False(t, domain.IsProvider(err))
}

type failingReference struct{}

func (failingReference) ListTollGates(context.Context) ([]domain.TollGate, error) {
	return nil, errors.New("redis unavailable")
}

func (failingReference) ListProvinces(context.Context) ([]domain.Province, error) {
	return nil, errors.New("redis unavailable")
}
