package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"truck-dispatch-service/internal/adapters/directions"
	"truck-dispatch-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dispatchTarget = gp(0, 0)

// Roughly 5 km, 2 km and 8 km north of the target, in that input order.
func dispatchPool() []domain.Vehicle {
	return []domain.Vehicle{
		{ID: "v-5km", Location: gp(0.045, 0), Status: domain.VehicleStatusAvailable},
		{ID: "v-2km", Location: gp(0.018, 0), Status: domain.VehicleStatusAvailable},
		{ID: "v-8km", Location: gp(0.072, 0), Status: domain.VehicleStatusAvailable},
	}
}

func routesFor(vehicles []domain.Vehicle, failing ...string) []directions.MockRoute {
	fail := map[string]bool{}
	for _, id := range failing {
		fail[id] = true
	}

	var routes []directions.MockRoute
	for _, v := range vehicles {
		r := directions.MockRoute{From: v.Location, To: dispatchTarget, Meters: 6000, Seconds: 600}
		if fail[v.ID] {
			r.Err = &domain.ProviderError{Op: "directions", StatusCode: http.StatusServiceUnavailable, Err: errors.New("unavailable")}
		}
		routes = append(routes, r)
	}
	return routes
}

func newFinder(opt RouteOptimizer) *ClosestVehicleFinder {
	return &ClosestVehicleFinder{
		Optimizer: opt,
		Risk:      RiskCheck{SampleMeters: 1000, CorridorMeters: 200},
	}
}

func TestRankCandidatesIsStable(t *testing.T) {
	vehicles := []domain.Vehicle{
		{ID: "b", Location: gp(0.01, 0)},
		{ID: "a", Location: gp(0, 0.01)},
		{ID: "c", Location: gp(0.001, 0)},
	}

	ranked := RankCandidates(dispatchTarget, vehicles)

	var ids []string
	for _, c := range ranked {
		ids = append(ids, c.Vehicle.ID)
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
	assert.InDelta(t, ranked[1].Meters, ranked[2].Meters, 1e-6)
}

func TestFindClosestVehicleEmptyPool(t *testing.T) {
	provider := directions.NewMockDirectionsProvider(nil)
	f := newFinder(newTestOptimizer(provider))

	_, err := f.FindClosestVehicle(context.Background(), dispatchTarget, nil, nil)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Empty(t, provider.Calls())
}

func TestFindClosestVehicleSkipsFailedCandidate(t *testing.T) {
	pool := dispatchPool()
	provider := directions.NewMockDirectionsProvider(routesFor(pool, "v-2km"))
	f := newFinder(newTestOptimizer(provider))

	res, err := f.FindClosestVehicle(context.Background(), dispatchTarget, nil, pool)
	require.NoError(t, err)

	assert.Equal(t, "v-5km", res.Vehicle.ID)
	assert.Equal(t, 2, res.CandidatesTried)
	assert.InDelta(t, 5004, res.DistanceToTargetMeters, 5)
	require.NotNil(t, res.Route)
	assert.Equal(t, 6000, res.Route.DistanceMeters)
	assert.False(t, res.PassesHighRisk)
	assert.Zero(t, res.CheckedAreas)

	calls := provider.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, gp(0.018, 0), calls[0].Coordinates[0])
	assert.Equal(t, gp(0.045, 0), calls[1].Coordinates[0])
}

func TestFindClosestVehicleAllCandidatesFail(t *testing.T) {
	pool := dispatchPool()
	provider := directions.NewMockDirectionsProvider(routesFor(pool, "v-5km", "v-2km", "v-8km"))
	f := newFinder(newTestOptimizer(provider))

	_, err := f.FindClosestVehicle(context.Background(), dispatchTarget, nil, pool)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Len(t, provider.Calls(), 3)
}

func TestFindClosestVehicleChecksEveryArea(t *testing.T) {
	pool := dispatchPool()
	provider := directions.NewMockDirectionsProvider(routesFor(pool))
	opt := newTestOptimizer(provider)
	opt.Zones.Limits = ExclusionZoneLimits{MaxZones: 1}
	f := newFinder(opt)

	areas := []domain.HighRiskArea{
		{ID: "elsewhere", Coordinates: "1,1 1.1,1 1.1,1.1"},
		{ID: "on-route", Coordinates: "-0.01,0.005 0.01,0.005 0.01,0.01 -0.01,0.01"},
	}

	res, err := f.FindClosestVehicle(context.Background(), dispatchTarget, areas, pool)
	require.NoError(t, err)

	assert.Equal(t, "v-2km", res.Vehicle.ID)
	assert.True(t, res.PassesHighRisk, "area dropped from the provider request must still be checked")
	assert.Equal(t, 2, res.CheckedAreas)
	require.Len(t, provider.Calls()[0].Avoid, 1)
}

func TestFindClosestVehicleRejectsInvalidTarget(t *testing.T) {
	provider := directions.NewMockDirectionsProvider(nil)
	f := newFinder(newTestOptimizer(provider))

	_, err := f.FindClosestVehicle(context.Background(), gp(100, 0), nil, dispatchPool())
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, provider.Calls())
}

func TestFindClosestVehicleCanceled(t *testing.T) {
	pool := dispatchPool()
	f := newFinder(newTestOptimizer(directions.NewMockDirectionsProvider(routesFor(pool))))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.FindClosestVehicle(ctx, dispatchTarget, nil, pool)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, domain.IsNotFound(err))
}

type scriptedOptimizer struct {
	mu    sync.Mutex
	calls int
	plan  map[domain.GeoPoint]func(ctx context.Context) (*domain.RouteResult, error)
}

func (s *scriptedOptimizer) OptimizeRoute(ctx context.Context, req domain.RouteRequest, _ []domain.HighRiskArea) (*domain.RouteResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.plan[*req.Origin](ctx)
}

func after(d time.Duration, res *domain.RouteResult, err error) func(ctx context.Context) (*domain.RouteResult, error) {
	return func(ctx context.Context) (*domain.RouteResult, error) {
		select {
		case <-time.After(d):
			return res, err
		case <-ctx.Done():
			return nil, &domain.ProviderError{Op: "directions", Err: ctx.Err()}
		}
	}
}

func TestFindClosestVehiclePrefetchKeepsRankOrder(t *testing.T) {
	pool := dispatchPool()
	route := func(m int) *domain.RouteResult {
		return &domain.RouteResult{DistanceMeters: m, Geometry: []domain.GeoPoint{gp(1, 1), gp(1, 2)}}
	}
	fail := &domain.ProviderError{Op: "directions", StatusCode: http.StatusBadGateway, Err: errors.New("bad gateway")}

	for _, prefetch := range []int{0, 1, 2, 3} {
		opt := &scriptedOptimizer{plan: map[domain.GeoPoint]func(context.Context) (*domain.RouteResult, error){
			gp(0.018, 0): after(40*time.Millisecond, nil, fail),
			gp(0.045, 0): after(20*time.Millisecond, route(5000), nil),
			gp(0.072, 0): after(0, route(8000), nil),
		}}
		f := newFinder(opt)
		f.Prefetch = prefetch

		res, err := f.FindClosestVehicle(context.Background(), dispatchTarget, nil, pool)
		require.NoError(t, err, "prefetch=%d", prefetch)
		assert.Equal(t, "v-5km", res.Vehicle.ID, "prefetch=%d", prefetch)
		assert.Equal(t, 5000, res.Route.DistanceMeters)
		assert.Equal(t, 2, res.CandidatesTried)
	}
}

func TestFindClosestVehicleAbortsOnUnexpectedError(t *testing.T) {
	boom := errors.New("reference store down")
	opt := &scriptedOptimizer{plan: map[domain.GeoPoint]func(context.Context) (*domain.RouteResult, error){
		gp(0.018, 0): after(0, nil, boom),
		gp(0.045, 0): after(0, &domain.RouteResult{}, nil),
		gp(0.072, 0): after(0, &domain.RouteResult{}, nil),
	}}
	f := newFinder(opt)

	_, err := f.FindClosestVehicle(context.Background(), dispatchTarget, nil, dispatchPool())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, domain.IsNotFound(err))
	assert.Equal(t, 1, opt.calls)
}

func TestFindClosestVehicleCancellationWinsOverReadyResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := func(context.Context) (*domain.RouteResult, error) {
		cancel()
		return &domain.RouteResult{DistanceMeters: 1}, nil
	}
	opt := &scriptedOptimizer{plan: map[domain.GeoPoint]func(context.Context) (*domain.RouteResult, error){
		gp(0.018, 0): ready,
		gp(0.045, 0): ready,
		gp(0.072, 0): ready,
	}}

	for range 20 {
		res, err := newFinder(opt).FindClosestVehicle(ctx, dispatchTarget, nil, dispatchPool())
		assert.Nil(t, res)
		assert.ErrorIs(t, err, context.Canceled)
	}
}
