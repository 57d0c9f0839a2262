package services

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"truck-dispatch-service/internal/domain"
	"truck-dispatch-service/internal/geo"
	"truck-dispatch-service/internal/platform/obs"
)

// RouteOptimizer is the part of TruckRouteOptimizer the dispatcher depends on.
type RouteOptimizer interface {
	OptimizeRoute(ctx context.Context, req domain.RouteRequest, areas []domain.HighRiskArea) (*domain.RouteResult, error)
}

// Vehicle ranked by great-circle distance to the dispatch target.
type Candidate struct {
	Vehicle domain.Vehicle
	Meters  float64
}

// RankCandidates sorts vehicles ascending by haversine distance to target.
// The sort is stable so equal distances keep input order.
func RankCandidates(target domain.GeoPoint, vehicles []domain.Vehicle) []Candidate {
	ranked := make([]Candidate, 0, len(vehicles))
	for _, v := range vehicles {
		ranked = append(ranked, Candidate{Vehicle: v, Meters: geo.HaversineMeters(v.Location, target)})
	}

	slices.SortStableFunc(ranked, func(a, b Candidate) int {
		if a.Meters < b.Meters {
			return -1
		}
		if a.Meters > b.Meters {
			return 1
		}
		return 0
	})
	return ranked
}

// ClosestVehicleFinder selects the nearest vehicle that can actually be routed
// to a target.
//
// Candidates are resolved strictly in distance order; the first success wins.
// Prefetch > 1 lets up to that many route requests run ahead of the candidate
// being resolved, which lowers latency without changing the selection.
type ClosestVehicleFinder struct {
	Optimizer RouteOptimizer
	Risk      RiskCheck
	Prefetch  int
}

type attempt struct {
	route *domain.RouteResult
	err   error
}

// FindClosestVehicle routes candidates closest-first and returns the first
// feasible one. A candidate whose route fails with a provider or validation
// error is skipped. Fails with *domain.NotFoundError when the pool is empty
// (no provider call is made) or every candidate fails.
func (f *ClosestVehicleFinder) FindClosestVehicle(
	ctx context.Context,
	target domain.GeoPoint,
	highRiskAreas []domain.HighRiskArea,
	vehicles []domain.Vehicle,
) (_ *domain.DispatchResult, err error) {
	defer obs.Time(ctx, "dispatch.FindClosestVehicle")(&err)

	if !target.Valid() {
		return nil, &domain.ValidationError{
			Field:  "target",
			Reason: fmt.Sprintf("coordinate (%g, %g) out of range", target.Lat, target.Lng),
		}
	}
	if len(vehicles) == 0 {
		return nil, &domain.NotFoundError{What: "available vehicle"}
	}

	ranked := RankCandidates(target, vehicles)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pending := make([]chan attempt, len(ranked))
	launch := func(i int) {
		ch := make(chan attempt, 1)
		pending[i] = ch
		origin := ranked[i].Vehicle.Location
		go func() {
			route, err := f.Optimizer.OptimizeRoute(ctx, domain.RouteRequest{
				Origin:      &origin,
				Destination: &target,
				Profile:     domain.ProfileTruck,
			}, highRiskAreas)
			ch <- attempt{route: route, err: err}
		}()
	}

	window := max(1, f.Prefetch)
	next := 0
	for ; next < len(ranked) && next < window; next++ {
		launch(next)
	}

	for i, c := range ranked {
		var a attempt
		select {
		case a = <-pending[i]:
		case <-ctx.Done():
		}
		// A result that raced with cancellation is discarded.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if a.err != nil {
			if !skippable(a.err) {
				return nil, fmt.Errorf("find closest vehicle: candidate %q: %w", c.Vehicle.ID, a.err)
			}

			obs.L().Info("dispatch candidate skipped",
				zap.String("req_id", obs.RequestID(ctx)),
				zap.String("vehicle_id", c.Vehicle.ID),
				zap.Float64("distance_m", c.Meters),
				zap.Error(a.err),
			)
			if next < len(ranked) {
				launch(next)
				next++
			}
			continue
		}

		return &domain.DispatchResult{
			Vehicle:                c.Vehicle,
			Route:                  a.route,
			PassesHighRisk:         f.Risk.Passes(a.route.Geometry, highRiskAreas),
			CheckedAreas:           len(highRiskAreas),
			DistanceToTargetMeters: c.Meters,
			CandidatesTried:        i + 1,
		}, nil
	}

	return nil, &domain.NotFoundError{What: "available vehicle"}
}

// skippable reports whether a candidate failure is specific to that candidate.
// A provider timeout counts; cancellation of the caller is checked before.
func skippable(err error) bool {
	return domain.IsProvider(err) || domain.IsValidation(err)
}
