package handlers

import (
	"context"
	"math"
	"net/http"

	"go.uber.org/zap"

	"truck-dispatch-service/internal/api/dto"
	"truck-dispatch-service/internal/domain"
	"truck-dispatch-service/internal/geo"
	"truck-dispatch-service/internal/metrics"
	"truck-dispatch-service/internal/platform/obs"
	"truck-dispatch-service/internal/ports"
)

// Dispatcher is the closest-vehicle search used by DispatchHandler.
type Dispatcher interface {
	FindClosestVehicle(
		ctx context.Context,
		target domain.GeoPoint,
		highRiskAreas []domain.HighRiskArea,
		vehicles []domain.Vehicle,
	) (*domain.DispatchResult, error)
}

type DispatchHandler struct {
	Finder   Dispatcher
	Areas    ports.HighRiskAreaRepository
	Vehicles ports.VehicleRepository

	// Geohash precision of the fleet pre-filter.
	SearchPrecision uint
}

// Dispatch picks the closest routable vehicle for the target.
func (h *DispatchHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.DispatchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ctx := r.Context()
	target := req.Target.GeoPoint()

	areas := dto.AreasToDomain(req.HighRiskAreas)
	if areas == nil && h.Areas != nil {
		var err error
		if areas, err = h.Areas.ListHighRiskAreas(ctx); err != nil {
			metrics.DispatchOutcomes.WithLabelValues("error").Inc()
			writeServiceError(w, r, "list high risk areas", err)
			return
		}
	}

	res, err := h.dispatch(ctx, &req, target, areas)
	if err != nil {
		if domain.IsNotFound(err) {
			metrics.DispatchOutcomes.WithLabelValues("not_found").Inc()
			writeError(w, r, http.StatusNotFound, "no vehicle available")
			return
		}
		metrics.DispatchOutcomes.WithLabelValues("error").Inc()
		writeServiceError(w, r, "dispatch", err)
		return
	}

	metrics.DispatchOutcomes.WithLabelValues("found").Inc()
	obs.L().Info("vehicle dispatched",
		zap.String("req_id", obs.RequestID(ctx)),
		zap.String("vehicle_id", res.Vehicle.ID),
		zap.Int("candidates_tried", res.CandidatesTried),
		zap.Bool("passes_high_risk", res.PassesHighRisk),
	)
	writeJSON(w, r, http.StatusOK, dto.NewDispatchResponse(res))
}

// dispatch searches the inline pool when given. Otherwise the fleet store is
// searched around the target first. That result is kept only when the chosen
// vehicle lies within the radius the geohash block fully covers, since every
// closer vehicle was then a candidate. In any other case the whole fleet is
// searched, minus the nearby vehicles that already failed to route.
func (h *DispatchHandler) dispatch(
	ctx context.Context,
	req *dto.DispatchRequest,
	target domain.GeoPoint,
	areas []domain.HighRiskArea,
) (*domain.DispatchResult, error) {
	if req.Vehicles != nil {
		return h.Finder.FindClosestVehicle(ctx, target, areas, req.DispatchableVehicles())
	}
	if h.Vehicles == nil {
		return h.Finder.FindClosestVehicle(ctx, target, areas, nil)
	}

	var failed map[string]bool
	if h.SearchPrecision > 0 {
		near, err := h.Vehicles.ListAvailableVehiclesNear(ctx, target, h.SearchPrecision)
		if err != nil {
			return nil, err
		}

		if len(near) > 0 {
			res, err := h.Finder.FindClosestVehicle(ctx, target, areas, near)
			switch {
			case err == nil && res.DistanceToTargetMeters <= geo.CoveredRadiusMeters(target, h.SearchPrecision):
				return res, nil
			case err == nil:
				failed = closerThan(target, near, res.DistanceToTargetMeters)
			case domain.IsNotFound(err):
				failed = closerThan(target, near, math.Inf(1))
			default:
				return nil, err
			}
			obs.L().Debug("dispatch widening to whole fleet",
				zap.String("req_id", obs.RequestID(ctx)),
				zap.Int("nearby", len(near)),
				zap.Int("failed", len(failed)),
			)
		}
	}

	all, err := h.Vehicles.ListAvailableVehicles(ctx)
	if err != nil {
		return nil, err
	}

	pool := make([]domain.Vehicle, 0, len(all))
	for _, v := range all {
		if !failed[v.ID] {
			pool = append(pool, v)
		}
	}

	res, err := h.Finder.FindClosestVehicle(ctx, target, areas, pool)
	if err != nil {
		return nil, err
	}
	res.CandidatesTried += len(failed)
	return res, nil
}

// closerThan returns the ids of vehicles strictly closer to target than meters.
func closerThan(target domain.GeoPoint, vehicles []domain.Vehicle, meters float64) map[string]bool {
	ids := make(map[string]bool, len(vehicles))
	for _, v := range vehicles {
		if geo.HaversineMeters(v.Location, target) < meters {
			ids[v.ID] = true
		}
	}
	return ids
}
