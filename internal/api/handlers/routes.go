package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"truck-dispatch-service/internal/api/dto"
	"truck-dispatch-service/internal/platform/obs"
	"truck-dispatch-service/internal/ports"
	"truck-dispatch-service/internal/services"
)

// RouteHandler plans single truck trips.
type RouteHandler struct {
	Optimizer services.RouteOptimizer
	Areas     ports.HighRiskAreaRepository
	Routes    ports.RouteRepository
}

// Optimize plans a route avoiding the stored high-risk areas, or the inline
// ones when the body carries them. With persist set the plan is stored and
// its id returned.
func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.OptimizeRouteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Persist && h.Routes == nil {
		writeError(w, r, http.StatusNotImplemented, "route persistence is not configured")
		return
	}

	areas := dto.AreasToDomain(req.HighRiskAreas)
	if areas == nil && h.Areas != nil {
		var err error
		if areas, err = h.Areas.ListHighRiskAreas(r.Context()); err != nil {
			writeServiceError(w, r, "list high risk areas", err)
			return
		}
	}

	routeReq := req.RouteRequest()
	res, err := h.Optimizer.OptimizeRoute(r.Context(), routeReq, areas)
	if err != nil {
		writeServiceError(w, r, "optimize route", err)
		return
	}

	out := dto.NewRouteResponse(res)
	if req.Persist {
		id, err := h.Routes.SaveRoute(r.Context(), routeReq, res)
		if err != nil {
			writeServiceError(w, r, "save route", err)
			return
		}
		out.RouteID = id
		obs.L().Info("route saved", zap.String("req_id", obs.RequestID(r.Context())), zap.String("route_id", id))
	}

	writeJSON(w, r, http.StatusOK, out)
}
