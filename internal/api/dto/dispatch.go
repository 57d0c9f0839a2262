package dto

import "truck-dispatch-service/internal/domain"

type VehicleRequest struct {
	ID       string       `json:"id" validate:"required"`
	Location PointRequest `json:"location"`
	Status   string       `json:"status" validate:"omitempty,oneof=available on_trip maintenance"`
}

// DispatchRequest asks for the closest feasible vehicle to Target.
// Vehicles, when present, replaces the fleet store lookup.
type DispatchRequest struct {
	Target        *PointRequest         `json:"target" validate:"required"`
	Vehicles      []VehicleRequest      `json:"vehicles" validate:"omitempty,dive"`
	HighRiskAreas []HighRiskAreaRequest `json:"high_risk_areas"`
}

// DispatchableVehicles converts the inline pool, dropping vehicles that are
// not available.
func (r *DispatchRequest) DispatchableVehicles() []domain.Vehicle {
	out := make([]domain.Vehicle, 0, len(r.Vehicles))
	for i := range r.Vehicles {
		v := domain.Vehicle{
			ID:       r.Vehicles[i].ID,
			Location: r.Vehicles[i].Location.GeoPoint(),
			Status:   r.Vehicles[i].Status,
		}
		if v.Dispatchable() {
			out = append(out, v)
		}
	}
	return out
}

type VehicleResponse struct {
	ID     string  `json:"id"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Status string  `json:"status"`
}

type DispatchResponse struct {
	Vehicle                VehicleResponse `json:"vehicle"`
	Route                  RouteResponse   `json:"route"`
	PassesHighRisk         bool            `json:"passes_high_risk"`
	CheckedAreas           int             `json:"checked_areas"`
	DistanceToTargetMeters float64         `json:"distance_to_target_meters"`
	CandidatesTried        int             `json:"candidates_tried"`
}

func NewDispatchResponse(res *domain.DispatchResult) DispatchResponse {
	status := res.Vehicle.Status
	if status == "" {
		status = domain.VehicleStatusAvailable
	}
	return DispatchResponse{
		Vehicle: VehicleResponse{
			ID:     res.Vehicle.ID,
			Lat:    res.Vehicle.Location.Lat,
			Lng:    res.Vehicle.Location.Lng,
			Status: status,
		},
		Route:                  NewRouteResponse(res.Route),
		PassesHighRisk:         res.PassesHighRisk,
		CheckedAreas:           res.CheckedAreas,
		DistanceToTargetMeters: res.DistanceToTargetMeters,
		CandidatesTried:        res.CandidatesTried,
	}
}
