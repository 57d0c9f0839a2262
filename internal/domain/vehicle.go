package domain

const (
	VehicleStatusAvailable   = "available"
	VehicleStatusOnTrip      = "on_trip"
	VehicleStatusMaintenance = "maintenance"
)

// Fleet vehicle as read from the fleet store. The engine never mutates it.
type Vehicle struct {
	ID       string
	Location GeoPoint
	Status   string
}

// Dispatchable reports whether the vehicle may be offered for a new job.
func (v Vehicle) Dispatchable() bool {
	return v.Status == "" || v.Status == VehicleStatusAvailable
}

// Outcome of a closest-vehicle search.
// PassesHighRisk is computed against every supplied area, independent of
// which areas were actually sent to the provider as exclusions.
type DispatchResult struct {
	Vehicle                Vehicle
	Route                  *RouteResult
	PassesHighRisk         bool
	CheckedAreas           int
	DistanceToTargetMeters float64
	CandidatesTried        int
}
