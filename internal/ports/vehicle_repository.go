package ports

import (
	"context"

	"truck-dispatch-service/internal/domain"
)

// Port: a boundary for retrieving dispatchable vehicles from the fleet store.
type VehicleRepository interface {
	// Retrieve all vehicles currently available for a job.
	ListAvailableVehicles(ctx context.Context) ([]domain.Vehicle, error)
	// Retrieve available vehicles in the geohash cell of target and its neighbours.
	ListAvailableVehiclesNear(ctx context.Context, target domain.GeoPoint, precision uint) ([]domain.Vehicle, error)
}
