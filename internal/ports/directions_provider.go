package ports

import (
	"context"
	"time"

	"truck-dispatch-service/internal/domain"
)

// Turn-by-turn request sent to the external directions provider.
// Coordinates are origin, waypoints in order, then destination.
type DirectionsRequest struct {
	Profile     string
	Coordinates []domain.GeoPoint
	DepartAt    *time.Time
	Avoid       []domain.ExclusionZone
}

// Raw provider answer before any toll-gate/province/break enrichment.
// Polyline is the provider's encoded geometry.
type DirectionsResult struct {
	DistanceMeters  int
	DurationSeconds int
	Polyline        string
	Warnings        []string
	Restrictions    []string
}

// Contract for retrieving a truck route from an external provider.
type DirectionsProvider interface {
	// Return the route for the request; failures are *domain.ProviderError.
	GetDirections(ctx context.Context, req DirectionsRequest) (DirectionsResult, error)
}
