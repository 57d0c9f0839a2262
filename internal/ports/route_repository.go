package ports

import (
	"context"

	"truck-dispatch-service/internal/domain"
)

// Port: persistence of planned routes chosen by the caller.
type RouteRepository interface {
	// Store the plan and return its generated identifier.
	SaveRoute(ctx context.Context, req domain.RouteRequest, res *domain.RouteResult) (string, error)
}
