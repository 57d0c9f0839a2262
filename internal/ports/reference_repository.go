package ports

import (
	"context"

	"truck-dispatch-service/internal/domain"
)

// Port: read access to toll-gate and province reference data.
type ReferenceData interface {
	ListTollGates(ctx context.Context) ([]domain.TollGate, error)
	ListProvinces(ctx context.Context) ([]domain.Province, error)
}

// Port: read access to stored high-risk areas, in stored order.
type HighRiskAreaRepository interface {
	ListHighRiskAreas(ctx context.Context) ([]domain.HighRiskArea, error)
}
