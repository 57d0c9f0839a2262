package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"truck-dispatch-service/internal/domain"
	"truck-dispatch-service/internal/geo"
	"truck-dispatch-service/internal/platform/obs"
	"truck-dispatch-service/internal/ports"
)

// TruckRouteOptimizer plans a single truck trip through an external directions
// provider and enriches the raw route with toll gates, provinces and mandatory
// breaks.
//
// It holds no mutable state and is safe for concurrent use. Apart from the
// provider call and reading reference data it has no side effects.
type TruckRouteOptimizer struct {
	Provider  ports.DirectionsProvider
	Reference ports.ReferenceData
	Zones     ExclusionZoneBuilder
	Breaks    BreakPolicy

	TollGateThresholdMeters float64
	ProvinceSampleMeters    float64

	// Now supplies the departure baseline when a request has none.
	Now func() time.Time
}

func (o *TruckRouteOptimizer) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func validatePoint(field string, p *domain.GeoPoint) error {
	if p == nil {
		return &domain.ValidationError{Field: field, Reason: "is required"}
	}
	if !p.Valid() {
		return &domain.ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("coordinate (%g, %g) out of range", p.Lat, p.Lng),
		}
	}
	return nil
}

func validateRouteRequest(req domain.RouteRequest) error {
	if err := validatePoint("origin", req.Origin); err != nil {
		return err
	}
	if err := validatePoint("destination", req.Destination); err != nil {
		return err
	}
	for i := range req.Waypoints {
		if err := validatePoint(fmt.Sprintf("waypoints[%d]", i), &req.Waypoints[i]); err != nil {
			return err
		}
	}
	if req.Profile != "" && req.Profile != domain.ProfileTruck {
		return &domain.ValidationError{Field: "profile", Reason: fmt.Sprintf("unsupported profile %q", req.Profile)}
	}
	return nil
}

// OptimizeRoute plans the truck route for req while asking the provider to
// avoid knownHighRiskAreas.
//
// Fails with *domain.ValidationError for bad input and *domain.ProviderError
// when the provider call fails or its geometry cannot be decoded.
func (o *TruckRouteOptimizer) OptimizeRoute(
	ctx context.Context,
	req domain.RouteRequest,
	knownHighRiskAreas []domain.HighRiskArea,
) (_ *domain.RouteResult, err error) {
	defer obs.Time(ctx, "route.OptimizeRoute")(&err)

	if err := validateRouteRequest(req); err != nil {
		return nil, err
	}
	if o.Provider == nil {
		return nil, &domain.ConfigurationError{Key: "directions provider", Reason: "is not configured"}
	}

	zones := o.Zones.Build(knownHighRiskAreas)
	if zones.TruncatedZones > 0 {
		obs.L().Warn("exclusion zones truncated",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Int("sent", len(zones.Zones)),
			zap.Int("dropped", zones.TruncatedZones),
		)
	}

	departAt := o.now()
	if req.DepartAt != nil {
		departAt = *req.DepartAt
	}

	coords := make([]domain.GeoPoint, 0, 2+len(req.Waypoints))
	coords = append(coords, *req.Origin)
	coords = append(coords, req.Waypoints...)
	coords = append(coords, *req.Destination)

	raw, err := o.Provider.GetDirections(ctx, ports.DirectionsRequest{
		Profile:     domain.ProfileTruck,
		Coordinates: coords,
		DepartAt:    req.DepartAt,
		Avoid:       zones.Zones,
	})
	if err != nil {
		var perr *domain.ProviderError
		if !errors.As(err, &perr) {
			err = &domain.ProviderError{Op: "directions", Err: err}
		}
		return nil, fmt.Errorf("optimize route: %w", err)
	}

	if raw.DistanceMeters < 0 || raw.DurationSeconds < 0 {
		return nil, fmt.Errorf("optimize route: %w", &domain.ProviderError{
			Op:  "directions",
			Err: fmt.Errorf("negative summary distance=%d duration=%d", raw.DistanceMeters, raw.DurationSeconds),
		})
	}

	geometry, err := geo.DecodePolyline(raw.Polyline)
	if err != nil {
		return nil, fmt.Errorf("optimize route: %w", &domain.ProviderError{Op: "geometry", Err: err})
	}

	var gates []domain.TollGate
	var provinces []domain.Province
	if o.Reference != nil {
		if gates, err = o.Reference.ListTollGates(ctx); err != nil {
			return nil, fmt.Errorf("optimize route: list toll gates: %w", err)
		}
		if provinces, err = o.Reference.ListProvinces(ctx); err != nil {
			return nil, fmt.Errorf("optimize route: list provinces: %w", err)
		}
	}

	breaks := o.Breaks.Schedule(departAt, time.Duration(raw.DurationSeconds)*time.Second)
	breakSeconds := TotalBreakSeconds(breaks)
	total := raw.DurationSeconds + breakSeconds

	return &domain.RouteResult{
		DistanceMeters:                 raw.DistanceMeters,
		DurationSeconds:                raw.DurationSeconds,
		DepartAt:                       departAt,
		ETA:                            departAt.Add(time.Duration(total) * time.Second),
		Geometry:                       geometry,
		Warnings:                       sortedSet(raw.Warnings, zones.Warnings()),
		Restrictions:                   sortedSet(raw.Restrictions),
		TollGates:                      DetectTollGates(geometry, gates, o.TollGateThresholdMeters),
		Provinces:                      DetectProvinces(geometry, provinces, o.ProvinceSampleMeters),
		Breaks:                         breaks,
		BreakTimeSeconds:               breakSeconds,
		TotalDurationWithBreaksSeconds: total,
		ExclusionZonesSent:             len(zones.Zones),
	}, nil
}
