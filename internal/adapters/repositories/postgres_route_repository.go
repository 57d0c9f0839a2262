package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"truck-dispatch-service/internal/domain"
	"truck-dispatch-service/internal/geo"
	"truck-dispatch-service/internal/platform/obs"
)

// Postgres-backed implementation of the RouteRepository port.
type PostgresRouteRepository struct{ DB *sql.DB }

func NewPostgresRouteRepository(db *sql.DB) *PostgresRouteRepository {
	return &PostgresRouteRepository{DB: db}
}

// SaveRoute stores a planned route under a fresh UUID. Geometry is kept as a
// JSONB array of [lng, lat] pairs.
func (s *PostgresRouteRepository) SaveRoute(
	ctx context.Context,
	req domain.RouteRequest,
	res *domain.RouteResult,
) (_ string, err error) {
	defer obs.Time(ctx, "repo.SaveRoute")(&err)

	if s.DB == nil {
		return "", errors.New("postgres route repository: DB is nil")
	}
	if res == nil || req.Origin == nil || req.Destination == nil {
		return "", errors.New("save route: request and result are required")
	}

	coords := make([][]float64, 0, len(res.Geometry))
	for _, p := range res.Geometry {
		coords = append(coords, p.CoordsToList())
	}
	geometry, err := json.Marshal(coords)
	if err != nil {
		return "", fmt.Errorf("save route: encode geometry: %w", err)
	}

	id := uuid.NewString()
	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO routes (
		id, origin, destination, distance, duration, break_time,
		depart_at, eta, geometry, tollgates, provinces
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`,
		id,
		geo.FormatCoordinates([]domain.GeoPoint{*req.Origin}),
		geo.FormatCoordinates([]domain.GeoPoint{*req.Destination}),
		res.DistanceMeters,
		res.DurationSeconds,
		res.BreakTimeSeconds,
		res.DepartAt,
		res.ETA,
		string(geometry),
		nonNil(res.TollGates),
		nonNil(res.Provinces),
	)
	if err != nil {
		return "", fmt.Errorf("save route: insert: %w", err)
	}

	return id, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
