package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"truck-dispatch-service/internal/domain"
	"truck-dispatch-service/internal/geo"
	"truck-dispatch-service/internal/platform/obs"
)

// Postgres-backed implementation of the VehicleRepository port.
// Vehicle rows carry a full-precision geohash so a prefix match on the
// target cell and its neighbours is a cheap pre-filter. The filter is only
// exhaustive within geo.CoveredRadiusMeters of the target.
type PostgresVehicleRepository struct{ DB *sql.DB }

func NewPostgresVehicleRepository(db *sql.DB) *PostgresVehicleRepository {
	return &PostgresVehicleRepository{DB: db}
}

func (s *PostgresVehicleRepository) ListAvailableVehicles(ctx context.Context) (_ []domain.Vehicle, err error) {
	defer obs.Time(ctx, "repo.ListAvailableVehicles")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres vehicle repository: DB is nil")
	}

	return s.query(ctx, `
	SELECT id, lat, lng, status
	FROM vehicles
	WHERE status = $1
	ORDER BY id;
	`, domain.VehicleStatusAvailable)
}

func (s *PostgresVehicleRepository) ListAvailableVehiclesNear(
	ctx context.Context,
	target domain.GeoPoint,
	precision uint,
) (_ []domain.Vehicle, err error) {
	defer obs.Time(ctx, "repo.ListAvailableVehiclesNear")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres vehicle repository: DB is nil")
	}
	if precision == 0 {
		return nil, errors.New("list vehicles near: precision must be positive")
	}

	return s.query(ctx, `
	SELECT id, lat, lng, status
	FROM vehicles
	WHERE status = $1
		AND left(geohash, $2) = ANY($3::text[])
	ORDER BY id;
	`, domain.VehicleStatusAvailable, int(precision), geo.SearchCells(target, precision))
}

func (s *PostgresVehicleRepository) query(ctx context.Context, q string, args ...any) ([]domain.Vehicle, error) {
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: query: %w", err)
	}
	defer rows.Close()

	vehicles := make([]domain.Vehicle, 0, 32)
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.Location.Lat, &v.Location.Lng, &v.Status); err != nil {
			return nil, fmt.Errorf("list vehicles: scan row: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vehicles: row iteration: %w", err)
	}

	return vehicles, nil
}
