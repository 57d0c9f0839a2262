package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"truck-dispatch-service/internal/domain"
	"truck-dispatch-service/internal/geo"
	"truck-dispatch-service/internal/platform/obs"
)

// Postgres-backed implementation of the ReferenceData and
// HighRiskAreaRepository ports.
type PostgresReferenceRepository struct{ DB *sql.DB }

func NewPostgresReferenceRepository(db *sql.DB) *PostgresReferenceRepository {
	return &PostgresReferenceRepository{DB: db}
}

// Return all high-risk areas in the order they were stored.
// Coordinates are returned raw; parsing is tolerant and happens later.
func (s *PostgresReferenceRepository) ListHighRiskAreas(ctx context.Context) (_ []domain.HighRiskArea, err error) {
	defer obs.Time(ctx, "repo.ListHighRiskAreas")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres reference repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, coordinates, severity
	FROM high_risk_areas
	ORDER BY position;
	`)
	if err != nil {
		return nil, fmt.Errorf("list high risk areas: query: %w", err)
	}
	defer rows.Close()

	areas := make([]domain.HighRiskArea, 0, 32)
	for rows.Next() {
		var a domain.HighRiskArea
		if err := rows.Scan(&a.ID, &a.Coordinates, &a.Severity); err != nil {
			return nil, fmt.Errorf("list high risk areas: scan row: %w", err)
		}
		areas = append(areas, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list high risk areas: row iteration: %w", err)
	}

	return areas, nil
}

func (s *PostgresReferenceRepository) ListTollGates(ctx context.Context) (_ []domain.TollGate, err error) {
	defer obs.Time(ctx, "repo.ListTollGates")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres reference repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, lat, lng
	FROM toll_gates
	ORDER BY id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list toll gates: query: %w", err)
	}
	defer rows.Close()

	gates := make([]domain.TollGate, 0, 64)
	for rows.Next() {
		var g domain.TollGate
		if err := rows.Scan(&g.ID, &g.Location.Lat, &g.Location.Lng); err != nil {
			return nil, fmt.Errorf("list toll gates: scan row: %w", err)
		}
		gates = append(gates, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list toll gates: row iteration: %w", err)
	}

	return gates, nil
}

// Return all provinces. A stored polygon with fewer than three valid points
// cannot contain anything and is skipped with a warning.
func (s *PostgresReferenceRepository) ListProvinces(ctx context.Context) (_ []domain.Province, err error) {
	defer obs.Time(ctx, "repo.ListProvinces")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres reference repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, polygon
	FROM provinces
	ORDER BY id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list provinces: query: %w", err)
	}
	defer rows.Close()

	provinces := make([]domain.Province, 0, 80)
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("list provinces: scan row: %w", err)
		}

		polygon, discarded := geo.ParseCoordinates(raw)
		if len(polygon) < 3 {
			obs.L().Warn("province polygon unusable", zap.String("province", id), zap.Int("points", len(polygon)))
			continue
		}
		if discarded > 0 {
			obs.L().Warn("province polygon has malformed tokens", zap.String("province", id), zap.Int("discarded", discarded))
		}
		provinces = append(provinces, domain.Province{ID: id, Polygon: polygon})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list provinces: row iteration: %w", err)
	}

	return provinces, nil
}
