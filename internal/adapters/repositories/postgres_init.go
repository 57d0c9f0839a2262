package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmcloughlin/geohash"
	"gopkg.in/yaml.v3"

	"truck-dispatch-service/internal/domain"
	"truck-dispatch-service/internal/geo"
)

// Initialize the Postgres database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createHighRiskAreasQuery := `
	CREATE TABLE IF NOT EXISTS high_risk_areas (
		id TEXT PRIMARY KEY,
		coordinates TEXT NOT NULL,
		severity TEXT NOT NULL DEFAULT '',
		position SERIAL
	);
	`

	createTollGatesQuery := `
	CREATE TABLE IF NOT EXISTS toll_gates (
		id TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL
	);
	`

	createProvincesQuery := `
	CREATE TABLE IF NOT EXISTS provinces (
		id TEXT PRIMARY KEY,
		polygon TEXT NOT NULL
	);
	`

	createVehiclesQuery := `
	CREATE TABLE IF NOT EXISTS vehicles (
		id TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		geohash TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'available'
	);
	`

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		id UUID PRIMARY KEY,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance INTEGER NOT NULL,
		duration INTEGER NOT NULL,
		break_time INTEGER NOT NULL,
		depart_at TIMESTAMPTZ NOT NULL,
		eta TIMESTAMPTZ NOT NULL,
		geometry JSONB NOT NULL,
		tollgates TEXT[] NOT NULL DEFAULT '{}',
		provinces TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_vehicles_status_geohash
	ON vehicles(status, geohash text_pattern_ops);
	`

	statements := []string{
		createHighRiskAreasQuery,
		createTollGatesQuery,
		createProvincesQuery,
		createVehiclesQuery,
		createRoutesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type HighRiskAreaSeed struct {
	ID          string `json:"id" yaml:"id"`
	Coordinates string `json:"coordinates" yaml:"coordinates"`
	Severity    string `json:"severity" yaml:"severity"`
}

type TollGateSeed struct {
	ID  string  `json:"id" yaml:"id"`
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

type ProvinceSeed struct {
	ID      string `json:"id" yaml:"id"`
	Polygon string `json:"polygon" yaml:"polygon"`
}

type VehicleSeed struct {
	ID     string  `json:"id" yaml:"id"`
	Lat    float64 `json:"lat" yaml:"lat"`
	Lng    float64 `json:"lng" yaml:"lng"`
	Status string  `json:"status" yaml:"status"`
}

// ReferenceSeed is the layout of a seed file.
type ReferenceSeed struct {
	HighRiskAreas []HighRiskAreaSeed `json:"high_risk_areas" yaml:"high_risk_areas"`
	TollGates     []TollGateSeed     `json:"toll_gates" yaml:"toll_gates"`
	Provinces     []ProvinceSeed     `json:"provinces" yaml:"provinces"`
	Vehicles      []VehicleSeed      `json:"vehicles" yaml:"vehicles"`
}

// ParseSeed decodes a seed document. ext selects JSON for ".json" and YAML
// for anything else.
func ParseSeed(data []byte, ext string) (*ReferenceSeed, error) {
	var seed ReferenceSeed
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(data, &seed); err != nil {
			return nil, fmt.Errorf("parse seed: json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &seed); err != nil {
			return nil, fmt.Errorf("parse seed: yaml: %w", err)
		}
	}

	if err := seed.validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (s *ReferenceSeed) validate() error {
	for i := range s.HighRiskAreas {
		a := &s.HighRiskAreas[i]
		a.ID = strings.TrimSpace(a.ID)
		if a.ID == "" {
			return fmt.Errorf("seed high_risk_areas: item %d: id cannot be empty", i+1)
		}
	}

	for i := range s.TollGates {
		g := &s.TollGates[i]
		g.ID = strings.TrimSpace(g.ID)
		if g.ID == "" {
			return fmt.Errorf("seed toll_gates: item %d: id cannot be empty", i+1)
		}
		if !(domain.GeoPoint{Lat: g.Lat, Lng: g.Lng}).Valid() {
			return fmt.Errorf("seed toll_gates: %q: coordinate out of range", g.ID)
		}
	}

	for i := range s.Provinces {
		p := &s.Provinces[i]
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return fmt.Errorf("seed provinces: item %d: id cannot be empty", i+1)
		}
		if points, _ := geo.ParseCoordinates(p.Polygon); len(points) < 3 {
			return fmt.Errorf("seed provinces: %q: polygon needs at least 3 valid points", p.ID)
		}
	}

	for i := range s.Vehicles {
		v := &s.Vehicles[i]
		v.ID = strings.TrimSpace(v.ID)
		if v.ID == "" {
			return fmt.Errorf("seed vehicles: item %d: id cannot be empty", i+1)
		}
		if !(domain.GeoPoint{Lat: v.Lat, Lng: v.Lng}).Valid() {
			return fmt.Errorf("seed vehicles: %q: coordinate out of range", v.ID)
		}
		switch v.Status {
		case "":
			v.Status = domain.VehicleStatusAvailable
		case domain.VehicleStatusAvailable, domain.VehicleStatusOnTrip, domain.VehicleStatusMaintenance:
		default:
			return fmt.Errorf("seed vehicles: %q: unknown status %q", v.ID, v.Status)
		}
	}

	return nil
}

// Populate the database with reference data and vehicles from a YAML or
// JSON file. Rows are upserted by id.
func SeedFromFile(ctx context.Context, db *sql.DB, path string) error {
	if db == nil {
		return errors.New("seed: DB is nil")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", path, err)
	}

	seed, err := ParseSeed(data, filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("seed %q: %w", path, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range seed.HighRiskAreas {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO high_risk_areas (id, coordinates, severity)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET coordinates = EXCLUDED.coordinates,
			severity = EXCLUDED.severity;
		`, a.ID, a.Coordinates, a.Severity); err != nil {
			return fmt.Errorf("seed: insert high risk area %q: %w", a.ID, err)
		}
	}

	for _, g := range seed.TollGates {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO toll_gates (id, lat, lng)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET lat = EXCLUDED.lat,
			lng = EXCLUDED.lng;
		`, g.ID, g.Lat, g.Lng); err != nil {
			return fmt.Errorf("seed: insert toll gate %q: %w", g.ID, err)
		}
	}

	for _, p := range seed.Provinces {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO provinces (id, polygon)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
		SET polygon = EXCLUDED.polygon;
		`, p.ID, p.Polygon); err != nil {
			return fmt.Errorf("seed: insert province %q: %w", p.ID, err)
		}
	}

	for _, v := range seed.Vehicles {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO vehicles (id, lat, lng, geohash, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			geohash = EXCLUDED.geohash,
			status = EXCLUDED.status;
		`, v.ID, v.Lat, v.Lng, geohash.Encode(v.Lat, v.Lng), v.Status); err != nil {
			return fmt.Errorf("seed: insert vehicle %q: %w", v.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
