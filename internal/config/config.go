package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"truck-dispatch-service/internal/domain"
)

// Config holds every deployment-supplied setting of the service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	SeedPath    string

	ReferenceCacheTTL time.Duration

	ORSAPIKey            string
	ORSBaseURL           string
	ORSTimeout           time.Duration
	ORSRequestsPerMinute int

	Engine EngineConfig
}

// EngineConfig carries the tunables of the route planning engine.
type EngineConfig struct {
	MaxContinuousDrive     time.Duration
	BreakDuration          time.Duration
	TollGateThresholdM     float64
	ProvinceSampleMeters   float64
	RiskCorridorMeters     float64
	MaxExclusionZones      int
	MaxExclusionVertices   int
	DispatchPrefetch       int
	VehicleSearchPrecision uint
}

// DefaultEngineConfig mirrors the regulatory defaults: 4h driving, 30m rest.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxContinuousDrive:     4 * time.Hour,
		BreakDuration:          30 * time.Minute,
		TollGateThresholdM:     300,
		ProvinceSampleMeters:   1000,
		RiskCorridorMeters:     200,
		MaxExclusionZones:      20,
		MaxExclusionVertices:   1000,
		DispatchPrefetch:       1,
		VehicleSearchPrecision: 4,
	}
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, &domain.ConfigurationError{Key: key, Reason: "must be a positive duration, got " + strconv.Quote(v)}
	}
	return d, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, &domain.ConfigurationError{Key: key, Reason: "must be a positive number, got " + strconv.Quote(v)}
	}
	return f, nil
}

func getInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &domain.ConfigurationError{Key: key, Reason: "must be a non-negative integer, got " + strconv.Quote(v)}
	}
	return n, nil
}

// Load reads the configuration from the environment.
// Missing provider credentials fail fast with a *domain.ConfigurationError.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        Get("PORT", "8080"),
		DatabaseURL: Get("DATABASE_URL", ""),
		RedisURL:    Get("REDIS_URL", ""),
		SeedPath:    Get("SEED_PATH", "data/seeds/reference.yaml"),
		ORSAPIKey:   Get("ORS_API_KEY", ""),
		ORSBaseURL:  Get("ORS_BASE_URL", "https://api.openrouteservice.org"),
		Engine:      DefaultEngineConfig(),
	}

	if cfg.ORSAPIKey == "" {
		return nil, &domain.ConfigurationError{Key: "ORS_API_KEY", Reason: "is required"}
	}
	if u, err := url.Parse(cfg.ORSBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &domain.ConfigurationError{Key: "ORS_BASE_URL", Reason: "must be an absolute URL"}
	}

	var err error
	if cfg.ReferenceCacheTTL, err = getDuration("REFERENCE_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ORSTimeout, err = getDuration("ORS_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.ORSRequestsPerMinute, err = getInt("ORS_REQUESTS_PER_MINUTE", 40); err != nil {
		return nil, err
	}

	e := &cfg.Engine
	if e.MaxContinuousDrive, err = getDuration("MAX_CONTINUOUS_DRIVE", e.MaxContinuousDrive); err != nil {
		return nil, err
	}
	if e.BreakDuration, err = getDuration("BREAK_DURATION", e.BreakDuration); err != nil {
		return nil, err
	}
	if e.TollGateThresholdM, err = getFloat("TOLLGATE_THRESHOLD_METERS", e.TollGateThresholdM); err != nil {
		return nil, err
	}
	if e.ProvinceSampleMeters, err = getFloat("PROVINCE_SAMPLE_METERS", e.ProvinceSampleMeters); err != nil {
		return nil, err
	}
	if e.RiskCorridorMeters, err = getFloat("RISK_CORRIDOR_METERS", e.RiskCorridorMeters); err != nil {
		return nil, err
	}
	if e.MaxExclusionZones, err = getInt("MAX_EXCLUSION_ZONES", e.MaxExclusionZones); err != nil {
		return nil, err
	}
	if e.MaxExclusionVertices, err = getInt("MAX_EXCLUSION_VERTICES", e.MaxExclusionVertices); err != nil {
		return nil, err
	}
	if e.DispatchPrefetch, err = getInt("DISPATCH_PREFETCH", e.DispatchPrefetch); err != nil {
		return nil, err
	}
	precision, err := getInt("VEHICLE_SEARCH_PRECISION", int(e.VehicleSearchPrecision))
	if err != nil {
		return nil, err
	}
	if precision < 1 || precision > 12 {
		return nil, &domain.ConfigurationError{Key: "VEHICLE_SEARCH_PRECISION", Reason: "must be between 1 and 12"}
	}
	e.VehicleSearchPrecision = uint(precision)

	return cfg, nil
}
