package domain

// A geographic region flagged for avoidance.
// Coordinates is the raw stored form: whitespace-separated "lng,lat" tokens.
// Malformed tokens are tolerated and skipped when the area is parsed.
type HighRiskArea struct {
	ID          string
	Coordinates string
	Severity    string
}

// Provider-ready avoidance geometry derived from a single HighRiskArea.
// Built fresh per request and never persisted.
type ExclusionZone struct {
	AreaID string
	Points []GeoPoint
}
