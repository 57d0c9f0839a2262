package geo

import (
	"strconv"
	"strings"

	"truck-dispatch-service/internal/domain"
)

// ParseCoordinates reads whitespace-separated "lng,lat" tokens.
// Tokens without exactly two numeric components, or outside WGS84 bounds,
// are skipped and counted in discarded; the remaining points keep their order.
func ParseCoordinates(raw string) (points []domain.GeoPoint, discarded int) {
	for _, tok := range strings.Fields(raw) {
		p, ok := parseToken(tok)
		if !ok {
			discarded++
			continue
		}
		points = append(points, p)
	}
	return points, discarded
}

func parseToken(tok string) (domain.GeoPoint, bool) {
	parts := strings.Split(tok, ",")
	if len(parts) != 2 {
		return domain.GeoPoint{}, false
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return domain.GeoPoint{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return domain.GeoPoint{}, false
	}

	p := domain.GeoPoint{Lat: lat, Lng: lng}
	if !p.Valid() {
		return domain.GeoPoint{}, false
	}
	return p, true
}

// FormatCoordinates is the inverse of ParseCoordinates.
func FormatCoordinates(points []domain.GeoPoint) string {
	tokens := make([]string, 0, len(points))
	for _, p := range points {
		tokens = append(tokens,
			strconv.FormatFloat(p.Lng, 'f', -1, 64)+","+strconv.FormatFloat(p.Lat, 'f', -1, 64))
	}
	return strings.Join(tokens, " ")
}
