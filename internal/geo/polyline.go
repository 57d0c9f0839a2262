package geo

import (
	"fmt"

	"github.com/twpayne/go-polyline"

	"truck-dispatch-service/internal/domain"
)

// DecodePolyline decodes an encoded polyline (precision 5) into points.
func DecodePolyline(encoded string) ([]domain.GeoPoint, error) {
	coords, rest, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("decode polyline: %d trailing bytes", len(rest))
	}

	out := make([]domain.GeoPoint, 0, len(coords))
	for i, c := range coords {
		p := domain.GeoPoint{Lat: c[0], Lng: c[1]}
		if !p.Valid() {
			return nil, fmt.Errorf("decode polyline: point %d out of range", i)
		}
		out = append(out, p)
	}
	return out, nil
}

// EncodePolyline encodes points with precision 5.
func EncodePolyline(points []domain.GeoPoint) string {
	coords := make([][]float64, 0, len(points))
	for _, p := range points {
		coords = append(coords, []float64{p.Lat, p.Lng})
	}
	return string(polyline.EncodeCoords(coords))
}
