package geo

import (
	"math"

	"truck-dispatch-service/internal/domain"
)

// Resample returns every vertex of line plus interpolated points so that no
// two consecutive samples are more than intervalMeters apart.
// A non-positive interval returns the vertices unchanged.
func Resample(line []domain.GeoPoint, intervalMeters float64) []domain.GeoPoint {
	if len(line) == 0 {
		return nil
	}

	out := make([]domain.GeoPoint, 0, len(line))
	out = append(out, line[0])
	if intervalMeters <= 0 {
		return append(out, line[1:]...)
	}

	for i := 0; i < len(line)-1; i++ {
		a, b := line[i], line[i+1]
		steps := int(math.Ceil(HaversineMeters(a, b) / intervalMeters))
		for s := 1; s < steps; s++ {
			f := float64(s) / float64(steps)
			out = append(out, domain.GeoPoint{
				Lat: a.Lat + (b.Lat-a.Lat)*f,
				Lng: a.Lng + (b.Lng-a.Lng)*f,
			})
		}
		out = append(out, b)
	}
	return out
}
