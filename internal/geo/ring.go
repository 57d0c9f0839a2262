package geo

import "truck-dispatch-service/internal/domain"

// Half-width in degrees of the box drawn around zones too small to be a ring.
const DegenerateRingBuffer = 0.0005

// AvoidRing converts zone points into the closed ring sent to a routing
// provider. Fewer than three distinct points become a buffered box of five
// vertices; otherwise the points are closed by repeating the first one when
// needed. len(AvoidRing(p)) is the vertex cost of the zone.
func AvoidRing(points []domain.GeoPoint) []domain.GeoPoint {
	if len(points) == 0 {
		return nil
	}

	distinct := make(map[domain.GeoPoint]struct{}, len(points))
	for _, p := range points {
		distinct[p] = struct{}{}
	}

	if len(distinct) < 3 {
		minLat, maxLat := points[0].Lat, points[0].Lat
		minLng, maxLng := points[0].Lng, points[0].Lng
		for _, p := range points[1:] {
			minLat, maxLat = min(minLat, p.Lat), max(maxLat, p.Lat)
			minLng, maxLng = min(minLng, p.Lng), max(maxLng, p.Lng)
		}
		minLat, maxLat = minLat-DegenerateRingBuffer, maxLat+DegenerateRingBuffer
		minLng, maxLng = minLng-DegenerateRingBuffer, maxLng+DegenerateRingBuffer
		return []domain.GeoPoint{
			{Lat: minLat, Lng: minLng},
			{Lat: minLat, Lng: maxLng},
			{Lat: maxLat, Lng: maxLng},
			{Lat: maxLat, Lng: minLng},
			{Lat: minLat, Lng: minLng},
		}
	}

	ring := make([]domain.GeoPoint, 0, len(points)+1)
	ring = append(ring, points...)
	if points[0] != points[len(points)-1] {
		ring = append(ring, points[0])
	}
	return ring
}
