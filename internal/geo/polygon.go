package geo

import "truck-dispatch-service/internal/domain"

// PointInPolygon tests containment with the even-odd ray casting rule,
// treating longitude/latitude as planar coordinates. The ring may be given
// open or closed. Rings with fewer than three vertices contain nothing.
func PointInPolygon(p domain.GeoPoint, ring []domain.GeoPoint) bool {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			crossLng := (b.Lng-a.Lng)*(p.Lat-a.Lat)/(b.Lat-a.Lat) + a.Lng
			if p.Lng < crossLng {
				inside = !inside
			}
		}
	}
	return inside
}

func orientation(a, b, c domain.GeoPoint) float64 {
	return (b.Lng-a.Lng)*(c.Lat-a.Lat) - (b.Lat-a.Lat)*(c.Lng-a.Lng)
}

func onSegment(a, b, p domain.GeoPoint) bool {
	return min(a.Lng, b.Lng) <= p.Lng && p.Lng <= max(a.Lng, b.Lng) &&
		min(a.Lat, b.Lat) <= p.Lat && p.Lat <= max(a.Lat, b.Lat)
}

// SegmentsIntersect reports whether segments p1-p2 and q1-q2 touch or cross.
func SegmentsIntersect(p1, p2, q1, q2 domain.GeoPoint) bool {
	d1 := orientation(q1, q2, p1)
	d2 := orientation(q1, q2, p2)
	d3 := orientation(p1, p2, q1)
	d4 := orientation(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	switch {
	case d1 == 0 && onSegment(q1, q2, p1):
		return true
	case d2 == 0 && onSegment(q1, q2, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, q1):
		return true
	case d4 == 0 && onSegment(p1, p2, q2):
		return true
	}
	return false
}

// PolylineCrossesRing reports whether any segment of line crosses any edge of ring.
func PolylineCrossesRing(line, ring []domain.GeoPoint) bool {
	n := len(ring)
	if n < 2 {
		return false
	}
	for i := 0; i < len(line)-1; i++ {
		for j := 0; j < n; j++ {
			a := ring[j]
			b := ring[(j+1)%n]
			if a == b {
				continue
			}
			if SegmentsIntersect(line[i], line[i+1], a, b) {
				return true
			}
		}
	}
	return false
}
