package domain

// Fixed toll collection point checked for route proximity.
type TollGate struct {
	ID       string
	Location GeoPoint
}

// Administrative boundary checked for route containment.
type Province struct {
	ID      string
	Polygon []GeoPoint
}
