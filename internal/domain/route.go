package domain

import "time"

// Vehicle profile requested from the directions provider.
const ProfileTruck = "truck"

// Input of a single truck trip plan.
// Origin and Destination are pointers so that a missing point can be told
// apart from the (valid) 0,0 coordinate.
type RouteRequest struct {
	Origin      *GeoPoint
	Destination *GeoPoint
	Waypoints   []GeoPoint
	Profile     string
	DepartAt    *time.Time
}

// A mandatory rest stop inserted by the break schedule.
type BreakStop struct {
	StartAt         time.Time
	DrivenBefore    time.Duration
	DurationSeconds int
}

// Represents the planned truck route between two points.
// Warnings and Restrictions are sorted sets; TollGates and Provinces keep
// traversal order without duplicates.
// TotalDurationWithBreaksSeconds = DurationSeconds + BreakTimeSeconds.
type RouteResult struct {
	DistanceMeters                 int
	DurationSeconds                int
	DepartAt                       time.Time
	ETA                            time.Time
	Geometry                       []GeoPoint
	Warnings                       []string
	Restrictions                   []string
	TollGates                      []string
	Provinces                      []string
	Breaks                         []BreakStop
	BreakTimeSeconds               int
	TotalDurationWithBreaksSeconds int
	ExclusionZonesSent             int
}
