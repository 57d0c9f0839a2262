package services

import (
	"time"

	"truck-dispatch-service/internal/domain"
)

// Regulatory rest rule: after MaxContinuousDrive of driving a break of
// BreakDuration is mandatory.
type BreakPolicy struct {
	MaxContinuousDrive time.Duration
	BreakDuration      time.Duration
}

// Schedule accrues continuous driving from departAt and inserts one break each
// time the accumulator reaches MaxContinuousDrive. Reaching the limit exactly
// counts, so a drive of k*MaxContinuousDrive yields k breaks. A policy with a
// non-positive limit never inserts breaks.
func (p BreakPolicy) Schedule(departAt time.Time, drive time.Duration) []domain.BreakStop {
	if p.MaxContinuousDrive <= 0 || drive < p.MaxContinuousDrive {
		return nil
	}

	var (
		stops      []domain.BreakStop
		continuous time.Duration
		driven     time.Duration
		clock      = departAt
	)

	for remaining := drive; remaining > 0; {
		step := min(p.MaxContinuousDrive-continuous, remaining)
		continuous += step
		driven += step
		remaining -= step
		clock = clock.Add(step)

		if continuous >= p.MaxContinuousDrive {
			stops = append(stops, domain.BreakStop{
				StartAt:         clock,
				DrivenBefore:    driven,
				DurationSeconds: int(p.BreakDuration / time.Second),
			})
			clock = clock.Add(p.BreakDuration)
			continuous = 0
		}
	}

	return stops
}

// TotalBreakSeconds sums the durations of the scheduled breaks.
func TotalBreakSeconds(stops []domain.BreakStop) int {
	total := 0
	for _, s := range stops {
		total += s.DurationSeconds
	}
	return total
}
