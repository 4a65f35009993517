// Package scheduling holds the pure conflict and capacity checks the
// route validation pipeline is built from.
package scheduling

import "time"

// TimeRange is a half-open [Start, End) interval. Two ranges that only
// touch at an endpoint do not overlap.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether r and other intersect.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && r.End.After(other.Start)
}
