package scheduling

import (
	"time"

	"caretransit/internal/models"
)

// ConflictResult is the outcome of a conflict scan. Route is nil when
// no overlap was found; otherwise it points at the first conflicting
// route in the order the candidates were given.
type ConflictResult struct {
	Route *models.Route
}

// HasConflict reports whether the scan found an overlap.
func (r ConflictResult) HasConflict() bool {
	return r.Route != nil
}

// FirstConflict scans the given routes for one whose planned window
// overlaps the candidate range. Only PLANNED and IN_PROGRESS routes
// are conflict candidates; completed and cancelled routes never
// conflict. Callers pass routes already filtered to the resource and
// date under test.
func FirstConflict(candidate TimeRange, routes []models.Route) ConflictResult {
	for i := range routes {
		r := &routes[i]
		if r.Status != models.RoutePlanned && r.Status != models.RouteInProgress {
			continue
		}
		start, end := r.Window()
		if candidate.Overlaps(TimeRange{Start: start, End: end}) {
			return ConflictResult{Route: r}
		}
	}
	return ConflictResult{}
}

// ChildWindow derives the child-level conflict window from the child's
// stops on a route: pickup time through dropoff time. A child is
// double-booked when two such windows overlap, regardless of whether
// the whole route windows do.
func ChildWindow(stops []models.Stop, childID models.ChildID) (TimeRange, bool) {
	var window TimeRange
	found := false
	for _, s := range stops {
		if s.ChildID != childID || s.Cancelled {
			continue
		}
		if !found {
			window = TimeRange{Start: s.PlannedTime, End: s.PlannedTime}
			found = true
			continue
		}
		if s.PlannedTime.Before(window.Start) {
			window.Start = s.PlannedTime
		}
		if s.PlannedTime.After(window.End) {
			window.End = s.PlannedTime
		}
	}
	if found && !window.End.After(window.Start) {
		// A pickup-only booking collapses to an instant, which the
		// half-open overlap test can never hit. Give it a minimal width.
		window.End = window.Start.Add(time.Minute)
	}
	return window, found
}
