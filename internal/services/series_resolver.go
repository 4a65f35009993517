package services

import (
	"context"
	"time"

	"caretransit/internal/models"
)

// DefaultConflictHorizon bounds how far ahead the resolver scans for
// conflicts when a series has no end date.
const DefaultConflictHorizon = 52 * 7 * 24 * time.Hour

// ConflictResolution is the effective validity window granted to a new
// series assignment. ConflictResolved is set when the window had to be
// capped at the day before the first conflicting occurrence.
type ConflictResolution struct {
	EffectiveFrom    time.Time
	EffectiveTo      *time.Time
	ConflictResolved bool
}

// SeriesConflictResolver decides whether a child's schedule can join a
// series, and from when to when.
type SeriesConflictResolver struct {
	routes RouteStore
	series SeriesStore
}

func NewSeriesConflictResolver(routes RouteStore, series SeriesStore) *SeriesConflictResolver {
	return &SeriesConflictResolver{routes: routes, series: series}
}

// OccurrenceDates lists the series' occurrence dates within [from, to],
// both bounds inclusive, clamped to the series' own start/end.
func OccurrenceDates(series *models.RouteSeries, from, to time.Time) []time.Time {
	var dates []time.Time
	for d := dayOf(from); !d.After(dayOf(to)); d = d.AddDate(0, 0, 1) {
		if series.MatchesDate(d) {
			dates = append(dates, d)
		}
	}
	return dates
}

// ResolveAddChild scans the series' occurrence dates on/after
// requestedFrom for dates where the schedule is already served by
// another route. No conflict grants the full requested window. A
// conflict on a later date caps the window at the day before it. A
// conflict on the very first occurrence leaves no usable window and is
// returned as a SeriesConflictError, partitioned into single-route
// dates and competing series for user display.
func (r *SeriesConflictResolver) ResolveAddChild(
	ctx context.Context,
	series *models.RouteSeries,
	child *models.Child,
	scheduleID models.ScheduleID,
	requestedFrom time.Time,
) (*ConflictResolution, error) {
	horizon := requestedFrom.Add(DefaultConflictHorizon)
	if series.EndDate != nil && series.EndDate.Before(horizon) {
		horizon = *series.EndDate
	}

	dates := OccurrenceDates(series, requestedFrom, horizon)

	var firstConflict *time.Time
	singleRoute := map[string][]time.Time{}
	competing := map[string]string{}

	for _, date := range dates {
		existing, err := r.routes.FindByScheduleOnDate(ctx, series.CompanyID, scheduleID, date)
		if err != nil {
			return nil, err
		}

		conflicted := false
		for i := range existing {
			route := &existing[i]
			if route.SeriesID != nil && *route.SeriesID == models.SeriesID(series.ID) {
				continue // our own materialized occurrence is not a conflict
			}
			conflicted = true
			if route.SeriesID == nil {
				singleRoute[child.Name] = append(singleRoute[child.Name], date)
				continue
			}
			other, err := r.series.FindByID(ctx, series.CompanyID, *route.SeriesID)
			if err != nil {
				return nil, err
			}
			name := route.Name
			if other != nil {
				name = other.Name
			}
			competing[child.Name] = name
		}

		if conflicted && firstConflict == nil {
			d := date
			firstConflict = &d
		}
	}

	if firstConflict == nil {
		return &ConflictResolution{EffectiveFrom: requestedFrom}, nil
	}

	if len(dates) > 0 && firstConflict.Equal(dates[0]) {
		// No occurrence fits before the conflict: nothing to grant.
		return nil, &SeriesConflictError{SingleRouteConflicts: singleRoute, SeriesConflicts: competing}
	}

	capped := firstConflict.AddDate(0, 0, -1)
	return &ConflictResolution{
		EffectiveFrom:    requestedFrom,
		EffectiveTo:      &capped,
		ConflictResolved: true,
	}, nil
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
