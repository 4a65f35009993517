package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caretransit/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedSeries(store *fakeStore, series models.RouteSeries) *models.RouteSeries {
	if series.ID == 0 {
		series.ID = store.id()
	}
	if series.Status == "" {
		series.Status = models.SeriesActive
	}
	stored := series
	store.series[models.SeriesID(series.ID)] = &stored
	return &stored
}

func TestMatchesDateBiweeklyPattern(t *testing.T) {
	series := &models.RouteSeries{
		RecurrenceWeeks: 2,
		StartDate:       date(2024, 1, 1), // a Monday
	}

	assert.True(t, series.MatchesDate(date(2024, 1, 1)))
	assert.False(t, series.MatchesDate(date(2024, 1, 8)), "off-week Monday must not match")
	assert.True(t, series.MatchesDate(date(2024, 1, 15)))
	assert.False(t, series.MatchesDate(date(2024, 1, 16)), "wrong weekday")
	assert.False(t, series.MatchesDate(date(2023, 12, 25)), "before start")
}

func TestMatchesDateRespectsEndDate(t *testing.T) {
	end := date(2024, 1, 15)
	series := &models.RouteSeries{
		RecurrenceWeeks: 1,
		StartDate:       date(2024, 1, 1),
		EndDate:         &end,
	}

	assert.True(t, series.MatchesDate(date(2024, 1, 15)))
	assert.False(t, series.MatchesDate(date(2024, 1, 22)))
}

func TestOccurrenceDates(t *testing.T) {
	series := &models.RouteSeries{
		RecurrenceWeeks: 2,
		StartDate:       date(2024, 1, 1),
	}

	dates := OccurrenceDates(series, date(2024, 1, 1), date(2024, 2, 1))
	assert.Equal(t, []time.Time{date(2024, 1, 1), date(2024, 1, 15), date(2024, 1, 29)}, dates)
}

func TestResolveAddChildNoConflict(t *testing.T) {
	store := newFakeStore()
	series := seedSeries(store, models.RouteSeries{
		CompanyID:       testCompany,
		RecurrenceWeeks: 1,
		StartDate:       date(2024, 1, 4),
	})
	seedChild(store, 1, models.ChildActive, false)

	r := NewSeriesConflictResolver(fakeRoutes{store}, fakeSeries{store})
	res, err := r.ResolveAddChild(context.Background(), series, store.children[1], 1, date(2024, 1, 4))
	require.NoError(t, err)

	assert.Equal(t, date(2024, 1, 4), res.EffectiveFrom)
	assert.Nil(t, res.EffectiveTo)
	assert.False(t, res.ConflictResolved)
}

func TestResolveAddChildCapsAtDayBeforeFirstConflict(t *testing.T) {
	store := newFakeStore()
	end := date(2024, 3, 28)
	series := seedSeries(store, models.RouteSeries{
		CompanyID:       testCompany,
		RecurrenceWeeks: 1,
		StartDate:       date(2024, 1, 4), // a Thursday
		EndDate:         &end,
	})
	seedChild(store, 1, models.ChildActive, false)

	// An unrelated single route already serves the schedule on
	// Thursday 2024-02-01.
	blocking := store.seedRoute(models.Route{Name: "Single trip", Date: date(2024, 2, 1), VehicleID: 3})
	store.seedStop(blocking, 1000, 1, 1)

	r := NewSeriesConflictResolver(fakeRoutes{store}, fakeSeries{store})
	res, err := r.ResolveAddChild(context.Background(), series, store.children[1], 1, date(2024, 1, 4))
	require.NoError(t, err)

	assert.Equal(t, date(2024, 1, 4), res.EffectiveFrom)
	require.NotNil(t, res.EffectiveTo)
	assert.Equal(t, date(2024, 1, 31), *res.EffectiveTo)
	assert.True(t, res.ConflictResolved)
}

func TestResolveAddChildFirstOccurrenceConflictIsTerminal(t *testing.T) {
	store := newFakeStore()
	series := seedSeries(store, models.RouteSeries{
		CompanyID:       testCompany,
		RecurrenceWeeks: 1,
		StartDate:       date(2024, 1, 4),
	})
	seedChild(store, 1, models.ChildActive, false)

	blocking := store.seedRoute(models.Route{Name: "Blocking", Date: date(2024, 1, 4), VehicleID: 3})
	store.seedStop(blocking, 1000, 1, 1)

	r := NewSeriesConflictResolver(fakeRoutes{store}, fakeSeries{store})
	_, err := r.ResolveAddChild(context.Background(), series, store.children[1], 1, date(2024, 1, 4))

	var conflict *SeriesConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []time.Time{date(2024, 1, 4)}, conflict.SingleRouteConflicts["child"])
}

func TestResolveAddChildReportsCompetingSeries(t *testing.T) {
	store := newFakeStore()
	series := seedSeries(store, models.RouteSeries{
		CompanyID:       testCompany,
		RecurrenceWeeks: 1,
		StartDate:       date(2024, 1, 4),
	})
	other := seedSeries(store, models.RouteSeries{
		CompanyID:       testCompany,
		Name:            "Afternoon South",
		RecurrenceWeeks: 1,
		StartDate:       date(2024, 1, 4),
	})
	seedChild(store, 1, models.ChildActive, false)

	otherID := models.SeriesID(other.ID)
	blocking := store.seedRoute(models.Route{Name: "Occurrence", Date: date(2024, 1, 4), VehicleID: 3, SeriesID: &otherID})
	store.seedStop(blocking, 1000, 1, 1)

	r := NewSeriesConflictResolver(fakeRoutes{store}, fakeSeries{store})
	_, err := r.ResolveAddChild(context.Background(), series, store.children[1], 1, date(2024, 1, 4))

	var conflict *SeriesConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Afternoon South", conflict.SeriesConflicts["child"])
}

func TestResolveAddChildIgnoresOwnOccurrences(t *testing.T) {
	store := newFakeStore()
	series := seedSeries(store, models.RouteSeries{
		CompanyID:       testCompany,
		RecurrenceWeeks: 1,
		StartDate:       date(2024, 1, 4),
	})
	seedChild(store, 1, models.ChildActive, false)

	ownID := models.SeriesID(series.ID)
	own := store.seedRoute(models.Route{Name: "Own occurrence", Date: date(2024, 1, 4), VehicleID: 3, SeriesID: &ownID})
	store.seedStop(own, 1000, 1, 1)

	r := NewSeriesConflictResolver(fakeRoutes{store}, fakeSeries{store})
	res, err := r.ResolveAddChild(context.Background(), series, store.children[1], 1, date(2024, 1, 4))
	require.NoError(t, err)
	assert.Nil(t, res.EffectiveTo)
}
