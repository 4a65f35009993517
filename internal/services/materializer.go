package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"caretransit/internal/models"
	"caretransit/internal/ordering"
)

// MaterializationReport summarizes one materialization run.
type MaterializationReport struct {
	Materialized int
	Skipped      int
}

// MaterializationService turns the abstract recurrence of a series
// into concrete routes with stops for a date range.
type MaterializationService struct {
	series          SeriesStore
	seriesSchedules SeriesScheduleStore
	occurrences     OccurrenceStore
	routes          RouteStore
	schedules       ScheduleStore
}

func NewMaterializationService(
	series SeriesStore,
	seriesSchedules SeriesScheduleStore,
	occurrences OccurrenceStore,
	routes RouteStore,
	schedules ScheduleStore,
) *MaterializationService {
	return &MaterializationService{
		series:          series,
		seriesSchedules: seriesSchedules,
		occurrences:     occurrences,
		routes:          routes,
		schedules:       schedules,
	}
}

// MaterializeRange creates a route for every ACTIVE series and every
// date in [from, to] matching its recurrence, unless an occurrence is
// already recorded for that date. forceRegenerate re-materializes
// recorded dates, pointing their occurrence at a fresh route and
// cancelling the route it supersedes.
func (m *MaterializationService) MaterializeRange(
	ctx context.Context,
	companyID models.CompanyID,
	from, to time.Time,
	forceRegenerate bool,
) (*MaterializationReport, error) {
	active, err := m.series.FindActive(ctx, companyID)
	if err != nil {
		return nil, err
	}

	report := &MaterializationReport{}
	for i := range active {
		series := &active[i]
		for _, date := range OccurrenceDates(series, from, to) {
			occ, err := m.occurrences.FindBySeriesAndDate(ctx, companyID, models.SeriesID(series.ID), date)
			if err != nil {
				return nil, err
			}
			if occ != nil && !forceRegenerate {
				report.Skipped++
				continue
			}
			if err := m.materializeOccurrence(ctx, companyID, series, date, occ); err != nil {
				return nil, err
			}
			report.Materialized++
		}
	}

	logrus.WithFields(logrus.Fields{
		"company_id":   companyID,
		"from":         from.Format("2006-01-02"),
		"to":           to.Format("2006-01-02"),
		"materialized": report.Materialized,
		"skipped":      report.Skipped,
	}).Info("series materialization finished")

	return report, nil
}

func (m *MaterializationService) materializeOccurrence(
	ctx context.Context,
	companyID models.CompanyID,
	series *models.RouteSeries,
	date time.Time,
	occ *models.RouteSeriesOccurrence,
) error {
	assignments, err := m.seriesSchedules.FindBySeries(ctx, companyID, models.SeriesID(series.ID))
	if err != nil {
		return err
	}

	// A regenerated occurrence supersedes its earlier route. That route
	// must not stay PLANNED or it keeps booking the driver and vehicle
	// alongside the fresh one.
	if occ != nil && occ.RouteID != nil {
		old, err := m.routes.FindByID(ctx, companyID, *occ.RouteID)
		if err != nil {
			return err
		}
		if old != nil && old.Status == models.RoutePlanned {
			old.Status = models.RouteCancelled
			old.Stops = nil
			if err := m.routes.Save(ctx, old); err != nil {
				return err
			}
		}
	}

	route := &models.Route{
		Name:         fmt.Sprintf("%s %s", series.Name, date.Format("2006-01-02")),
		CompanyID:    companyID,
		Date:         date,
		Status:       models.RoutePlanned,
		DriverID:     series.DriverID,
		VehicleID:    series.VehicleID,
		PlannedStart: combineDateTime(date, series.StartTime),
		PlannedEnd:   combineDateTime(date, series.EndTime),
	}
	seriesID := models.SeriesID(series.ID)
	route.SeriesID = &seriesID
	occurrenceDate := date
	route.OccurrenceDate = &occurrenceDate

	for i := range assignments {
		a := &assignments[i]
		if !a.ActiveOn(date) {
			continue
		}
		schedule, err := m.schedules.FindByID(ctx, companyID, a.ScheduleID)
		if err != nil {
			return err
		}
		if schedule == nil {
			return &NotFoundError{Entity: "schedule", ID: uint(a.ScheduleID)}
		}
		route.Stops = append(route.Stops,
			models.Stop{
				CompanyID:   companyID,
				StopOrder:   a.PickupStopOrder * ordering.GapSize,
				Kind:        models.StopPickup,
				ChildID:     a.ChildID,
				ScheduleID:  a.ScheduleID,
				PlannedTime: combineDateTime(date, schedule.PickupTime),
				Street:      schedule.PickupStreet,
				City:        schedule.PickupCity,
				Lat:         schedule.PickupLat,
				Lon:         schedule.PickupLon,
			},
			models.Stop{
				CompanyID:   companyID,
				StopOrder:   a.DropoffStopOrder * ordering.GapSize,
				Kind:        models.StopDropoff,
				ChildID:     a.ChildID,
				ScheduleID:  a.ScheduleID,
				PlannedTime: combineDateTime(date, schedule.DropoffTime),
				Street:      schedule.DropoffStreet,
				City:        schedule.DropoffCity,
				Lat:         schedule.DropoffLat,
				Lon:         schedule.DropoffLon,
			},
		)
	}

	if err := m.routes.Save(ctx, route); err != nil {
		return err
	}

	if occ == nil {
		occ = &models.RouteSeriesOccurrence{
			CompanyID: companyID,
			SeriesID:  seriesID,
			Date:      date,
			Key:       uuid.NewString(),
		}
	}
	routeID := models.RouteID(route.ID)
	occ.RouteID = &routeID
	occ.Status = models.OccurrenceMaterialized
	return m.occurrences.Save(ctx, occ)
}

// combineDateTime anchors a "15:04" clock string on a concrete date.
// A malformed clock yields midnight.
func combineDateTime(date time.Time, clock string) time.Time {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return dayOf(date)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, date.Location())
}
