package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"caretransit/internal/models"
)

// AddChildToSeriesCommand attaches one child's schedule to a series
// from EffectiveFrom on, optionally bounded by EffectiveTo.
type AddChildToSeriesCommand struct {
	CompanyID     models.CompanyID
	SeriesID      models.SeriesID
	ChildID       models.ChildID
	ScheduleID    models.ScheduleID
	PickupOrder   int
	DropoffOrder  int
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
}

// AddChildToSeriesResult reports the granted window, how many already-
// materialized routes received the child's stops, and whether the
// window was capped to resolve a conflict.
type AddChildToSeriesResult struct {
	EffectiveFrom    time.Time
	EffectiveTo      *time.Time
	RoutesUpdated    int
	ConflictResolved bool
}

// SeriesService owns recurring route series: creation, child
// assignment with conflict resolution, and cancellation.
type SeriesService struct {
	series          SeriesStore
	seriesSchedules SeriesScheduleStore
	occurrences     OccurrenceStore
	routes          RouteStore
	children        ChildStore
	schedules       ScheduleStore
	resolver        *SeriesConflictResolver
	coordinator     *InsertionCoordinator
}

func NewSeriesService(
	series SeriesStore,
	seriesSchedules SeriesScheduleStore,
	occurrences OccurrenceStore,
	routes RouteStore,
	children ChildStore,
	schedules ScheduleStore,
	resolver *SeriesConflictResolver,
	coordinator *InsertionCoordinator,
) *SeriesService {
	return &SeriesService{
		series:          series,
		seriesSchedules: seriesSchedules,
		occurrences:     occurrences,
		routes:          routes,
		children:        children,
		schedules:       schedules,
		resolver:        resolver,
		coordinator:     coordinator,
	}
}

// CreateSeries validates and stores a new recurring series.
func (s *SeriesService) CreateSeries(ctx context.Context, series *models.RouteSeries) error {
	if series.RecurrenceWeeks < 1 || series.RecurrenceWeeks > 4 {
		return &StructuralError{Reason: "recurrence interval must be between 1 and 4 weeks"}
	}
	if series.EndDate != nil && series.EndDate.Before(series.StartDate) {
		return &StructuralError{Reason: "series end date precedes its start date"}
	}
	series.Status = models.SeriesActive
	return s.series.Save(ctx, series)
}

// AddChild resolves conflicts for the requested window, persists the
// assignment, and inserts the child's pickup and dropoff stops into
// every already-materialized future route of the series inside the
// granted window.
func (s *SeriesService) AddChild(ctx context.Context, cmd *AddChildToSeriesCommand) (*AddChildToSeriesResult, error) {
	series, err := s.series.FindByID(ctx, cmd.CompanyID, cmd.SeriesID)
	if err != nil {
		return nil, err
	}
	if series == nil {
		return nil, &NotFoundError{Entity: "series", ID: uint(cmd.SeriesID)}
	}
	if series.Status != models.SeriesActive {
		return nil, &StateConflictError{Entity: "series", ID: series.ID, State: series.Status, Want: models.SeriesActive}
	}

	child, err := s.children.FindByID(ctx, cmd.CompanyID, cmd.ChildID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, &NotFoundError{Entity: "child", ID: uint(cmd.ChildID)}
	}
	if child.Status != models.ChildActive {
		return nil, &StateConflictError{Entity: "child", ID: child.ID, State: child.Status, Want: models.ChildActive}
	}

	schedule, err := s.schedules.FindByID(ctx, cmd.CompanyID, cmd.ScheduleID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, &NotFoundError{Entity: "schedule", ID: uint(cmd.ScheduleID)}
	}
	if schedule.ChildID != cmd.ChildID {
		return nil, &StructuralError{Reason: "schedule does not belong to the child"}
	}

	resolution, err := s.resolver.ResolveAddChild(ctx, series, child, cmd.ScheduleID, cmd.EffectiveFrom)
	if err != nil {
		return nil, err
	}

	effectiveTo := resolution.EffectiveTo
	if cmd.EffectiveTo != nil && (effectiveTo == nil || cmd.EffectiveTo.Before(*effectiveTo)) {
		effectiveTo = cmd.EffectiveTo
	}

	assignment := &models.SeriesSchedule{
		CompanyID:        cmd.CompanyID,
		SeriesID:         cmd.SeriesID,
		ChildID:          cmd.ChildID,
		ScheduleID:       cmd.ScheduleID,
		PickupStopOrder:  cmd.PickupOrder,
		DropoffStopOrder: cmd.DropoffOrder,
		ValidFrom:        resolution.EffectiveFrom,
		ValidTo:          effectiveTo,
	}
	if err := s.seriesSchedules.Save(ctx, assignment); err != nil {
		return nil, err
	}

	updated, err := s.insertIntoMaterialized(ctx, cmd, series, schedule, assignment)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"series_id":         cmd.SeriesID,
		"child_id":          cmd.ChildID,
		"routes_updated":    updated,
		"conflict_resolved": resolution.ConflictResolved,
	}).Info("child added to series")

	return &AddChildToSeriesResult{
		EffectiveFrom:    resolution.EffectiveFrom,
		EffectiveTo:      effectiveTo,
		RoutesUpdated:    updated,
		ConflictResolved: resolution.ConflictResolved,
	}, nil
}

// insertIntoMaterialized feeds the child's two stops into every
// materialized occurrence inside the assignment window, using the
// insertion coordinator so concurrent edits of the same routes stay
// safe.
func (s *SeriesService) insertIntoMaterialized(
	ctx context.Context,
	cmd *AddChildToSeriesCommand,
	series *models.RouteSeries,
	schedule *models.Schedule,
	assignment *models.SeriesSchedule,
) (int, error) {
	occurrences, err := s.occurrences.FindBySeries(ctx, cmd.CompanyID, cmd.SeriesID)
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range occurrences {
		occ := &occurrences[i]
		if occ.Status != models.OccurrenceMaterialized || occ.RouteID == nil {
			continue
		}
		if !assignment.ActiveOn(occ.Date) {
			continue
		}
		route, err := s.routes.FindByID(ctx, cmd.CompanyID, *occ.RouteID)
		if err != nil {
			return updated, err
		}
		if route == nil || (route.Status != models.RoutePlanned && route.Status != models.RouteInProgress) {
			continue
		}

		stops := []models.Stop{
			{
				Kind:        models.StopPickup,
				ChildID:     cmd.ChildID,
				ScheduleID:  cmd.ScheduleID,
				PlannedTime: combineDateTime(occ.Date, schedule.PickupTime),
				Street:      schedule.PickupStreet,
				City:        schedule.PickupCity,
				Lat:         schedule.PickupLat,
				Lon:         schedule.PickupLon,
			},
			{
				Kind:        models.StopDropoff,
				ChildID:     cmd.ChildID,
				ScheduleID:  cmd.ScheduleID,
				PlannedTime: combineDateTime(occ.Date, schedule.DropoffTime),
				Street:      schedule.DropoffStreet,
				City:        schedule.DropoffCity,
				Lat:         schedule.DropoffLat,
				Lon:         schedule.DropoffLon,
			},
		}

		// Appended at the tail; the dispatcher reorders afterwards if
		// the fixed series positions matter for this occurrence.
		anchor, err := s.tailOrder(ctx, cmd.CompanyID, *occ.RouteID)
		if err != nil {
			return updated, err
		}
		if _, err := s.coordinator.InsertStops(ctx, cmd.CompanyID, *occ.RouteID, stops, anchor); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func (s *SeriesService) tailOrder(ctx context.Context, companyID models.CompanyID, routeID models.RouteID) (*int, error) {
	route, err := s.routes.FindByID(ctx, companyID, routeID)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, &NotFoundError{Entity: "route", ID: uint(routeID)}
	}
	var last *int
	for i := range route.Stops {
		if route.Stops[i].Cancelled {
			continue
		}
		if last == nil || route.Stops[i].StopOrder > *last {
			o := route.Stops[i].StopOrder
			last = &o
		}
	}
	return last, nil
}

// Cancel flags a series cancelled. Occurrences already materialized
// stay; future ones are no longer generated.
func (s *SeriesService) Cancel(ctx context.Context, companyID models.CompanyID, seriesID models.SeriesID) error {
	series, err := s.series.FindByID(ctx, companyID, seriesID)
	if err != nil {
		return err
	}
	if series == nil {
		return &NotFoundError{Entity: "series", ID: uint(seriesID)}
	}
	series.Status = models.SeriesCancelled
	return s.series.Save(ctx, series)
}
