package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"caretransit/internal/models"
	"caretransit/internal/ordering"
)

// CreateRouteResult is returned to the caller after a successful
// creation.
type CreateRouteResult struct {
	RouteID       models.RouteID
	Status        string
	ChildrenCount int
}

// RouteService owns the lifecycle of concrete routes: validated
// creation, status transitions, execution updates and deletion.
type RouteService struct {
	pipeline *RouteValidationPipeline
	routes   RouteStore
	stops    StopStore
}

func NewRouteService(pipeline *RouteValidationPipeline, routes RouteStore, stops StopStore) *RouteService {
	return &RouteService{pipeline: pipeline, routes: routes, stops: stops}
}

// CreateRoute runs the validation pipeline and, on success, persists
// the route together with its stops. The positional orders of the
// request become gap-based keys so later insertions have room.
func (s *RouteService) CreateRoute(ctx context.Context, cmd *CreateRouteCommand) (*CreateRouteResult, error) {
	vc, err := s.pipeline.Validate(ctx, cmd)
	if err != nil {
		return nil, err
	}

	route := &models.Route{
		Name:         cmd.Name,
		CompanyID:    cmd.CompanyID,
		Date:         cmd.Date,
		Status:       models.RoutePlanned,
		DriverID:     cmd.DriverID,
		VehicleID:    cmd.VehicleID,
		PlannedStart: cmd.PlannedStart,
		PlannedEnd:   cmd.PlannedEnd,
		Geometry:     cmd.Geometry,
	}
	route.Stops = make([]models.Stop, len(cmd.Stops))
	for i, def := range cmd.Stops {
		route.Stops[i] = models.Stop{
			CompanyID:   cmd.CompanyID,
			StopOrder:   def.Order * ordering.GapSize,
			Kind:        def.Kind,
			ChildID:     def.ChildID,
			ScheduleID:  def.ScheduleID,
			PlannedTime: def.PlannedTime,
			Street:      def.Street,
			City:        def.City,
			Lat:         def.Lat,
			Lon:         def.Lon,
		}
	}

	if err := s.routes.Save(ctx, route); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"route_id": route.ID,
		"date":     cmd.Date.Format("2006-01-02"),
		"stops":    len(route.Stops),
	}).Info("route created")

	return &CreateRouteResult{
		RouteID:       models.RouteID(route.ID),
		Status:        route.Status,
		ChildrenCount: len(vc.Children),
	}, nil
}

// InsertStops adds stops to an existing PLANNED or IN_PROGRESS route
// through the insertion coordinator.
func (s *RouteService) InsertStops(
	ctx context.Context,
	coordinator *InsertionCoordinator,
	companyID models.CompanyID,
	routeID models.RouteID,
	newStops []models.Stop,
	afterOrder *int,
) (*InsertResult, error) {
	route, err := s.routes.FindByID(ctx, companyID, routeID)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, &NotFoundError{Entity: "route", ID: uint(routeID)}
	}
	if route.Status != models.RoutePlanned && route.Status != models.RouteInProgress {
		return nil, &StateConflictError{Entity: "route", ID: route.ID, State: route.Status, Want: models.RoutePlanned}
	}
	return coordinator.InsertStops(ctx, companyID, routeID, newStops, afterOrder)
}

// routeStatusTransitions lists the allowed status moves.
var routeStatusTransitions = map[string][]string{
	models.RoutePlanned:    {models.RouteInProgress, models.RouteCancelled},
	models.RouteInProgress: {models.RouteCompleted, models.RouteCancelled},
}

// UpdateStatus moves a route along its lifecycle.
func (s *RouteService) UpdateStatus(ctx context.Context, companyID models.CompanyID, routeID models.RouteID, status string) (*models.Route, error) {
	route, err := s.routes.FindByID(ctx, companyID, routeID)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, &NotFoundError{Entity: "route", ID: uint(routeID)}
	}

	allowed := false
	for _, next := range routeStatusTransitions[route.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, &StateConflictError{Entity: "route", ID: route.ID, State: route.Status, Want: status}
	}

	route.Status = status
	if err := s.routes.Save(ctx, route); err != nil {
		return nil, err
	}
	return route, nil
}

// ReorderStops applies a full permutation of the route's non-cancelled
// stops and reissues gap-based keys for the new sequence.
func (s *RouteService) ReorderStops(
	ctx context.Context,
	companyID models.CompanyID,
	routeID models.RouteID,
	newOrderByID map[models.StopID]int,
) ([]models.Stop, error) {
	route, err := s.routes.FindByID(ctx, companyID, routeID)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, &NotFoundError{Entity: "route", ID: uint(routeID)}
	}
	if route.Status != models.RoutePlanned && route.Status != models.RouteInProgress {
		return nil, &StateConflictError{Entity: "route", ID: route.ID, State: route.Status, Want: models.RoutePlanned}
	}

	stops, err := s.stops.FindByRoute(ctx, companyID, routeID, false)
	if err != nil {
		return nil, err
	}
	reordered, err := ordering.Reorder(stops, newOrderByID)
	if err != nil {
		return nil, &StructuralError{Reason: err.Error()}
	}

	toSave := make([]*models.Stop, len(reordered))
	for i := range reordered {
		reordered[i].StopOrder = (i + 1) * ordering.GapSize
		toSave[i] = &reordered[i]
	}
	if err := s.stops.SaveAll(ctx, toSave); err != nil {
		return nil, err
	}
	return reordered, nil
}

// RemoveStops deletes the given stops from a PLANNED route and
// renumbers the survivors with fresh gap-based keys.
func (s *RouteService) RemoveStops(
	ctx context.Context,
	companyID models.CompanyID,
	routeID models.RouteID,
	stopIDs []models.StopID,
) ([]models.Stop, error) {
	route, err := s.routes.FindByID(ctx, companyID, routeID)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, &NotFoundError{Entity: "route", ID: uint(routeID)}
	}
	if route.Status != models.RoutePlanned {
		return nil, &StateConflictError{Entity: "route", ID: route.ID, State: route.Status, Want: models.RoutePlanned}
	}

	stops, err := s.stops.FindByRoute(ctx, companyID, routeID, false)
	if err != nil {
		return nil, err
	}
	present := make(map[models.StopID]bool, len(stops))
	for i := range stops {
		present[models.StopID(stops[i].ID)] = true
	}
	for _, id := range stopIDs {
		if !present[id] {
			return nil, &NotFoundError{Entity: "stop", ID: uint(id)}
		}
	}

	remaining := ordering.RemoveAndRenumber(stops, stopIDs)
	toSave := make([]*models.Stop, len(remaining))
	for i := range remaining {
		remaining[i].StopOrder = (i + 1) * ordering.GapSize
		toSave[i] = &remaining[i]
	}

	removedSet := make(map[models.StopID]bool, len(stopIDs))
	for _, id := range stopIDs {
		removedSet[id] = true
	}
	for i := range stops {
		if removedSet[models.StopID(stops[i].ID)] {
			stops[i].Cancelled = true
			toSave = append(toSave, &stops[i])
		}
	}
	if err := s.stops.SaveAll(ctx, toSave); err != nil {
		return nil, err
	}
	return remaining, nil
}

// RecordStopExecution sets the actual outcome of one stop.
func (s *RouteService) RecordStopExecution(
	ctx context.Context,
	companyID models.CompanyID,
	routeID models.RouteID,
	stopID models.StopID,
	status string,
	actualTime time.Time,
) (*models.Stop, error) {
	if status != models.StopDone && status != models.StopNoShow {
		return nil, &StructuralError{Reason: "actual status must be DONE or NO_SHOW"}
	}

	stops, err := s.stops.FindByRoute(ctx, companyID, routeID, true)
	if err != nil {
		return nil, err
	}
	for i := range stops {
		if models.StopID(stops[i].ID) == stopID {
			stops[i].ActualStatus = status
			stops[i].ActualTime = &actualTime
			if err := s.stops.Save(ctx, &stops[i]); err != nil {
				return nil, err
			}
			return &stops[i], nil
		}
	}
	return nil, &NotFoundError{Entity: "stop", ID: uint(stopID)}
}

// CancelStop flags a stop cancelled without removing it; cancelled
// stops are excluded from ordering and conflict checks.
func (s *RouteService) CancelStop(ctx context.Context, companyID models.CompanyID, routeID models.RouteID, stopID models.StopID) error {
	stops, err := s.stops.FindByRoute(ctx, companyID, routeID, true)
	if err != nil {
		return err
	}
	for i := range stops {
		if models.StopID(stops[i].ID) == stopID {
			stops[i].Cancelled = true
			return s.stops.Save(ctx, &stops[i])
		}
	}
	return &NotFoundError{Entity: "stop", ID: uint(stopID)}
}

// Delete removes a route. Only PLANNED and CANCELLED routes may be
// deleted; anything in flight or archived stays.
func (s *RouteService) Delete(ctx context.Context, companyID models.CompanyID, routeID models.RouteID) error {
	route, err := s.routes.FindByID(ctx, companyID, routeID)
	if err != nil {
		return err
	}
	if route == nil {
		return &NotFoundError{Entity: "route", ID: uint(routeID)}
	}
	if route.Status != models.RoutePlanned && route.Status != models.RouteCancelled {
		return &StateConflictError{Entity: "route", ID: route.ID, State: route.Status, Want: models.RoutePlanned}
	}
	return s.routes.Delete(ctx, companyID, routeID)
}
