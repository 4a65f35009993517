package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"caretransit/internal/models"
	"caretransit/internal/ordering"
	"caretransit/internal/scheduling"
)

// StopDefinition is one stop of a route creation request. Order is
// positional (1..k); gap-based keys are issued when the route is
// persisted.
type StopDefinition struct {
	ChildID     models.ChildID
	ScheduleID  models.ScheduleID
	Kind        string
	Order       int
	PlannedTime time.Time
	Street      string
	City        string
	Lat         *float64
	Lon         *float64
}

// CreateRouteCommand is the validated input of route creation.
type CreateRouteCommand struct {
	CompanyID    models.CompanyID
	Name         string
	Date         time.Time
	DriverID     *models.DriverID
	VehicleID    models.VehicleID
	PlannedStart time.Time
	PlannedEnd   time.Time
	Geometry     []byte
	Stops        []StopDefinition
}

// ValidationContext bundles everything the pipeline loaded so the
// handler that creates the route does not query it again.
type ValidationContext struct {
	Driver        *models.Driver
	Vehicle       *models.Vehicle
	Children      map[models.ChildID]*models.Child
	Schedules     map[models.ScheduleID]*models.Schedule
	DriverRoutes  []models.Route
	VehicleRoutes []models.Route
}

// RouteValidationPipeline is the pre-commit gate for route creation
// and mutation. Checks run in a fixed order and short-circuit on the
// first failure; nothing is written until the whole pipeline passes.
type RouteValidationPipeline struct {
	drivers   DriverStore
	vehicles  VehicleStore
	children  ChildStore
	schedules ScheduleStore
	routes    RouteStore
}

func NewRouteValidationPipeline(
	drivers DriverStore,
	vehicles VehicleStore,
	children ChildStore,
	schedules ScheduleStore,
	routes RouteStore,
) *RouteValidationPipeline {
	return &RouteValidationPipeline{
		drivers:   drivers,
		vehicles:  vehicles,
		children:  children,
		schedules: schedules,
		routes:    routes,
	}
}

// Validate runs the ordered checks of the pipeline:
// structure, entity loads, driver status, driver time conflict,
// vehicle status, vehicle time conflict, child status and
// double-booking, schedule ownership, vehicle capacity.
func (p *RouteValidationPipeline) Validate(ctx context.Context, cmd *CreateRouteCommand) (*ValidationContext, error) {
	if err := p.checkStructure(cmd); err != nil {
		return nil, err
	}

	vc, err := p.loadEntities(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if cmd.DriverID != nil {
		if vc.Driver.Status != models.DriverActive {
			return nil, &StateConflictError{Entity: "driver", ID: vc.Driver.ID, State: vc.Driver.Status, Want: models.DriverActive}
		}
		window := scheduling.TimeRange{Start: cmd.PlannedStart, End: cmd.PlannedEnd}
		if res := scheduling.FirstConflict(window, vc.DriverRoutes); res.HasConflict() {
			return nil, &SchedulingConflictError{Resource: "driver", RouteID: models.RouteID(res.Route.ID), RouteName: res.Route.Name}
		}
	}

	if vc.Vehicle.Status != models.VehicleAvailable {
		return nil, &StateConflictError{Entity: "vehicle", ID: vc.Vehicle.ID, State: vc.Vehicle.Status, Want: models.VehicleAvailable}
	}
	window := scheduling.TimeRange{Start: cmd.PlannedStart, End: cmd.PlannedEnd}
	if res := scheduling.FirstConflict(window, vc.VehicleRoutes); res.HasConflict() {
		return nil, &SchedulingConflictError{Resource: "vehicle", RouteID: models.RouteID(res.Route.ID), RouteName: res.Route.Name}
	}

	if err := p.checkChildren(ctx, cmd, vc); err != nil {
		return nil, err
	}

	if err := p.checkScheduleOwnership(cmd, vc); err != nil {
		return nil, err
	}

	children := make([]models.Child, 0, len(vc.Children))
	for _, c := range vc.Children {
		children = append(children, *c)
	}
	req := scheduling.Requirements(children)
	if v := scheduling.CheckFits(req, vc.Vehicle); v != nil {
		return nil, &CapacityError{Violation: v}
	}

	return vc, nil
}

func (p *RouteValidationPipeline) checkStructure(cmd *CreateRouteCommand) error {
	if len(cmd.Stops) == 0 {
		return &StructuralError{Reason: "route must have at least one stop"}
	}
	seq := make([]models.Stop, len(cmd.Stops))
	for i, def := range cmd.Stops {
		if def.Kind != models.StopPickup && def.Kind != models.StopDropoff {
			return &StructuralError{Reason: "stop kind must be PICKUP or DROPOFF"}
		}
		seq[i] = models.Stop{StopOrder: def.Order}
	}
	if !ordering.OrdersValid(seq) {
		return &StructuralError{Reason: "stop orders must be consecutive starting at 1"}
	}
	return nil
}

// loadEntities batch-loads everything the later checks need. The
// lookups are independent, so they run concurrently; this is a latency
// optimization only.
func (p *RouteValidationPipeline) loadEntities(ctx context.Context, cmd *CreateRouteCommand) (*ValidationContext, error) {
	childIDs := make([]models.ChildID, 0, len(cmd.Stops))
	scheduleIDs := make([]models.ScheduleID, 0, len(cmd.Stops))
	seenChild := make(map[models.ChildID]bool)
	seenSchedule := make(map[models.ScheduleID]bool)
	for _, def := range cmd.Stops {
		if !seenChild[def.ChildID] {
			seenChild[def.ChildID] = true
			childIDs = append(childIDs, def.ChildID)
		}
		if !seenSchedule[def.ScheduleID] {
			seenSchedule[def.ScheduleID] = true
			scheduleIDs = append(scheduleIDs, def.ScheduleID)
		}
	}

	vc := &ValidationContext{
		Children:  make(map[models.ChildID]*models.Child, len(childIDs)),
		Schedules: make(map[models.ScheduleID]*models.Schedule, len(scheduleIDs)),
	}

	g, gctx := errgroup.WithContext(ctx)

	if cmd.DriverID != nil {
		driverID := *cmd.DriverID
		g.Go(func() error {
			driver, err := p.drivers.FindByID(gctx, cmd.CompanyID, driverID)
			if err != nil {
				return err
			}
			if driver == nil {
				return &NotFoundError{Entity: "driver", ID: uint(driverID)}
			}
			vc.Driver = driver
			return nil
		})
		g.Go(func() error {
			routes, err := p.routes.FindActiveByDriverOnDate(gctx, cmd.CompanyID, driverID, cmd.Date)
			if err != nil {
				return err
			}
			vc.DriverRoutes = routes
			return nil
		})
	}

	g.Go(func() error {
		vehicle, err := p.vehicles.FindByID(gctx, cmd.CompanyID, cmd.VehicleID)
		if err != nil {
			return err
		}
		if vehicle == nil {
			return &NotFoundError{Entity: "vehicle", ID: uint(cmd.VehicleID)}
		}
		vc.Vehicle = vehicle
		return nil
	})

	g.Go(func() error {
		routes, err := p.routes.FindActiveByVehicleOnDate(gctx, cmd.CompanyID, cmd.VehicleID, cmd.Date)
		if err != nil {
			return err
		}
		vc.VehicleRoutes = routes
		return nil
	})

	g.Go(func() error {
		children, err := p.children.FindByIDs(gctx, cmd.CompanyID, childIDs)
		if err != nil {
			return err
		}
		for i := range children {
			vc.Children[models.ChildID(children[i].ID)] = &children[i]
		}
		for _, id := range childIDs {
			if _, ok := vc.Children[id]; !ok {
				return &NotFoundError{Entity: "child", ID: uint(id)}
			}
		}
		return nil
	})

	g.Go(func() error {
		schedules, err := p.schedules.FindByIDs(gctx, cmd.CompanyID, scheduleIDs)
		if err != nil {
			return err
		}
		for i := range schedules {
			vc.Schedules[models.ScheduleID(schedules[i].ID)] = &schedules[i]
		}
		for _, id := range scheduleIDs {
			if _, ok := vc.Schedules[id]; !ok {
				return &NotFoundError{Entity: "schedule", ID: uint(id)}
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vc, nil
}

// checkChildren verifies each child is ACTIVE and not already being
// transported in an overlapping window on the same date. The child
// window is pickup through dropoff, not the whole route window.
func (p *RouteValidationPipeline) checkChildren(ctx context.Context, cmd *CreateRouteCommand, vc *ValidationContext) error {
	windows := make(map[models.ChildID]scheduling.TimeRange)
	for _, def := range cmd.Stops {
		w, ok := windows[def.ChildID]
		if !ok {
			windows[def.ChildID] = scheduling.TimeRange{Start: def.PlannedTime, End: def.PlannedTime}
			continue
		}
		if def.PlannedTime.Before(w.Start) {
			w.Start = def.PlannedTime
		}
		if def.PlannedTime.After(w.End) {
			w.End = def.PlannedTime
		}
		windows[def.ChildID] = w
	}

	for childID, child := range vc.Children {
		if child.Status != models.ChildActive {
			return &StateConflictError{Entity: "child", ID: child.ID, State: child.Status, Want: models.ChildActive}
		}

		window := windows[childID]
		existing, err := p.routes.FindActiveByChildOnDate(ctx, cmd.CompanyID, childID, cmd.Date)
		if err != nil {
			return err
		}
		for i := range existing {
			other, ok := scheduling.ChildWindow(existing[i].Stops, childID)
			if ok && window.Overlaps(other) {
				return &SchedulingConflictError{Resource: "child", RouteID: models.RouteID(existing[i].ID), RouteName: existing[i].Name}
			}
		}
	}
	return nil
}

func (p *RouteValidationPipeline) checkScheduleOwnership(cmd *CreateRouteCommand, vc *ValidationContext) error {
	for _, def := range cmd.Stops {
		schedule := vc.Schedules[def.ScheduleID]
		if schedule.ChildID != def.ChildID {
			return &StructuralError{Reason: "schedule does not belong to the child on the same stop"}
		}
	}
	return nil
}
