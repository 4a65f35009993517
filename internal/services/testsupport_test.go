package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"caretransit/internal/models"
)

// fakeStore is an in-memory implementation of every store port plus
// the stop unit of work, sharing a single stop table so coordinator
// writes are visible to the stores.
type fakeStore struct {
	drivers     map[models.DriverID]*models.Driver
	vehicles    map[models.VehicleID]*models.Vehicle
	children    map[models.ChildID]*models.Child
	schedules   map[models.ScheduleID]*models.Schedule
	routes      map[models.RouteID]*models.Route
	series      map[models.SeriesID]*models.RouteSeries
	assignments []*models.SeriesSchedule
	occurrences []*models.RouteSeriesOccurrence
	stops       map[uint]*models.Stop

	nextID uint

	runs             int
	serializableRuns int
	failPlainUpdates bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		drivers:   map[models.DriverID]*models.Driver{},
		vehicles:  map[models.VehicleID]*models.Vehicle{},
		children:  map[models.ChildID]*models.Child{},
		schedules: map[models.ScheduleID]*models.Schedule{},
		routes:    map[models.RouteID]*models.Route{},
		series:    map[models.SeriesID]*models.RouteSeries{},
		stops:     map[uint]*models.Stop{},
	}
}

func (f *fakeStore) id() uint {
	f.nextID++
	return f.nextID
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func (f *fakeStore) FindByID(ctx context.Context, companyID models.CompanyID, id models.DriverID) (*models.Driver, error) {
	return f.drivers[id], nil
}

// Overlapping method sets per entity are disambiguated with wrapper
// types below; FindByID above serves DriverStore.

type fakeVehicles struct{ *fakeStore }

func (f fakeVehicles) FindByID(ctx context.Context, companyID models.CompanyID, id models.VehicleID) (*models.Vehicle, error) {
	return f.vehicles[id], nil
}

type fakeChildren struct{ *fakeStore }

func (f fakeChildren) FindByID(ctx context.Context, companyID models.CompanyID, id models.ChildID) (*models.Child, error) {
	return f.children[id], nil
}

func (f fakeChildren) FindByIDs(ctx context.Context, companyID models.CompanyID, ids []models.ChildID) ([]models.Child, error) {
	var out []models.Child
	for _, id := range ids {
		if c, ok := f.children[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeSchedules struct{ *fakeStore }

func (f fakeSchedules) FindByID(ctx context.Context, companyID models.CompanyID, id models.ScheduleID) (*models.Schedule, error) {
	return f.schedules[id], nil
}

func (f fakeSchedules) FindByIDs(ctx context.Context, companyID models.CompanyID, ids []models.ScheduleID) ([]models.Schedule, error) {
	var out []models.Schedule
	for _, id := range ids {
		if s, ok := f.schedules[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeRoutes struct{ *fakeStore }

func (f fakeRoutes) FindByID(ctx context.Context, companyID models.CompanyID, id models.RouteID) (*models.Route, error) {
	r, ok := f.routes[id]
	if !ok {
		return nil, nil
	}
	out := *r
	out.Stops = f.stopsOfRoute(id, true)
	return &out, nil
}

func (f *fakeStore) stopsOfRoute(id models.RouteID, includeCancelled bool) []models.Stop {
	var stops []models.Stop
	for _, s := range f.stops {
		if s.RouteID == id && (includeCancelled || !s.Cancelled) {
			stops = append(stops, *s)
		}
	}
	sort.Slice(stops, func(i, j int) bool { return stops[i].StopOrder < stops[j].StopOrder })
	return stops
}

func (f fakeRoutes) activeOnDate(date time.Time, match func(*models.Route) bool) []models.Route {
	var out []models.Route
	for id, r := range f.routes {
		if !sameDay(r.Date, date) {
			continue
		}
		if r.Status != models.RoutePlanned && r.Status != models.RouteInProgress {
			continue
		}
		if match(r) {
			route := *r
			route.Stops = f.stopsOfRoute(id, false)
			out = append(out, route)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f fakeRoutes) FindActiveByDriverOnDate(ctx context.Context, companyID models.CompanyID, driverID models.DriverID, date time.Time) ([]models.Route, error) {
	return f.activeOnDate(date, func(r *models.Route) bool {
		return r.DriverID != nil && *r.DriverID == driverID
	}), nil
}

func (f fakeRoutes) FindActiveByVehicleOnDate(ctx context.Context, companyID models.CompanyID, vehicleID models.VehicleID, date time.Time) ([]models.Route, error) {
	return f.activeOnDate(date, func(r *models.Route) bool {
		return r.VehicleID == vehicleID
	}), nil
}

func (f fakeRoutes) FindActiveByChildOnDate(ctx context.Context, companyID models.CompanyID, childID models.ChildID, date time.Time) ([]models.Route, error) {
	return f.activeOnDate(date, func(r *models.Route) bool {
		for _, s := range f.stopsOfRoute(models.RouteID(r.ID), false) {
			if s.ChildID == childID {
				return true
			}
		}
		return false
	}), nil
}

func (f fakeRoutes) FindByScheduleOnDate(ctx context.Context, companyID models.CompanyID, scheduleID models.ScheduleID, date time.Time) ([]models.Route, error) {
	var out []models.Route
	for id, r := range f.routes {
		if !sameDay(r.Date, date) || r.Status == models.RouteCancelled {
			continue
		}
		for _, s := range f.stopsOfRoute(id, false) {
			if s.ScheduleID == scheduleID {
				route := *r
				route.Stops = f.stopsOfRoute(id, false)
				out = append(out, route)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeRoutes) Save(ctx context.Context, route *models.Route) error {
	if route.ID == 0 {
		route.ID = f.id()
	}
	for i := range route.Stops {
		s := route.Stops[i]
		if s.ID == 0 {
			s.ID = f.id()
		}
		s.RouteID = models.RouteID(route.ID)
		f.stops[s.ID] = &s
		route.Stops[i] = s
	}
	stored := *route
	stored.Stops = nil
	f.routes[models.RouteID(route.ID)] = &stored
	return nil
}

func (f fakeRoutes) Delete(ctx context.Context, companyID models.CompanyID, id models.RouteID) error {
	delete(f.routes, id)
	for stopID, s := range f.stops {
		if s.RouteID == id {
			delete(f.stops, stopID)
		}
	}
	return nil
}

type fakeStops struct{ *fakeStore }

func (f fakeStops) FindByRoute(ctx context.Context, companyID models.CompanyID, routeID models.RouteID, includeCancelled bool) ([]models.Stop, error) {
	return f.stopsOfRoute(routeID, includeCancelled), nil
}

func (f fakeStops) Save(ctx context.Context, stop *models.Stop) error {
	if stop.ID == 0 {
		stop.ID = f.id()
	}
	s := *stop
	f.stops[s.ID] = &s
	return nil
}

func (f fakeStops) SaveAll(ctx context.Context, stops []*models.Stop) error {
	for _, s := range stops {
		if err := f.Save(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

type fakeSeries struct{ *fakeStore }

func (f fakeSeries) FindByID(ctx context.Context, companyID models.CompanyID, id models.SeriesID) (*models.RouteSeries, error) {
	return f.series[id], nil
}

func (f fakeSeries) FindActive(ctx context.Context, companyID models.CompanyID) ([]models.RouteSeries, error) {
	var out []models.RouteSeries
	for _, s := range f.series {
		if s.Status == models.SeriesActive {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeSeries) Save(ctx context.Context, series *models.RouteSeries) error {
	if series.ID == 0 {
		series.ID = f.id()
	}
	stored := *series
	f.series[models.SeriesID(series.ID)] = &stored
	return nil
}

type fakeSeriesSchedules struct{ *fakeStore }

func (f fakeSeriesSchedules) FindBySeries(ctx context.Context, companyID models.CompanyID, seriesID models.SeriesID) ([]models.SeriesSchedule, error) {
	var out []models.SeriesSchedule
	for _, a := range f.assignments {
		if a.SeriesID == seriesID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f fakeSeriesSchedules) Save(ctx context.Context, assignment *models.SeriesSchedule) error {
	if assignment.ID == 0 {
		assignment.ID = f.id()
	}
	stored := *assignment
	f.fakeStore.assignments = append(f.fakeStore.assignments, &stored)
	return nil
}

type fakeOccurrences struct{ *fakeStore }

func (f fakeOccurrences) FindBySeriesAndDate(ctx context.Context, companyID models.CompanyID, seriesID models.SeriesID, date time.Time) (*models.RouteSeriesOccurrence, error) {
	for _, o := range f.occurrences {
		if o.SeriesID == seriesID && sameDay(o.Date, date) {
			return o, nil
		}
	}
	return nil, nil
}

func (f fakeOccurrences) FindBySeries(ctx context.Context, companyID models.CompanyID, seriesID models.SeriesID) ([]models.RouteSeriesOccurrence, error) {
	var out []models.RouteSeriesOccurrence
	for _, o := range f.occurrences {
		if o.SeriesID == seriesID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f fakeOccurrences) Save(ctx context.Context, occ *models.RouteSeriesOccurrence) error {
	for i, o := range f.fakeStore.occurrences {
		if o.ID == occ.ID && occ.ID != 0 {
			stored := *occ
			f.fakeStore.occurrences[i] = &stored
			return nil
		}
	}
	if occ.ID == 0 {
		occ.ID = f.id()
	}
	stored := *occ
	f.fakeStore.occurrences = append(f.fakeStore.occurrences, &stored)
	return nil
}

// Stop unit of work over the shared stop table, with snapshot rollback
// so a failed tier leaves no partial writes behind.

type fakeStopTx struct {
	store        *fakeStore
	serializable bool
}

func (t *fakeStopTx) StopsForRoute(routeID models.RouteID, includeCancelled bool) ([]models.Stop, error) {
	return t.store.stopsOfRoute(routeID, includeCancelled), nil
}

func (t *fakeStopTx) CreateStops(stops []*models.Stop) error {
	for _, s := range stops {
		if s.ID == 0 {
			s.ID = t.store.id()
		}
		stored := *s
		t.store.stops[s.ID] = &stored
	}
	return nil
}

func (t *fakeStopTx) UpdateOrders(stops []models.Stop) error {
	if t.store.failPlainUpdates && !t.serializable {
		return errors.New("injected update failure")
	}
	for _, s := range stops {
		if existing, ok := t.store.stops[s.ID]; ok {
			existing.StopOrder = s.StopOrder
		}
	}
	return nil
}

func (f *fakeStore) snapshot() map[uint]models.Stop {
	snap := make(map[uint]models.Stop, len(f.stops))
	for id, s := range f.stops {
		snap[id] = *s
	}
	return snap
}

func (f *fakeStore) restore(snap map[uint]models.Stop) {
	f.stops = make(map[uint]*models.Stop, len(snap))
	for id, s := range snap {
		stored := s
		f.stops[id] = &stored
	}
}

func (f *fakeStore) run(ctx context.Context, serializable bool, fn func(StopTx) error) error {
	snap := f.snapshot()
	if err := fn(&fakeStopTx{store: f, serializable: serializable}); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

func (f *fakeStore) Run(ctx context.Context, fn func(StopTx) error) error {
	f.runs++
	return f.run(ctx, false, fn)
}

func (f *fakeStore) RunSerializable(ctx context.Context, fn func(StopTx) error) error {
	f.serializableRuns++
	return f.run(ctx, true, fn)
}

// Seeding helpers.

func (f *fakeStore) seedStop(routeID models.RouteID, order int, childID models.ChildID, scheduleID models.ScheduleID) *models.Stop {
	s := &models.Stop{RouteID: routeID, StopOrder: order, Kind: models.StopPickup, ChildID: childID, ScheduleID: scheduleID}
	s.ID = f.id()
	f.stops[s.ID] = s
	return s
}

func (f *fakeStore) seedRoute(route models.Route) models.RouteID {
	if route.ID == 0 {
		route.ID = f.id()
	}
	if route.Status == "" {
		route.Status = models.RoutePlanned
	}
	f.routes[models.RouteID(route.ID)] = &route
	return models.RouteID(route.ID)
}

func (f *fakeStore) routeOrders(routeID models.RouteID) []int {
	stops := f.stopsOfRoute(routeID, false)
	orders := make([]int, len(stops))
	for i, s := range stops {
		orders[i] = s.StopOrder
	}
	return orders
}
