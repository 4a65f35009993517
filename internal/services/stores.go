package services

import (
	"context"
	"time"

	"caretransit/internal/models"
)

// Store ports consumed by the services. Lookups return (nil, nil) when
// the entity does not exist for the company; the services translate
// that into NotFoundError. GORM-backed implementations live in
// internal/repository.

type DriverStore interface {
	FindByID(ctx context.Context, companyID models.CompanyID, id models.DriverID) (*models.Driver, error)
}

type VehicleStore interface {
	FindByID(ctx context.Context, companyID models.CompanyID, id models.VehicleID) (*models.Vehicle, error)
}

type ChildStore interface {
	FindByID(ctx context.Context, companyID models.CompanyID, id models.ChildID) (*models.Child, error)
	FindByIDs(ctx context.Context, companyID models.CompanyID, ids []models.ChildID) ([]models.Child, error)
}

type ScheduleStore interface {
	FindByID(ctx context.Context, companyID models.CompanyID, id models.ScheduleID) (*models.Schedule, error)
	FindByIDs(ctx context.Context, companyID models.CompanyID, ids []models.ScheduleID) ([]models.Schedule, error)
}

type RouteStore interface {
	FindByID(ctx context.Context, companyID models.CompanyID, id models.RouteID) (*models.Route, error)
	// PLANNED and IN_PROGRESS routes for the resource on the date.
	FindActiveByDriverOnDate(ctx context.Context, companyID models.CompanyID, driverID models.DriverID, date time.Time) ([]models.Route, error)
	FindActiveByVehicleOnDate(ctx context.Context, companyID models.CompanyID, vehicleID models.VehicleID, date time.Time) ([]models.Route, error)
	// Routes (with stops) carrying a non-cancelled stop of the child on the date.
	FindActiveByChildOnDate(ctx context.Context, companyID models.CompanyID, childID models.ChildID, date time.Time) ([]models.Route, error)
	// Non-cancelled routes carrying a non-cancelled stop of the schedule on the date.
	FindByScheduleOnDate(ctx context.Context, companyID models.CompanyID, scheduleID models.ScheduleID, date time.Time) ([]models.Route, error)
	Save(ctx context.Context, route *models.Route) error
	Delete(ctx context.Context, companyID models.CompanyID, id models.RouteID) error
}

type StopStore interface {
	// Sorted ascending by StopOrder.
	FindByRoute(ctx context.Context, companyID models.CompanyID, routeID models.RouteID, includeCancelled bool) ([]models.Stop, error)
	Save(ctx context.Context, stop *models.Stop) error
	SaveAll(ctx context.Context, stops []*models.Stop) error
}

type SeriesStore interface {
	FindByID(ctx context.Context, companyID models.CompanyID, id models.SeriesID) (*models.RouteSeries, error)
	FindActive(ctx context.Context, companyID models.CompanyID) ([]models.RouteSeries, error)
	Save(ctx context.Context, series *models.RouteSeries) error
}

type SeriesScheduleStore interface {
	FindBySeries(ctx context.Context, companyID models.CompanyID, seriesID models.SeriesID) ([]models.SeriesSchedule, error)
	Save(ctx context.Context, assignment *models.SeriesSchedule) error
}

type OccurrenceStore interface {
	FindBySeriesAndDate(ctx context.Context, companyID models.CompanyID, seriesID models.SeriesID, date time.Time) (*models.RouteSeriesOccurrence, error)
	FindBySeries(ctx context.Context, companyID models.CompanyID, seriesID models.SeriesID) ([]models.RouteSeriesOccurrence, error)
	Save(ctx context.Context, occ *models.RouteSeriesOccurrence) error
}

// StopTx is the view of the stop table inside one insertion
// transaction.
type StopTx interface {
	StopsForRoute(routeID models.RouteID, includeCancelled bool) ([]models.Stop, error)
	CreateStops(stops []*models.Stop) error
	// Flushes order changes for existing stops.
	UpdateOrders(stops []models.Stop) error
}

// StopUnitOfWork runs a function against the stop table inside a
// transaction. RunSerializable uses the strongest isolation level the
// store offers; the pessimistic insertion tier depends on it.
type StopUnitOfWork interface {
	Run(ctx context.Context, fn func(StopTx) error) error
	RunSerializable(ctx context.Context, fn func(StopTx) error) error
}
