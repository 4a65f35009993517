// Package repository provides the GORM/Postgres implementations of the
// store ports consumed by internal/services.
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"caretransit/internal/models"
)

var activeRouteStatuses = []string{models.RoutePlanned, models.RouteInProgress}

func one[T any](db *gorm.DB, dest *T) (*T, error) {
	if err := db.First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return dest, nil
}

func dayBounds(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return start, start.AddDate(0, 0, 1)
}

type DriverStore struct{ db *gorm.DB }

func NewDriverStore(db *gorm.DB) *DriverStore { return &DriverStore{db: db} }

func (s *DriverStore) FindByID(ctx context.Context, companyID models.CompanyID, id models.DriverID) (*models.Driver, error) {
	var driver models.Driver
	return one(s.db.WithContext(ctx).Where("company_id = ? AND id = ?", companyID, id), &driver)
}

type VehicleStore struct{ db *gorm.DB }

func NewVehicleStore(db *gorm.DB) *VehicleStore { return &VehicleStore{db: db} }

func (s *VehicleStore) FindByID(ctx context.Context, companyID models.CompanyID, id models.VehicleID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	return one(s.db.WithContext(ctx).Where("company_id = ? AND id = ?", companyID, id), &vehicle)
}

type ChildStore struct{ db *gorm.DB }

func NewChildStore(db *gorm.DB) *ChildStore { return &ChildStore{db: db} }

func (s *ChildStore) FindByID(ctx context.Context, companyID models.CompanyID, id models.ChildID) (*models.Child, error) {
	var child models.Child
	return one(s.db.WithContext(ctx).Where("company_id = ? AND id = ?", companyID, id), &child)
}

func (s *ChildStore) FindByIDs(ctx context.Context, companyID models.CompanyID, ids []models.ChildID) ([]models.Child, error) {
	var children []models.Child
	err := s.db.WithContext(ctx).
		Where("company_id = ? AND id IN ?", companyID, ids).
		Find(&children).Error
	return children, err
}

type ScheduleStore struct{ db *gorm.DB }

func NewScheduleStore(db *gorm.DB) *ScheduleStore { return &ScheduleStore{db: db} }

func (s *ScheduleStore) FindByID(ctx context.Context, companyID models.CompanyID, id models.ScheduleID) (*models.Schedule, error) {
	var schedule models.Schedule
	return one(s.db.WithContext(ctx).Where("company_id = ? AND id = ?", companyID, id), &schedule)
}

func (s *ScheduleStore) FindByIDs(ctx context.Context, companyID models.CompanyID, ids []models.ScheduleID) ([]models.Schedule, error) {
	var schedules []models.Schedule
	err := s.db.WithContext(ctx).
		Where("company_id = ? AND id IN ?", companyID, ids).
		Find(&schedules).Error
	return schedules, err
}

type RouteStore struct{ db *gorm.DB }

func NewRouteStore(db *gorm.DB) *RouteStore { return &RouteStore{db: db} }

func (s *RouteStore) FindByID(ctx context.Context, companyID models.CompanyID, id models.RouteID) (*models.Route, error) {
	var route models.Route
	return one(s.db.WithContext(ctx).
		Preload("Stops", func(db *gorm.DB) *gorm.DB { return db.Order("stop_order ASC") }).
		Where("company_id = ? AND id = ?", companyID, id), &route)
}

func (s *RouteStore) findActiveOnDate(ctx context.Context, companyID models.CompanyID, date time.Time, cond string, args ...interface{}) ([]models.Route, error) {
	from, to := dayBounds(date)
	var routes []models.Route
	err := s.db.WithContext(ctx).
		Where("company_id = ? AND date >= ? AND date < ? AND status IN ?", companyID, from, to, activeRouteStatuses).
		Where(cond, args...).
		Order("planned_start ASC").
		Find(&routes).Error
	return routes, err
}

func (s *RouteStore) FindActiveByDriverOnDate(ctx context.Context, companyID models.CompanyID, driverID models.DriverID, date time.Time) ([]models.Route, error) {
	return s.findActiveOnDate(ctx, companyID, date, "driver_id = ?", driverID)
}

func (s *RouteStore) FindActiveByVehicleOnDate(ctx context.Context, companyID models.CompanyID, vehicleID models.VehicleID, date time.Time) ([]models.Route, error) {
	return s.findActiveOnDate(ctx, companyID, date, "vehicle_id = ?", vehicleID)
}

func (s *RouteStore) FindActiveByChildOnDate(ctx context.Context, companyID models.CompanyID, childID models.ChildID, date time.Time) ([]models.Route, error) {
	from, to := dayBounds(date)
	var routes []models.Route
	err := s.db.WithContext(ctx).
		Preload("Stops", func(db *gorm.DB) *gorm.DB { return db.Order("stop_order ASC") }).
		Where("company_id = ? AND date >= ? AND date < ? AND status IN ?", companyID, from, to, activeRouteStatuses).
		Where("id IN (?)", s.db.Model(&models.Stop{}).Select("route_id").
			Where("company_id = ? AND child_id = ? AND cancelled = false", companyID, childID)).
		Find(&routes).Error
	return routes, err
}

func (s *RouteStore) FindByScheduleOnDate(ctx context.Context, companyID models.CompanyID, scheduleID models.ScheduleID, date time.Time) ([]models.Route, error) {
	from, to := dayBounds(date)
	var routes []models.Route
	err := s.db.WithContext(ctx).
		Where("company_id = ? AND date >= ? AND date < ? AND status <> ?", companyID, from, to, models.RouteCancelled).
		Where("id IN (?)", s.db.Model(&models.Stop{}).Select("route_id").
			Where("company_id = ? AND schedule_id = ? AND cancelled = false", companyID, scheduleID)).
		Find(&routes).Error
	return routes, err
}

func (s *RouteStore) Save(ctx context.Context, route *models.Route) error {
	return s.db.WithContext(ctx).Save(route).Error
}

func (s *RouteStore) Delete(ctx context.Context, companyID models.CompanyID, id models.RouteID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ? AND route_id = ?", companyID, id).Delete(&models.Stop{}).Error; err != nil {
			return err
		}
		return tx.Where("company_id = ? AND id = ?", companyID, id).Delete(&models.Route{}).Error
	})
}

type StopStore struct{ db *gorm.DB }

func NewStopStore(db *gorm.DB) *StopStore { return &StopStore{db: db} }

func (s *StopStore) FindByRoute(ctx context.Context, companyID models.CompanyID, routeID models.RouteID, includeCancelled bool) ([]models.Stop, error) {
	q := s.db.WithContext(ctx).Where("company_id = ? AND route_id = ?", companyID, routeID)
	if !includeCancelled {
		q = q.Where("cancelled = false")
	}
	var stops []models.Stop
	err := q.Order("stop_order ASC").Find(&stops).Error
	return stops, err
}

func (s *StopStore) Save(ctx context.Context, stop *models.Stop) error {
	return s.db.WithContext(ctx).Save(stop).Error
}

func (s *StopStore) SaveAll(ctx context.Context, stops []*models.Stop) error {
	if len(stops) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Save(stops).Error
}

type SeriesStore struct{ db *gorm.DB }

func NewSeriesStore(db *gorm.DB) *SeriesStore { return &SeriesStore{db: db} }

func (s *SeriesStore) FindByID(ctx context.Context, companyID models.CompanyID, id models.SeriesID) (*models.RouteSeries, error) {
	var series models.RouteSeries
	return one(s.db.WithContext(ctx).Where("company_id = ? AND id = ?", companyID, id), &series)
}

func (s *SeriesStore) FindActive(ctx context.Context, companyID models.CompanyID) ([]models.RouteSeries, error) {
	var series []models.RouteSeries
	err := s.db.WithContext(ctx).
		Where("company_id = ? AND status = ?", companyID, models.SeriesActive).
		Find(&series).Error
	return series, err
}

func (s *SeriesStore) Save(ctx context.Context, series *models.RouteSeries) error {
	return s.db.WithContext(ctx).Save(series).Error
}

type SeriesScheduleStore struct{ db *gorm.DB }

func NewSeriesScheduleStore(db *gorm.DB) *SeriesScheduleStore { return &SeriesScheduleStore{db: db} }

func (s *SeriesScheduleStore) FindBySeries(ctx context.Context, companyID models.CompanyID, seriesID models.SeriesID) ([]models.SeriesSchedule, error) {
	var assignments []models.SeriesSchedule
	err := s.db.WithContext(ctx).
		Where("company_id = ? AND series_id = ?", companyID, seriesID).
		Order("pickup_stop_order ASC").
		Find(&assignments).Error
	return assignments, err
}

func (s *SeriesScheduleStore) Save(ctx context.Context, assignment *models.SeriesSchedule) error {
	return s.db.WithContext(ctx).Save(assignment).Error
}

type OccurrenceStore struct{ db *gorm.DB }

func NewOccurrenceStore(db *gorm.DB) *OccurrenceStore { return &OccurrenceStore{db: db} }

func (s *OccurrenceStore) FindBySeriesAndDate(ctx context.Context, companyID models.CompanyID, seriesID models.SeriesID, date time.Time) (*models.RouteSeriesOccurrence, error) {
	from, to := dayBounds(date)
	var occ models.RouteSeriesOccurrence
	return one(s.db.WithContext(ctx).
		Where("company_id = ? AND series_id = ? AND date >= ? AND date < ?", companyID, seriesID, from, to), &occ)
}

func (s *OccurrenceStore) FindBySeries(ctx context.Context, companyID models.CompanyID, seriesID models.SeriesID) ([]models.RouteSeriesOccurrence, error) {
	var occs []models.RouteSeriesOccurrence
	err := s.db.WithContext(ctx).
		Where("company_id = ? AND series_id = ?", companyID, seriesID).
		Order("date ASC").
		Find(&occs).Error
	return occs, err
}

func (s *OccurrenceStore) Save(ctx context.Context, occ *models.RouteSeriesOccurrence) error {
	return s.db.WithContext(ctx).Save(occ).Error
}
